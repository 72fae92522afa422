package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gopherblog/internal/app"
	"gopherblog/internal/model"
	"gopherblog/internal/pkg/jwtutil"
)

const (
	testAdminToken = "super-secret"
	testJWTSecret  = "test-jwt-secret"
)

func newAuthService(users *fakeUserStore, auditor *fakeAuditPublisher) *app.AuthService {
	return app.NewAuthService(users, auditor, testAdminToken, testJWTSecret, time.Hour)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	users := newFakeUserStore()
	auditor := &fakeAuditPublisher{}
	svc := newAuthService(users, auditor)

	result, err := svc.Register(app.RegisterInput{
		Username:   "alice",
		Password:   "pw1secret",
		AdminToken: testAdminToken,
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.NotZero(t, result.User.ID)
	assert.True(t, result.User.IsAdmin, "every registrant becomes an admin")
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, "pw1secret", result.User.PasswordHash, "plaintext must never be stored")

	claims, err := jwtutil.ParseToken(testJWTSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)

	loginResult, err := svc.Login(app.LoginInput{Username: "alice", Password: "pw1secret"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, loginResult.User.ID)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, model.AuditActionUserRegistered, auditor.events[0].Action)
	assert.NotEmpty(t, auditor.events[0].EventID)
}

func TestAuthService_RegisterBadAdminToken(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users, &fakeAuditPublisher{})

	_, err := svc.Register(app.RegisterInput{
		Username:   "mallory",
		Password:   "pw1secret",
		AdminToken: "guess",
	})
	require.ErrorIs(t, err, app.ErrUnauthorized)

	stored, err := users.GetByUsername("mallory")
	require.NoError(t, err)
	assert.Nil(t, stored, "no user may be stored on a rejected registration")
}

func TestAuthService_RegisterInvalidInput(t *testing.T) {
	svc := newAuthService(newFakeUserStore(), &fakeAuditPublisher{})

	_, err := svc.Register(app.RegisterInput{Username: "", Password: "pw", AdminToken: testAdminToken})
	assert.ErrorIs(t, err, app.ErrInvalidInput)

	_, err = svc.Register(app.RegisterInput{Username: "alice", Password: "", AdminToken: testAdminToken})
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(newFakeUserStore(), &fakeAuditPublisher{})

	_, err := svc.Register(app.RegisterInput{Username: "alice", Password: "pw1secret", AdminToken: testAdminToken})
	require.NoError(t, err)

	_, err = svc.Register(app.RegisterInput{Username: "alice", Password: "otherpw99", AdminToken: testAdminToken})
	assert.ErrorIs(t, err, app.ErrUsernameExists)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := newAuthService(newFakeUserStore(), &fakeAuditPublisher{})

	_, err := svc.Register(app.RegisterInput{Username: "alice", Password: "pw1secret", AdminToken: testAdminToken})
	require.NoError(t, err)

	_, err = svc.Login(app.LoginInput{Username: "alice", Password: "wrongpw"})
	assert.ErrorIs(t, err, app.ErrInvalidCredential)

	_, err = svc.Login(app.LoginInput{Username: "nobody", Password: "pw1secret"})
	assert.ErrorIs(t, err, app.ErrInvalidCredential)
}

func TestAuthService_PasswordHashRoundTrip(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users, &fakeAuditPublisher{})

	_, err := svc.Register(app.RegisterInput{Username: "alice", Password: "pw1secret", AdminToken: testAdminToken})
	require.NoError(t, err)

	stored, err := users.GetByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("anyOtherPassword")))
}

func TestAuthService_RegisterFailuresEmitNoAudit(t *testing.T) {
	users := newFakeUserStore()
	auditor := &fakeAuditPublisher{}
	svc := newAuthService(users, auditor)

	_, err := svc.Register(app.RegisterInput{Username: "", Password: "pw", AdminToken: testAdminToken})
	require.ErrorIs(t, err, app.ErrInvalidInput)

	_, err = svc.Register(app.RegisterInput{Username: "mallory", Password: "pw1secret", AdminToken: "guess"})
	require.ErrorIs(t, err, app.ErrUnauthorized)

	result, err := svc.Register(app.RegisterInput{Username: "alice", Password: "pw1secret", AdminToken: testAdminToken})
	require.NoError(t, err)

	_, err = svc.Register(app.RegisterInput{Username: "alice", Password: "otherpw99", AdminToken: testAdminToken})
	require.ErrorIs(t, err, app.ErrUsernameExists)

	// Only the successful registration may leave a trail, and only once it
	// has a token to hand back.
	require.Len(t, auditor.events, 1)
	assert.Equal(t, model.AuditActionUserRegistered, auditor.events[0].Action)
	assert.Equal(t, result.User.ID, auditor.events[0].SubjectID)
}

func TestAuthService_AuditPublishFailureDoesNotFailRegister(t *testing.T) {
	users := newFakeUserStore()
	auditor := &fakeAuditPublisher{failErr: assert.AnError}
	svc := newAuthService(users, auditor)

	result, err := svc.Register(app.RegisterInput{Username: "alice", Password: "pw1secret", AdminToken: testAdminToken})
	require.NoError(t, err)
	assert.NotNil(t, result.User)
}
