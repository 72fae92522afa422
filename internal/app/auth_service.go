package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gopherblog/internal/model"
	"gopherblog/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("admin token mismatch")
	ErrUsernameExists    = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// AuthService handles registration and login. Registration is gated by a
// configured admin token and every registered user is an admin; there is no
// non-admin registration path.
type AuthService struct {
	userStore     UserStore
	auditor       AuditPublisher
	adminToken    string
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username   string
	Password   string
	AdminToken string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userStore UserStore, auditor AuditPublisher, adminToken, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userStore:     userStore,
		auditor:       auditor,
		adminToken:    adminToken,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password

	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if subtle.ConstantTimeCompare([]byte(input.AdminToken), []byte(s.adminToken)) != 1 {
		logrus.WithField("username", username).Warn("registration rejected: bad admin token")
		return nil, ErrUnauthorized
	}

	existing, err := s.userStore.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := s.userStore.Create(user); err != nil {
		return nil, err
	}

	// Sign the token before emitting any side effects so a signing failure
	// does not leave a success trail behind the error.
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.audit(user.ID, model.AuditActionUserRegistered, user.ID, username)
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("user registered")

	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userStore.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("login failed: password mismatch")
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userStore.GetByID(id)
}

func (s *AuthService) audit(actorID uint, action string, subjectID uint, detail string) {
	if s.auditor == nil {
		return
	}
	event := model.AuditEvent{
		EventID:    uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		SubjectID:  subjectID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	if err := s.auditor.Publish(context.Background(), event); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("publish audit event failed")
	}
}
