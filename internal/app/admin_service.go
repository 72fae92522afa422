package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// AdminService handles user management. Every operation re-reads the
// requester from the store so a revoked or deleted admin cannot keep acting
// on a stale token.
type AdminService struct {
	userStore  UserStore
	auditStore AuditEventStore
	feedCache  FeedCache
	auditor    AuditPublisher
}

// DeletionOutcome tells the caller what to do with its session after a user
// deletion. SessionCleared is set when the requester deleted themselves.
type DeletionOutcome struct {
	DeletedID      uint `json:"deleted_id"`
	SessionCleared bool `json:"session_cleared"`
}

func NewAdminService(userStore UserStore, auditStore AuditEventStore, feedCache FeedCache, auditor AuditPublisher) *AdminService {
	return &AdminService{
		userStore:  userStore,
		auditStore: auditStore,
		feedCache:  feedCache,
		auditor:    auditor,
	}
}

func (s *AdminService) ListUsers(requesterID uint) ([]model.User, error) {
	if _, err := s.requireAdmin(requesterID); err != nil {
		return nil, err
	}
	return s.userStore.List()
}

// DeleteUser removes the target user. Posts owned by the target are kept
// and resolve as authored by a deleted user in the feed.
func (s *AdminService) DeleteUser(requesterID, targetID uint) (*DeletionOutcome, error) {
	if targetID == 0 {
		return nil, ErrInvalidInput
	}
	requester, err := s.requireAdmin(requesterID)
	if err != nil {
		return nil, err
	}

	target, err := s.userStore.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if err := s.userStore.Delete(targetID); err != nil {
		return nil, err
	}

	// Feed entries resolve their author at read time, so any cached copy
	// still carries the deleted user's name.
	s.invalidateFeed()

	if s.auditor != nil {
		event := model.AuditEvent{
			EventID:    uuid.New().String(),
			ActorID:    requester.ID,
			Action:     model.AuditActionUserDeleted,
			SubjectID:  targetID,
			Detail:     target.Username,
			OccurredAt: time.Now(),
		}
		if err := s.auditor.Publish(context.Background(), event); err != nil {
			logrus.WithError(err).Warn("publish audit event failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"actor_id":  requester.ID,
		"target_id": targetID,
		"username":  target.Username,
	}).Info("user deleted")

	return &DeletionOutcome{
		DeletedID:      targetID,
		SessionCleared: requesterID == targetID,
	}, nil
}

// ListAuditEvents returns the most recent entries of the audit trail,
// newest first.
func (s *AdminService) ListAuditEvents(requesterID uint, limit int) ([]model.AuditEvent, error) {
	if _, err := s.requireAdmin(requesterID); err != nil {
		return nil, err
	}
	if s.auditStore == nil {
		return nil, nil
	}
	return s.auditStore.ListRecent(limit)
}

func (s *AdminService) invalidateFeed() {
	if s.feedCache == nil {
		return
	}
	ctx := context.Background()
	if err := s.feedCache.MarkDirty(ctx); err != nil {
		logrus.WithError(err).Warn("mark feed dirty failed")
	}
	if err := s.feedCache.DeleteFeed(ctx); err != nil {
		logrus.WithError(err).Warn("delete cached feed failed")
	}
}

func (s *AdminService) requireAdmin(requesterID uint) (*model.User, error) {
	if requesterID == 0 {
		return nil, ErrInvalidInput
	}
	requester, err := s.userStore.GetByID(requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil || !requester.IsAdmin {
		return nil, ErrForbidden
	}
	return requester, nil
}
