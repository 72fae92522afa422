package model

import "time"

// AuditEvent records a security-relevant action (registration, post
// deletion, user deletion). Events are published to RabbitMQ and persisted
// asynchronously by the audit worker.
type AuditEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	ActorID    uint      `gorm:"not null;index" json:"actor_id"`
	Action     string    `gorm:"size:32;not null;index" json:"action"`
	SubjectID  uint      `gorm:"not null" json:"subject_id"`
	Detail     string    `gorm:"size:255" json:"detail,omitempty"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	AuditActionUserRegistered = "user.registered"
	AuditActionUserDeleted    = "user.deleted"
	AuditActionPostDeleted    = "post.deleted"
)
