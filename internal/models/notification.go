package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind enumerates the notifications the engine emits.
type NotificationKind string

const (
	NotifyBookingOpportunity NotificationKind = "booking_opportunity"
	NotifyKickoffInvite      NotificationKind = "kickoff_invite"
)

// Notification is a per-user message surfaced by the candidate UI.
type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Kind         NotificationKind `gorm:"type:varchar(32);index;not null" json:"kind" validate:"required,oneof=booking_opportunity kickoff_invite"`
	ProjectID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"project_id"`
	AssignmentID *uuid.UUID       `gorm:"type:uuid;index" json:"assignment_id,omitempty"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
