package models

import (
	"time"

	"github.com/google/uuid"
)

// KickoffEvent is the meeting created when a fully-staffed project goes live.
type KickoffEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	MeetingLink string    `gorm:"not null" json:"meeting_link"`
	CreatedAt   time.Time `json:"created_at"`
}

// KickoffInvite registers a roster member as an invitee of the kickoff event.
type KickoffInvite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index:idx_invite_event_user,unique" json:"event_id" validate:"required"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_invite_event_user,unique" json:"user_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}
