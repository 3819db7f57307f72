package models

import (
	"time"

	"github.com/google/uuid"
)

// RosterRole marks a roster member as the project owner or a team member.
type RosterRole string

const (
	RosterOwner  RosterRole = "owner"
	RosterMember RosterRole = "member"
)

// TeamMember is one row of the denormalized team snapshot built at kickoff.
// The assignments remain authoritative for staffing; the roster is consumed by
// downstream collaboration scaffolding and is not updated afterwards.
type TeamMember struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_roster_project_user,unique" json:"project_id" validate:"required"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_roster_project_user,unique" json:"user_id" validate:"required"`
	CandidateID *uuid.UUID `gorm:"type:uuid;index" json:"candidate_id,omitempty"`
	Role        RosterRole `gorm:"type:varchar(16);not null" json:"role" validate:"required,oneof=owner member"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"not null" json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
}
