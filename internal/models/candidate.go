package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AvailabilityStatus reflects whether a candidate can take on work.
// Candidates still in onboarding have not passed qualification and never match.
type AvailabilityStatus string

const (
	AvailabilityOnboarding  AvailabilityStatus = "onboarding"
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityOnHold      AvailabilityStatus = "on_hold"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// CandidateKind separates human candidates from automated "AI" profiles.
type CandidateKind string

const (
	CandidateHuman CandidateKind = "human"
	CandidateAI    CandidateKind = "ai"
)

// CandidateProfile holds a candidate's availability and competency attributes.
// The engine only reads these; profile upkeep belongs to the candidate UI.
// AI profiles have no backing user account.
type CandidateProfile struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID             *uuid.UUID                  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Kind               CandidateKind               `gorm:"type:varchar(16);index;not null;default:'human'" json:"kind" validate:"required,oneof=human ai"`
	AvailabilityStatus AvailabilityStatus          `gorm:"type:varchar(32);index;not null;default:'onboarding'" json:"availability_status" validate:"required,oneof=onboarding available on_hold unavailable"`
	Profession         string                      `gorm:"type:varchar(64);index;not null" json:"profession" validate:"required"`
	Seniority          string                      `gorm:"type:varchar(32);not null" json:"seniority" validate:"required"`
	Languages          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"languages"`
	Expertise          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"expertise"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	DeletedAt          gorm.DeletedAt              `gorm:"index" json:"-"`
}
