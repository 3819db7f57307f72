package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BookingStatus is the lifecycle state of a single staffing slot.
type BookingStatus string

const (
	BookingDraft     BookingStatus = "draft"
	BookingSearching BookingStatus = "searching"
	BookingAccepted  BookingStatus = "accepted"
	BookingDeclined  BookingStatus = "declined"
	BookingCompleted BookingStatus = "completed"
)

// RetireReason records why an assignment was moved to completed.
type RetireReason string

const (
	RetireProjectCompleted   RetireReason = "project_completed"
	RetireRequirementChanged RetireReason = "requirement_changed"
	RetireProjectCancelled   RetireReason = "project_cancelled"
)

// Requirement is the staffing criteria a slot demands. It is embedded in the
// assignment and immutable except through the explicit edit-requirement flow.
type Requirement struct {
	Profession string                      `gorm:"type:varchar(64);not null" json:"profession" validate:"required"`
	Seniority  string                      `gorm:"type:varchar(32);not null" json:"seniority" validate:"required"`
	Languages  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"languages"`
	Expertise  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"expertise"`
	Automated  bool                        `gorm:"not null;default:false" json:"automated"`
}

// Assignment is one staffing slot on one project. The candidate reference is
// non-null exactly when booking status is accepted or completed; the row is
// the unit of mutual exclusion for concurrent accepts.
type Assignment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	BookingStatus BookingStatus `gorm:"type:varchar(32);index;not null;default:'draft'" json:"booking_status" validate:"required,oneof=draft searching accepted declined completed"`
	CandidateID   *uuid.UUID    `gorm:"type:uuid;index" json:"candidate_id,omitempty"`
	Requirement   Requirement   `gorm:"embedded" json:"requirement"`
	RetireReason  RetireReason  `gorm:"type:varchar(32)" json:"retire_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Open reports whether the slot still participates in the booking lifecycle.
func (a *Assignment) Open() bool {
	return a.BookingStatus != BookingCompleted && a.BookingStatus != BookingDeclined
}
