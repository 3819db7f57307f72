package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is derived from the project's assignments by the status
// aggregator, except for the explicit administrative transitions
// (pause/complete/archive/delete) and the kickoff transition to live.
type ProjectStatus string

const (
	ProjectPaused       ProjectStatus = "paused"
	ProjectAwaitingTeam ProjectStatus = "awaiting_team"
	ProjectLive         ProjectStatus = "live"
	ProjectCompleted    ProjectStatus = "completed"
	ProjectArchived     ProjectStatus = "archived"
	ProjectDeleted      ProjectStatus = "deleted"
)

// Terminal reports whether the status is an administrative end state.
// Once terminal, the aggregator stops reacting to assignment changes.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectCompleted || s == ProjectArchived || s == ProjectDeleted
}

// Project is a client engagement staffed through resource assignments.
// Projects are never hard-deleted; "deleted" is a status so that historical
// sessions and invoices stay queryable.
type Project struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"owner_id" validate:"required"`
	Title          string        `gorm:"not null" json:"title" validate:"required"`
	Description    string        `gorm:"type:text" json:"description"`
	StartDate      time.Time     `json:"start_date"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	Budget         *float64      `json:"budget,omitempty"`
	Status         ProjectStatus `gorm:"type:varchar(32);index;not null;default:'paused'" json:"status" validate:"required,oneof=paused awaiting_team live completed archived deleted"`
	PausedManually bool          `gorm:"not null;default:false" json:"paused_manually"`
	KickedOffAt    *time.Time    `json:"kicked_off_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
