package models

import (
	"time"

	"github.com/google/uuid"
)

// Board is the task board provisioned during kickoff, one per project.
type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BoardColumn is one of the fixed starter columns.
type BoardColumn struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BoardID  uuid.UUID `gorm:"type:uuid;index;not null" json:"board_id" validate:"required"`
	Name     string    `gorm:"not null" json:"name"`
	Position int       `gorm:"not null" json:"position"`
}

// BoardCard is an informational card seeded into a column at kickoff.
type BoardCard struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ColumnID  uuid.UUID `gorm:"type:uuid;index;not null" json:"column_id" validate:"required"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// StorageRoot records the file-storage prefix provisioned for a project.
type StorageRoot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	Path      string    `gorm:"not null" json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
