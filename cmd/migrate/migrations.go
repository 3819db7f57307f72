package main

import (
	"gorm.io/gorm"

	"github.com/teamlance/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// Accounts
		&models.User{},
		&models.CandidateProfile{},

		// Projects & staffing
		&models.Project{},
		&models.Assignment{},

		// Kickoff scaffolding
		&models.TeamMember{},
		&models.Board{},
		&models.BoardColumn{},
		&models.BoardCard{},
		&models.StorageRoot{},
		&models.KickoffEvent{},
		&models.KickoffInvite{},

		// Messaging
		&models.Notification{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	models := registerModels()

	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addAssignmentIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addAssignmentIndexes adds custom indexes for the hot booking queries
func addAssignmentIndexes(db *gorm.DB) error {
	// open slots per project drive the status aggregator and the fan-out
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assignments_project_booking
		ON assignments(project_id, booking_status)
	`).Error; err != nil {
		return err
	}

	// searching slots with no candidate are the accept CAS target
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assignments_searching_unbound
		ON assignments(id)
		WHERE booking_status = 'searching' AND candidate_id IS NULL
	`).Error
}
