package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RosterRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.TeamMember, error)
	// Upsert inserts a roster member, ignoring duplicates so kickoff re-runs
	// stay idempotent.
	Upsert(ctx context.Context, member *models.TeamMember) error
}

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.TeamMember, error) {
	var out []models.TeamMember
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list roster failed")
	}
	return out, nil
}

func (r *rosterRepository) Upsert(ctx context.Context, member *models.TeamMember) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(member).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "upsert roster member failed")
	}
	return nil
}
