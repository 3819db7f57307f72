package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	// SetStatus updates the derived status, never touching terminal rows.
	SetStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	// SetPausedManually flips the manual-pause flag alongside the status.
	SetPausedManually(ctx context.Context, projectID uuid.UUID, paused bool, status models.ProjectStatus) error
	// TransitionStatus performs a conditional status write: it succeeds only
	// if the row is still in one of the from statuses at write time. A false
	// return with nil error means the guard lost (zero rows affected).
	TransitionStatus(ctx context.Context, projectID uuid.UUID, from []models.ProjectStatus, to models.ProjectStatus, kickedOffAt *time.Time) (bool, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status <> ?", ownerID, models.ProjectDeleted).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by owner failed")
	}
	return out, nil
}

func (r *projectRepository) SetStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status NOT IN ?", projectID, []models.ProjectStatus{
			models.ProjectCompleted, models.ProjectArchived, models.ProjectDeleted,
		}).
		Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "set project status failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "project not found or terminal")
	}
	return nil
}

func (r *projectRepository) SetPausedManually(ctx context.Context, projectID uuid.UUID, paused bool, status models.ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status NOT IN ?", projectID, []models.ProjectStatus{
			models.ProjectCompleted, models.ProjectArchived, models.ProjectDeleted,
		}).
		Updates(map[string]any{"paused_manually": paused, "status": status})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "set manual pause failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "project not found or terminal")
	}
	return nil
}

func (r *projectRepository) TransitionStatus(ctx context.Context, projectID uuid.UUID, from []models.ProjectStatus, to models.ProjectStatus, kickedOffAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if kickedOffAt != nil {
		updates["kicked_off_at"] = *kickedOffAt
	}
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status IN ?", projectID, from).
		Updates(updates)
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "transition project status failed")
	}
	return res.RowsAffected > 0, nil
}
