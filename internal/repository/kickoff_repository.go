package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KickoffRepository persists the collaboration scaffolding provisioned by the
// kickoff saga. Every write is idempotent per project so a re-run of the saga
// never duplicates scaffolding.
type KickoffRepository interface {
	GetBoardByProject(ctx context.Context, projectID uuid.UUID, dest *models.Board) error
	CreateBoard(ctx context.Context, board *models.Board, columns []models.BoardColumn, cards []models.BoardCard) error
	EnsureStorageRoot(ctx context.Context, root *models.StorageRoot) error
	GetEventByProject(ctx context.Context, projectID uuid.UUID, dest *models.KickoffEvent) error
	CreateEvent(ctx context.Context, event *models.KickoffEvent) error
	UpsertInvite(ctx context.Context, invite *models.KickoffInvite) error
}

type kickoffRepository struct {
	db *gorm.DB
}

func NewKickoffRepository(db *gorm.DB) KickoffRepository {
	return &kickoffRepository{db: db}
}

func (r *kickoffRepository) GetBoardByProject(ctx context.Context, projectID uuid.UUID, dest *models.Board) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "board not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get board failed")
	}
	return nil
}

func (r *kickoffRepository) CreateBoard(ctx context.Context, board *models.Board, columns []models.BoardColumn, cards []models.BoardCard) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := tx.Create(board).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "create board failed")
	}
	for i := range columns {
		columns[i].BoardID = board.ID
	}
	if len(columns) > 0 {
		if err := tx.Create(&columns).Error; err != nil {
			tx.Rollback()
			return appErr.Wrap(err, appErr.CodeInternal, "create board columns failed")
		}
	}
	for i := range cards {
		if cards[i].ColumnID == uuid.Nil && len(columns) > 0 {
			cards[i].ColumnID = columns[0].ID
		}
	}
	if len(cards) > 0 {
		if err := tx.Create(&cards).Error; err != nil {
			tx.Rollback()
			return appErr.Wrap(err, appErr.CodeInternal, "create board cards failed")
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return nil
}

func (r *kickoffRepository) EnsureStorageRoot(ctx context.Context, root *models.StorageRoot) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoNothing: true,
		}).
		Create(root).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "ensure storage root failed")
	}
	return nil
}

func (r *kickoffRepository) GetEventByProject(ctx context.Context, projectID uuid.UUID, dest *models.KickoffEvent) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "kickoff event not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get kickoff event failed")
	}
	return nil
}

func (r *kickoffRepository) CreateEvent(ctx context.Context, event *models.KickoffEvent) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoNothing: true,
		}).
		Create(event).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create kickoff event failed")
	}
	return nil
}

func (r *kickoffRepository) UpsertInvite(ctx context.Context, invite *models.KickoffInvite) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(invite).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "upsert kickoff invite failed")
	}
	return nil
}
