package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	BaseRepository[models.CandidateProfile]
	GetByUserID(ctx context.Context, userID uuid.UUID, dest *models.CandidateProfile) error
	// ListQualified returns candidates of the given kind that have passed
	// onboarding. Matching against a requirement happens in the caller.
	ListQualified(ctx context.Context, kind models.CandidateKind) ([]models.CandidateProfile, error)
	// FirstQualifiedAI returns an AI profile for the given profession, if one
	// is provisioned.
	FirstQualifiedAI(ctx context.Context, profession string, dest *models.CandidateProfile) error
}

type candidateRepository struct {
	BaseRepository[models.CandidateProfile]
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{BaseRepository: NewBaseRepository[models.CandidateProfile](db), db: db}
}

func (r *candidateRepository) GetByUserID(ctx context.Context, userID uuid.UUID, dest *models.CandidateProfile) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "candidate profile not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get candidate by user failed")
	}
	return nil
}

func (r *candidateRepository) ListQualified(ctx context.Context, kind models.CandidateKind) ([]models.CandidateProfile, error) {
	var out []models.CandidateProfile
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND availability_status <> ?", kind, models.AvailabilityOnboarding).
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list qualified candidates failed")
	}
	return out, nil
}

func (r *candidateRepository) FirstQualifiedAI(ctx context.Context, profession string, dest *models.CandidateProfile) error {
	err := r.db.WithContext(ctx).
		Where("kind = ? AND profession = ? AND availability_status <> ?",
			models.CandidateAI, profession, models.AvailabilityOnboarding).
		Order("created_at ASC").
		First(dest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "no ai profile for profession")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get ai profile failed")
	}
	return nil
}
