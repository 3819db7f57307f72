package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	BaseRepository[models.Assignment]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Assignment, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	// RequestBooking moves a draft assignment into searching. Returns false
	// if the row was not in draft at write time.
	RequestBooking(ctx context.Context, assignmentID uuid.UUID) (bool, error)
	// AcceptIfSearching is the single concurrency-critical write: a
	// compare-and-swap that binds the candidate only if the row is still in
	// searching with no candidate attached. The losing concurrent caller
	// observes zero rows affected (false return).
	AcceptIfSearching(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error)
	// BindAccepted attaches a candidate and marks the slot accepted directly,
	// used for automated slots that skip searching.
	BindAccepted(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error)
	// Retire moves a draft/searching/accepted assignment to completed with a
	// reason. The row is never deleted.
	Retire(ctx context.Context, assignmentID uuid.UUID, reason models.RetireReason) (bool, error)
	// RetireOpenByProject retires every non-completed assignment of a project.
	RetireOpenByProject(ctx context.Context, projectID uuid.UUID, reason models.RetireReason) error
	// UpdateRequirement rewrites the embedded requirement of a draft slot.
	UpdateRequirement(ctx context.Context, assignmentID uuid.UUID, req models.Requirement) (bool, error)
}

type assignmentRepository struct {
	BaseRepository[models.Assignment]
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{BaseRepository: NewBaseRepository[models.Assignment](db), db: db}
}

func (r *assignmentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list assignments failed")
	}
	return out, nil
}

func (r *assignmentRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count assignments failed")
	}
	return n, nil
}

func (r *assignmentRepository) RequestBooking(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND booking_status = ?", assignmentID, models.BookingDraft).
		Update("booking_status", models.BookingSearching)
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "request booking failed")
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepository) AcceptIfSearching(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND booking_status = ? AND candidate_id IS NULL", assignmentID, models.BookingSearching).
		Updates(map[string]any{
			"booking_status": models.BookingAccepted,
			"candidate_id":   candidateID,
		})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "accept assignment failed")
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepository) BindAccepted(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND booking_status IN ?", assignmentID, []models.BookingStatus{models.BookingDraft, models.BookingSearching}).
		Updates(map[string]any{
			"booking_status": models.BookingAccepted,
			"candidate_id":   candidateID,
		})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "bind accepted failed")
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepository) Retire(ctx context.Context, assignmentID uuid.UUID, reason models.RetireReason) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND booking_status IN ?", assignmentID, []models.BookingStatus{
			models.BookingDraft, models.BookingSearching, models.BookingAccepted,
		}).
		Updates(map[string]any{
			"booking_status": models.BookingCompleted,
			"retire_reason":  reason,
		})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "retire assignment failed")
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepository) RetireOpenByProject(ctx context.Context, projectID uuid.UUID, reason models.RetireReason) error {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("project_id = ? AND booking_status IN ?", projectID, []models.BookingStatus{
			models.BookingDraft, models.BookingSearching, models.BookingAccepted,
		}).
		Updates(map[string]any{
			"booking_status": models.BookingCompleted,
			"retire_reason":  reason,
		})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "retire project assignments failed")
	}
	return nil
}

func (r *assignmentRepository) UpdateRequirement(ctx context.Context, assignmentID uuid.UUID, req models.Requirement) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND booking_status = ?", assignmentID, models.BookingDraft).
		Updates(map[string]any{
			"profession": req.Profession,
			"seniority":  req.Seniority,
			"languages":  req.Languages,
			"expertise":  req.Expertise,
			"automated":  req.Automated,
		})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "update requirement failed")
	}
	return res.RowsAffected > 0, nil
}
