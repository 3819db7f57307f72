package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/teamlance/engine/internal/models"
)

func newFanoutTask(t *testing.T, assignmentID uuid.UUID) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(MatchFanoutPayload{AssignmentID: assignmentID.String()})
	require.NoError(t, err)
	return asynq.NewTask(TypeMatchFanout, payload)
}

func TestMatchTaskHandler_HandleMatchFanout(t *testing.T) {
	projectID := uuid.New()
	assignmentID := uuid.New()

	searching := &models.Assignment{
		ID:            assignmentID,
		ProjectID:     projectID,
		BookingStatus: models.BookingSearching,
		Requirement: models.Requirement{
			Profession: "backend_engineer",
			Seniority:  "senior",
			Languages:  datatypes.JSONSlice[string]{"english"},
			Expertise:  datatypes.JSONSlice[string]{"go"},
		},
	}

	profile := func(profession, seniority string, langs, exps []string) models.CandidateProfile {
		userID := uuid.New()
		return models.CandidateProfile{
			ID:                 uuid.New(),
			UserID:             &userID,
			Kind:               models.CandidateHuman,
			AvailabilityStatus: models.AvailabilityAvailable,
			Profession:         profession,
			Seniority:          seniority,
			Languages:          datatypes.JSONSlice[string](langs),
			Expertise:          datatypes.JSONSlice[string](exps),
		}
	}

	t.Run("notifies only qualifying candidates", func(t *testing.T) {
		assignmentRepo := &mockAssignmentRepository{}
		candidateRepo := &mockCandidateRepository{}
		notifyRepo := &mockNotificationRepository{}
		h := NewMatchTaskHandler(assignmentRepo, candidateRepo, notifyRepo, nil)

		assignmentRepo.On("GetByID", mock.Anything, assignmentID, &models.Assignment{}).
			Return(nil, searching).Once()

		match := profile("backend_engineer", "senior", []string{"english", "german"}, []string{"go", "postgres"})
		wrongProfession := profile("designer", "senior", []string{"english"}, []string{"go"})
		missingExpertise := profile("backend_engineer", "senior", []string{"english"}, []string{"rust"})
		candidateRepo.On("ListQualified", mock.Anything, models.CandidateHuman).
			Return([]models.CandidateProfile{match, wrongProfession, missingExpertise}, nil).Once()

		notifyRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.UserID == *match.UserID &&
				n.Kind == models.NotifyBookingOpportunity &&
				n.AssignmentID != nil && *n.AssignmentID == assignmentID
		})).Return(nil).Once()

		err := h.HandleMatchFanout(context.Background(), newFanoutTask(t, assignmentID))
		require.NoError(t, err)

		mock.AssertExpectationsForObjects(t, assignmentRepo, candidateRepo, notifyRepo)
	})

	t.Run("skips a slot that left searching while queued", func(t *testing.T) {
		assignmentRepo := &mockAssignmentRepository{}
		candidateRepo := &mockCandidateRepository{}
		notifyRepo := &mockNotificationRepository{}
		h := NewMatchTaskHandler(assignmentRepo, candidateRepo, notifyRepo, nil)

		candID := uuid.New()
		taken := *searching
		taken.BookingStatus = models.BookingAccepted
		taken.CandidateID = &candID
		assignmentRepo.On("GetByID", mock.Anything, assignmentID, &models.Assignment{}).
			Return(nil, &taken).Once()

		err := h.HandleMatchFanout(context.Background(), newFanoutTask(t, assignmentID))
		require.NoError(t, err)

		candidateRepo.AssertNotCalled(t, "ListQualified", mock.Anything, mock.Anything)
		notifyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("one failed notification does not stop the fan-out", func(t *testing.T) {
		assignmentRepo := &mockAssignmentRepository{}
		candidateRepo := &mockCandidateRepository{}
		notifyRepo := &mockNotificationRepository{}
		h := NewMatchTaskHandler(assignmentRepo, candidateRepo, notifyRepo, nil)

		assignmentRepo.On("GetByID", mock.Anything, assignmentID, &models.Assignment{}).
			Return(nil, searching).Once()

		first := profile("backend_engineer", "senior", []string{"english"}, []string{"go"})
		second := profile("backend_engineer", "senior", []string{"english"}, []string{"go"})
		candidateRepo.On("ListQualified", mock.Anything, models.CandidateHuman).
			Return([]models.CandidateProfile{first, second}, nil).Once()

		notifyRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.UserID == *first.UserID
		})).Return(notFoundErr()).Once()
		notifyRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.UserID == *second.UserID
		})).Return(nil).Once()

		err := h.HandleMatchFanout(context.Background(), newFanoutTask(t, assignmentID))
		require.NoError(t, err)

		mock.AssertExpectationsForObjects(t, notifyRepo)
	})
}
