package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamlance/engine/internal/models"
	appErr "github.com/teamlance/engine/pkg/errors"
)

func TestKickoffService_StartProject(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()
	kickoffTime := time.Now().Add(24 * time.Hour)

	acceptedSlot := func() models.Assignment {
		candID := uuid.New()
		return models.Assignment{
			ID:            uuid.New(),
			ProjectID:     projectID,
			BookingStatus: models.BookingAccepted,
			CandidateID:   &candID,
			Requirement:   backendReq(false),
		}
	}

	t.Run("fully staffed project goes live", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectAwaitingTeam}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()
		assignmentRepo.On("ListByProject", mock.Anything, projectID).
			Return([]models.Assignment{acceptedSlot(), acceptedSlot()}, nil).Once()
		projectRepo.On("TransitionStatus", mock.Anything, projectID,
			[]models.ProjectStatus{models.ProjectAwaitingTeam}, models.ProjectLive, mock.AnythingOfType("*time.Time")).
			Return(true, nil).Once()

		got, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.NoError(t, err)
		require.Equal(t, models.ProjectLive, got.Status)
		require.NotNil(t, got.KickedOffAt)

		mock.AssertExpectationsForObjects(t, projectRepo, assignmentRepo)
	})

	t.Run("not fully staffed is a failed precondition", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectAwaitingTeam}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		open := acceptedSlot()
		open.BookingStatus = models.BookingSearching
		open.CandidateID = nil
		assignmentRepo.On("ListByProject", mock.Anything, projectID).
			Return([]models.Assignment{acceptedSlot(), open}, nil).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeFailedPrecondition))
		projectRepo.AssertNotCalled(t, "TransitionStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("automated slots never block the start", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectAwaitingTeam}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		automated := models.Assignment{
			ID:            uuid.New(),
			ProjectID:     projectID,
			BookingStatus: models.BookingDraft,
			Requirement:   backendReq(true),
		}
		assignmentRepo.On("ListByProject", mock.Anything, projectID).
			Return([]models.Assignment{acceptedSlot(), automated}, nil).Once()
		projectRepo.On("TransitionStatus", mock.Anything, projectID,
			[]models.ProjectStatus{models.ProjectAwaitingTeam}, models.ProjectLive, mock.AnythingOfType("*time.Time")).
			Return(true, nil).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.NoError(t, err)
	})

	t.Run("already live is a conflict", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectLive}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	})

	t.Run("losing the guard transition is a conflict", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectAwaitingTeam}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()
		assignmentRepo.On("ListByProject", mock.Anything, projectID).
			Return([]models.Assignment{acceptedSlot()}, nil).Once()

		// another start won the conditional write in between
		projectRepo.On("TransitionStatus", mock.Anything, projectID,
			[]models.ProjectStatus{models.ProjectAwaitingTeam}, models.ProjectLive, mock.AnythingOfType("*time.Time")).
			Return(false, nil).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	})

	t.Run("manually paused project must be resumed first", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectPaused, PausedManually: true}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeFailedPrecondition))
	})

	t.Run("non-owner cannot start", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewKickoffService(projectRepo, assignmentRepo, nil, nil)

		project := &models.Project{ID: projectID, OwnerID: uuid.New(), Status: models.ProjectAwaitingTeam}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		_, err := svc.StartProject(context.Background(), projectID, ownerID, kickoffTime)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})
}

func TestProjectService_Terminate(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()

	t.Run("complete retires open assignments and closes the project", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewProjectService(projectRepo, assignmentRepo, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectLive}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()
		assignmentRepo.On("RetireOpenByProject", mock.Anything, projectID, models.RetireProjectCompleted).
			Return(nil).Once()
		projectRepo.On("TransitionStatus", mock.Anything, projectID,
			[]models.ProjectStatus{models.ProjectPaused, models.ProjectAwaitingTeam, models.ProjectLive},
			models.ProjectCompleted, (*time.Time)(nil)).
			Return(true, nil).Once()

		err := svc.CompleteProject(context.Background(), projectID, ownerID)
		require.NoError(t, err)

		mock.AssertExpectationsForObjects(t, projectRepo, assignmentRepo)
	})

	t.Run("terminal projects stay terminal", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewProjectService(projectRepo, assignmentRepo, nil)

		project := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectArchived}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, project).Once()

		err := svc.DeleteProject(context.Background(), projectID, ownerID)
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, appErr.CodeFailedPrecondition))
		assignmentRepo.AssertNotCalled(t, "RetireOpenByProject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("resume re-derives instead of restoring live", func(t *testing.T) {
		projectRepo := &mockProjectRepository{}
		assignmentRepo := &mockAssignmentRepository{}
		svc := NewProjectService(projectRepo, assignmentRepo, nil)

		paused := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectPaused, PausedManually: true}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, paused).Once()
		projectRepo.On("SetPausedManually", mock.Anything, projectID, false, models.ProjectPaused).
			Return(nil).Once()

		// refresh sees the cleared flag and a staffed slot set
		candID := uuid.New()
		cleared := &models.Project{ID: projectID, OwnerID: ownerID, Status: models.ProjectPaused}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Return(nil, cleared).Once()
		assignmentRepo.On("ListByProject", mock.Anything, projectID).
			Return([]models.Assignment{{
				ID:            uuid.New(),
				ProjectID:     projectID,
				BookingStatus: models.BookingAccepted,
				CandidateID:   &candID,
				Requirement:   backendReq(false),
			}}, nil).Once()

		// fully staffed but was not live before: awaiting_team, never live
		projectRepo.On("SetStatus", mock.Anything, projectID, models.ProjectAwaitingTeam).
			Return(nil).Once()

		err := svc.ResumeProject(context.Background(), projectID, ownerID)
		require.NoError(t, err)

		mock.AssertExpectationsForObjects(t, projectRepo, assignmentRepo)
	})
}
