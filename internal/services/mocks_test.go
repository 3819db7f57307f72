package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by services)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// Mock implementations

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) Create(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id any, dest *models.Project) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Project)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockProjectRepository) Update(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepository) SetStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	args := m.Called(ctx, projectID, status)
	return args.Error(0)
}

func (m *mockProjectRepository) SetPausedManually(ctx context.Context, projectID uuid.UUID, paused bool, status models.ProjectStatus) error {
	args := m.Called(ctx, projectID, paused, status)
	return args.Error(0)
}

func (m *mockProjectRepository) TransitionStatus(ctx context.Context, projectID uuid.UUID, from []models.ProjectStatus, to models.ProjectStatus, kickedOffAt *time.Time) (bool, error) {
	args := m.Called(ctx, projectID, from, to, kickedOffAt)
	return args.Bool(0), args.Error(1)
}

type mockAssignmentRepository struct {
	mock.Mock
}

func (m *mockAssignmentRepository) Create(ctx context.Context, obj *models.Assignment) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockAssignmentRepository) GetByID(ctx context.Context, id any, dest *models.Assignment) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Assignment)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockAssignmentRepository) Update(ctx context.Context, obj *models.Assignment) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockAssignmentRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAssignmentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Assignment, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Assignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAssignmentRepository) RequestBooking(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, assignmentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssignmentRepository) AcceptIfSearching(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error) {
	args := m.Called(ctx, assignmentID, candidateID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssignmentRepository) BindAccepted(ctx context.Context, assignmentID, candidateID uuid.UUID) (bool, error) {
	args := m.Called(ctx, assignmentID, candidateID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssignmentRepository) Retire(ctx context.Context, assignmentID uuid.UUID, reason models.RetireReason) (bool, error) {
	args := m.Called(ctx, assignmentID, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssignmentRepository) RetireOpenByProject(ctx context.Context, projectID uuid.UUID, reason models.RetireReason) error {
	args := m.Called(ctx, projectID, reason)
	return args.Error(0)
}

func (m *mockAssignmentRepository) UpdateRequirement(ctx context.Context, assignmentID uuid.UUID, req models.Requirement) (bool, error) {
	args := m.Called(ctx, assignmentID, req)
	return args.Bool(0), args.Error(1)
}

type mockCandidateRepository struct {
	mock.Mock
}

func (m *mockCandidateRepository) Create(ctx context.Context, obj *models.CandidateProfile) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockCandidateRepository) GetByID(ctx context.Context, id any, dest *models.CandidateProfile) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.CandidateProfile)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockCandidateRepository) Update(ctx context.Context, obj *models.CandidateProfile) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockCandidateRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCandidateRepository) GetByUserID(ctx context.Context, userID uuid.UUID, dest *models.CandidateProfile) error {
	args := m.Called(ctx, userID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.CandidateProfile)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockCandidateRepository) ListQualified(ctx context.Context, kind models.CandidateKind) ([]models.CandidateProfile, error) {
	args := m.Called(ctx, kind)
	if v := args.Get(0); v != nil {
		return v.([]models.CandidateProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCandidateRepository) FirstQualifiedAI(ctx context.Context, profession string, dest *models.CandidateProfile) error {
	args := m.Called(ctx, profession, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.CandidateProfile)
		*dest = *src
	}
	return args.Error(0)
}
