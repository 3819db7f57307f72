package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/matching"
	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	appErr "github.com/teamlance/engine/pkg/errors"
	"github.com/teamlance/engine/pkg/logger"
)

// AssignmentService drives the booking lifecycle of staffing slots.
type AssignmentService interface {
	// ConfigureRequirement creates a new assignment in draft.
	ConfigureRequirement(ctx context.Context, projectID, ownerID uuid.UUID, req models.Requirement) (*models.Assignment, error)
	// RequestBooking moves a draft slot into searching and fans matching
	// notifications out to qualifying candidates. Idempotently re-triggerable
	// from searching. Automated slots skip searching and bind an AI profile.
	RequestBooking(ctx context.Context, assignmentID, ownerID uuid.UUID) (*models.Assignment, error)
	// Accept binds the candidate through a conditional write; exactly one of
	// several concurrent accepts wins, the rest get a conflict.
	Accept(ctx context.Context, assignmentID, candidateUserID uuid.UUID) (*models.Assignment, error)
	// Decline leaves the slot in searching with no candidate attached. The
	// slot is not automatically re-matched; the client re-requests booking.
	Decline(ctx context.Context, assignmentID, candidateUserID uuid.UUID) error
	// EditRequirement rewrites a slot's criteria. If the slot is staffed and
	// the current candidate no longer matches, the old assignment is retired
	// with reason requirement_changed and a replacement opens in searching.
	EditRequirement(ctx context.Context, assignmentID, ownerID uuid.UUID, req models.Requirement) (*models.Assignment, error)
}

type assignmentService struct {
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	candidateRepo  repository.CandidateRepository
	asynqClient    *asynq.Client
	hub            *relay.Hub
}

func NewAssignmentService(projectRepo repository.ProjectRepository, assignmentRepo repository.AssignmentRepository, candidateRepo repository.CandidateRepository, client *asynq.Client, hub *relay.Hub) AssignmentService {
	return &assignmentService{
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		candidateRepo:  candidateRepo,
		asynqClient:    client,
		hub:            hub,
	}
}

var _ AssignmentService = (*assignmentService)(nil)

func (s *assignmentService) ConfigureRequirement(ctx context.Context, projectID, ownerID uuid.UUID, req models.Requirement) (*models.Assignment, error) {
	logger.L().Info("configure requirement", zap.String("project_id", projectID.String()), zap.String("profession", req.Profession))

	p, err := s.ownedProject(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "project is closed")
	}

	a := &models.Assignment{
		ProjectID:     projectID,
		BookingStatus: models.BookingDraft,
		Requirement:   req,
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, projectID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) RequestBooking(ctx context.Context, assignmentID, ownerID uuid.UUID) (*models.Assignment, error) {
	logger.L().Info("request booking", zap.String("assignment_id", assignmentID.String()))

	var a models.Assignment
	if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
		return nil, err
	}
	if _, err := s.ownedProject(ctx, a.ProjectID, ownerID); err != nil {
		return nil, err
	}

	// staffing must have been configured before booking starts
	n, err := s.assignmentRepo.CountByProject(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "project has no staffing configured")
	}

	if a.Requirement.Automated {
		return s.bindAutomated(ctx, &a)
	}

	moved, err := s.assignmentRepo.RequestBooking(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !moved {
		// not in draft; re-triggering an already-searching slot is allowed
		if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
			return nil, err
		}
		if a.BookingStatus != models.BookingSearching {
			return nil, appErr.New(appErr.CodeFailedPrecondition, "booking can only be requested for draft or searching assignments").
				WithMeta("booking_status", string(a.BookingStatus))
		}
	} else {
		a.BookingStatus = models.BookingSearching
	}

	s.enqueueMatchFanout(ctx, assignmentID)

	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, a.ProjectID); err != nil {
		return nil, err
	}
	broadcastAssignment(ctx, s.hub, &a)
	return &a, nil
}

// bindAutomated satisfies an AI slot immediately: automated resources never
// search and never block project readiness.
func (s *assignmentService) bindAutomated(ctx context.Context, a *models.Assignment) (*models.Assignment, error) {
	var ai models.CandidateProfile
	if err := s.candidateRepo.FirstQualifiedAI(ctx, a.Requirement.Profession, &ai); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeFailedPrecondition, "no ai profile provisioned for profession").
				WithMeta("profession", a.Requirement.Profession)
		}
		return nil, err
	}

	bound, err := s.assignmentRepo.BindAccepted(ctx, a.ID, ai.ID)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "assignment is no longer bookable")
	}
	a.BookingStatus = models.BookingAccepted
	a.CandidateID = &ai.ID

	logger.L().Info("automated slot bound",
		zap.String("assignment_id", a.ID.String()),
		zap.String("candidate_id", ai.ID.String()),
	)

	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, a.ProjectID); err != nil {
		return nil, err
	}
	broadcastAssignment(ctx, s.hub, a)
	return a, nil
}

func (s *assignmentService) Accept(ctx context.Context, assignmentID, candidateUserID uuid.UUID) (*models.Assignment, error) {
	logger.L().Info("accept assignment", zap.String("assignment_id", assignmentID.String()), zap.String("user_id", candidateUserID.String()))

	var cand models.CandidateProfile
	if err := s.candidateRepo.GetByUserID(ctx, candidateUserID, &cand); err != nil {
		return nil, err
	}

	var a models.Assignment
	if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
		return nil, err
	}

	// a retried accept that already succeeded is a no-op, not a new transition
	if a.BookingStatus == models.BookingAccepted && a.CandidateID != nil && *a.CandidateID == cand.ID {
		return &a, nil
	}

	switch a.BookingStatus {
	case models.BookingSearching:
	case models.BookingAccepted:
		return nil, appErr.New(appErr.CodeConflict, "opportunity already taken")
	default:
		return nil, appErr.New(appErr.CodeFailedPrecondition, "assignment is not open for booking").
			WithMeta("booking_status", string(a.BookingStatus))
	}

	if !matching.Matches(a.Requirement, cand) {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "candidate does not satisfy the requirement")
	}

	won, err := s.assignmentRepo.AcceptIfSearching(ctx, assignmentID, cand.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		// the conditional write decides the race; losing it is a conflict,
		// surfaced distinctly so the UI can say the opportunity is gone
		if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
			return nil, err
		}
		if a.BookingStatus == models.BookingAccepted && a.CandidateID != nil && *a.CandidateID == cand.ID {
			return &a, nil
		}
		return nil, appErr.New(appErr.CodeConflict, "opportunity already taken")
	}

	a.BookingStatus = models.BookingAccepted
	a.CandidateID = &cand.ID

	logger.L().Info("assignment accepted",
		zap.String("assignment_id", a.ID.String()),
		zap.String("candidate_id", cand.ID.String()),
	)

	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, a.ProjectID); err != nil {
		return nil, err
	}
	broadcastAssignment(ctx, s.hub, &a)
	return &a, nil
}

func (s *assignmentService) Decline(ctx context.Context, assignmentID, candidateUserID uuid.UUID) error {
	logger.L().Info("decline assignment", zap.String("assignment_id", assignmentID.String()), zap.String("user_id", candidateUserID.String()))

	var cand models.CandidateProfile
	if err := s.candidateRepo.GetByUserID(ctx, candidateUserID, &cand); err != nil {
		return err
	}

	var a models.Assignment
	if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
		return err
	}
	if a.BookingStatus != models.BookingSearching {
		return appErr.New(appErr.CodeFailedPrecondition, "only searching assignments can be declined").
			WithMeta("booking_status", string(a.BookingStatus))
	}

	// the slot stays in searching so it can re-match; a new search cycle is
	// only started by the client re-requesting booking
	broadcastAssignment(ctx, s.hub, &a)
	return nil
}

func (s *assignmentService) EditRequirement(ctx context.Context, assignmentID, ownerID uuid.UUID, req models.Requirement) (*models.Assignment, error) {
	logger.L().Info("edit requirement", zap.String("assignment_id", assignmentID.String()))

	var a models.Assignment
	if err := s.assignmentRepo.GetByID(ctx, assignmentID, &a); err != nil {
		return nil, err
	}
	if _, err := s.ownedProject(ctx, a.ProjectID, ownerID); err != nil {
		return nil, err
	}

	switch a.BookingStatus {
	case models.BookingDraft:
		updated, err := s.assignmentRepo.UpdateRequirement(ctx, assignmentID, req)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, appErr.New(appErr.CodeConflict, "assignment left draft during edit")
		}
		a.Requirement = req
		return &a, nil

	case models.BookingAccepted:
		var cand models.CandidateProfile
		if a.CandidateID != nil {
			if err := s.candidateRepo.GetByID(ctx, *a.CandidateID, &cand); err != nil {
				return nil, err
			}
		}
		if a.CandidateID != nil && matching.Matches(req, cand) {
			// current candidate still satisfies the new criteria; keep them
			a.Requirement = req
			if err := s.assignmentRepo.Update(ctx, &a); err != nil {
				return nil, err
			}
			return &a, nil
		}
		return s.replace(ctx, &a, req)

	case models.BookingSearching:
		return s.replace(ctx, &a, req)

	default:
		return nil, appErr.New(appErr.CodeFailedPrecondition, "completed assignments cannot be edited")
	}
}

// replace retires the slot with reason requirement_changed and opens a
// replacement directly in searching. A previously live project reverts to
// awaiting_team through the status refresh.
func (s *assignmentService) replace(ctx context.Context, old *models.Assignment, req models.Requirement) (*models.Assignment, error) {
	retired, err := s.assignmentRepo.Retire(ctx, old.ID, models.RetireRequirementChanged)
	if err != nil {
		return nil, err
	}
	if !retired {
		return nil, appErr.New(appErr.CodeConflict, "assignment changed during edit")
	}

	replacement := &models.Assignment{
		ProjectID:     old.ProjectID,
		BookingStatus: models.BookingSearching,
		Requirement:   req,
	}
	if req.Automated {
		replacement.BookingStatus = models.BookingDraft
	}
	if err := s.assignmentRepo.Create(ctx, replacement); err != nil {
		return nil, err
	}

	logger.L().Info("assignment replaced after requirement change",
		zap.String("retired_id", old.ID.String()),
		zap.String("replacement_id", replacement.ID.String()),
	)

	if req.Automated {
		return s.bindAutomated(ctx, replacement)
	}

	s.enqueueMatchFanout(ctx, replacement.ID)

	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, old.ProjectID); err != nil {
		return nil, err
	}
	broadcastAssignment(ctx, s.hub, replacement)
	return replacement, nil
}

func (s *assignmentService) enqueueMatchFanout(ctx context.Context, assignmentID uuid.UUID) {
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping match fan-out", zap.String("assignment_id", assignmentID.String()))
		return
	}
	payload, _ := json.Marshal(map[string]string{"assignment_id": assignmentID.String()})
	task := asynq.NewTask("assignment:match_fanout", payload)
	if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
		// best-effort: the slot stays searching, the client can re-request
		logger.L().Error("enqueue match fan-out failed", zap.Error(err), zap.String("assignment_id", assignmentID.String()))
	}
}

func (s *assignmentService) ownedProject(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}
