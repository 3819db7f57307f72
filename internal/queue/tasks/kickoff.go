package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	appErr "github.com/teamlance/engine/pkg/errors"
	"github.com/teamlance/engine/pkg/logger"
	"github.com/teamlance/engine/pkg/utils"
)

// TypeKickoff is the task type for the project kickoff saga.
const TypeKickoff = "project:kickoff"

// KickoffPayload is the task payload for the kickoff saga.
type KickoffPayload struct {
	ProjectID   string `json:"project_id"`
	KickoffTime string `json:"kickoff_time"`
}

var starterColumns = []string{"To Do", "In Progress", "Review", "Done"}

// KickoffTaskHandler runs the kickoff saga: an ordered list of independently
// retryable steps with per-step failure isolation. The project is already
// live when this runs; there is no transaction across the steps and no
// rollback. A project live with minor missing scaffolding beats a project
// stuck mid-setup, so step failures are logged and swallowed.
type KickoffTaskHandler struct {
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	candidateRepo  repository.CandidateRepository
	userRepo       repository.UserRepository
	rosterRepo     repository.RosterRepository
	kickoffRepo    repository.KickoffRepository
	notifyRepo     repository.NotificationRepository
	hub            *relay.Hub
	meetingBaseURL string
}

func NewKickoffTaskHandler(
	projectRepo repository.ProjectRepository,
	assignmentRepo repository.AssignmentRepository,
	candidateRepo repository.CandidateRepository,
	userRepo repository.UserRepository,
	rosterRepo repository.RosterRepository,
	kickoffRepo repository.KickoffRepository,
	notifyRepo repository.NotificationRepository,
	hub *relay.Hub,
	meetingBaseURL string,
) *KickoffTaskHandler {
	return &KickoffTaskHandler{
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		candidateRepo:  candidateRepo,
		userRepo:       userRepo,
		rosterRepo:     rosterRepo,
		kickoffRepo:    kickoffRepo,
		notifyRepo:     notifyRepo,
		hub:            hub,
		meetingBaseURL: meetingBaseURL,
	}
}

type kickoffStep struct {
	name string
	run  func(ctx context.Context) error
}

func (h *KickoffTaskHandler) HandleKickoff(ctx context.Context, t *asynq.Task) error {
	var p KickoffPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid kickoff payload", zap.Error(err))
		return err
	}
	projectID, err := uuid.Parse(p.ProjectID)
	if err != nil {
		logger.L().Error("invalid project id in kickoff task", zap.Error(err))
		return err
	}
	kickoffTime, err := time.Parse(time.RFC3339, p.KickoffTime)
	if err != nil {
		kickoffTime = time.Now()
	}

	logger.L().Info("handling kickoff", zap.String("project_id", projectID.String()))

	var project models.Project
	if err := h.projectRepo.GetByID(ctx, projectID, &project); err != nil {
		return err
	}
	if project.KickedOffAt == nil {
		// the guard transition never ran for this project; don't scaffold
		logger.L().Warn("kickoff task for a project that was never started",
			zap.String("project_id", projectID.String()))
		return nil
	}

	assignments, err := h.assignmentRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	roster, rosterErr := h.buildRoster(ctx, &project, assignments)

	steps := []kickoffStep{
		{name: "collaboration_board", run: func(ctx context.Context) error {
			return h.provisionBoard(ctx, &project)
		}},
		{name: "storage_root", run: func(ctx context.Context) error {
			return h.kickoffRepo.EnsureStorageRoot(ctx, &models.StorageRoot{
				ProjectID: projectID,
				Path:      fmt.Sprintf("projects/%s", projectID),
			})
		}},
		{name: "kickoff_event", run: func(ctx context.Context) error {
			return h.createEvent(ctx, &project, roster, kickoffTime)
		}},
		{name: "candidate_notifications", run: func(ctx context.Context) error {
			return h.notifyCandidates(ctx, &project, assignments)
		}},
	}

	var failed []string
	if rosterErr != nil {
		// the roster feeds later steps, but its failure still doesn't abort
		// the kickoff; later steps work with whatever roster rows exist
		failed = append(failed, "team_roster")
		logger.L().Warn("kickoff step failed", zap.String("step", "team_roster"), zap.Error(rosterErr))
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			failed = append(failed, step.name)
			logger.L().Warn("kickoff step failed", zap.String("step", step.name), zap.Error(err))
		}
	}

	if len(failed) > 0 {
		logger.L().Warn("kickoff completed with missing scaffolding",
			zap.String("project_id", projectID.String()),
			zap.Strings("failed_steps", failed),
		)
	} else {
		logger.L().Info("kickoff completed", zap.String("project_id", projectID.String()))
	}

	if h.hub != nil {
		payload, _ := json.Marshal(map[string]any{"failed_steps": failed})
		h.hub.Broadcast(ctx, relay.Event{
			Type:      relay.EventKickoffCompleted,
			ProjectID: projectID,
			Payload:   payload,
		})
	}

	// step failures are an operator concern; returning nil keeps asynq from
	// re-running a kickoff that already mostly succeeded
	return nil
}

// buildRoster snapshots the owner plus every accepted candidate. Upserts keep
// a re-run from duplicating members. AI profiles have no account or contact
// details and are left off the roster.
func (h *KickoffTaskHandler) buildRoster(ctx context.Context, project *models.Project, assignments []models.Assignment) ([]models.TeamMember, error) {
	var owner models.User
	if err := h.userRepo.GetByID(ctx, project.OwnerID, &owner); err != nil {
		return nil, err
	}

	members := []models.TeamMember{{
		ProjectID: project.ID,
		UserID:    owner.ID,
		Role:      models.RosterOwner,
		Name:      owner.Name,
		Email:     owner.Email,
	}}

	for _, a := range assignments {
		if a.BookingStatus != models.BookingAccepted || a.CandidateID == nil {
			continue
		}
		var c models.CandidateProfile
		if err := h.candidateRepo.GetByID(ctx, *a.CandidateID, &c); err != nil {
			return nil, err
		}
		if c.UserID == nil {
			continue
		}
		var u models.User
		if err := h.userRepo.GetByID(ctx, *c.UserID, &u); err != nil {
			return nil, err
		}
		members = append(members, models.TeamMember{
			ProjectID:   project.ID,
			UserID:      u.ID,
			CandidateID: &c.ID,
			Role:        models.RosterMember,
			Name:        u.Name,
			Email:       u.Email,
		})
	}

	for i := range members {
		if err := h.rosterRepo.Upsert(ctx, &members[i]); err != nil {
			return members, err
		}
	}
	return members, nil
}

func (h *KickoffTaskHandler) provisionBoard(ctx context.Context, project *models.Project) error {
	var existing models.Board
	err := h.kickoffRepo.GetBoardByProject(ctx, project.ID, &existing)
	if err == nil {
		return nil
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return err
	}

	columns := make([]models.BoardColumn, 0, len(starterColumns))
	for i, name := range starterColumns {
		columns = append(columns, models.BoardColumn{Name: name, Position: i})
	}
	cards := []models.BoardCard{
		{
			Title: "Welcome to " + project.Title,
			Body:  "This board was set up automatically when the project went live. Use it to track the team's work.",
		},
		{
			Title: "Kickoff checklist",
			Body:  "Review the project description, confirm the kickoff meeting time, and introduce yourself to the team.",
		},
	}
	return h.kickoffRepo.CreateBoard(ctx, &models.Board{
		ProjectID: project.ID,
		Name:      project.Title,
	}, columns, cards)
}

func (h *KickoffTaskHandler) createEvent(ctx context.Context, project *models.Project, roster []models.TeamMember, kickoffTime time.Time) error {
	event := &models.KickoffEvent{
		ProjectID:   project.ID,
		ScheduledAt: kickoffTime,
		MeetingLink: utils.MeetingLink(h.meetingBaseURL, project.ID[:]),
	}
	if err := h.kickoffRepo.CreateEvent(ctx, event); err != nil {
		return err
	}
	// re-read so a re-run resolves the event created by the first run
	if err := h.kickoffRepo.GetEventByProject(ctx, project.ID, event); err != nil {
		return err
	}

	for i := range roster {
		invite := &models.KickoffInvite{EventID: event.ID, UserID: roster[i].UserID}
		if err := h.kickoffRepo.UpsertInvite(ctx, invite); err != nil {
			return err
		}
	}
	return nil
}

func (h *KickoffTaskHandler) notifyCandidates(ctx context.Context, project *models.Project, assignments []models.Assignment) error {
	var firstErr error
	for _, a := range assignments {
		if a.BookingStatus != models.BookingAccepted || a.CandidateID == nil {
			continue
		}
		var c models.CandidateProfile
		if err := h.candidateRepo.GetByID(ctx, *a.CandidateID, &c); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if c.UserID == nil {
			continue
		}
		n := &models.Notification{
			UserID:       *c.UserID,
			Kind:         models.NotifyKickoffInvite,
			ProjectID:    project.ID,
			AssignmentID: &a.ID,
			Message:      fmt.Sprintf("You've been invited to the kickoff of %q.", project.Title),
		}
		if err := h.notifyRepo.Create(ctx, n); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
