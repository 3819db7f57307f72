// Package status derives a project's overall status from its assignments.
// The status column is never hand-set outside of the explicit administrative
// transitions and the kickoff guard; everything else flows through Derive so
// the cached field cannot drift from the assignment set.
package status

import (
	"github.com/teamlance/engine/internal/models"
)

// Ready reports whether every non-automated assignment is accepted.
// Automated slots are implicitly satisfied and never block readiness.
// A project with no assignments is not ready.
func Ready(assignments []models.Assignment) bool {
	if len(assignments) == 0 {
		return false
	}
	active := 0
	for _, a := range assignments {
		if a.BookingStatus == models.BookingCompleted {
			// retired slots are history, not open staffing needs
			continue
		}
		active++
		if a.Requirement.Automated {
			continue
		}
		if a.BookingStatus != models.BookingAccepted {
			return false
		}
	}
	return active > 0
}

// Derive recomputes the project status from its current assignment set.
//
// Rules, in priority order:
//   - terminal statuses (completed/archived/deleted) are sticky
//   - an explicit manual pause wins over anything derived
//   - zero assignments, or no assignment past draft, is paused
//   - live is retained only while the project was started and every
//     non-automated assignment is still accepted; a re-opened slot drops it
//     back to awaiting_team (fresh kickoff required)
//   - otherwise the project is awaiting its team
func Derive(p models.Project, assignments []models.Assignment) models.ProjectStatus {
	if p.Status.Terminal() {
		return p.Status
	}
	if p.PausedManually {
		return models.ProjectPaused
	}
	if len(assignments) == 0 {
		return models.ProjectPaused
	}

	anyLeftDraft := false
	for _, a := range assignments {
		if a.BookingStatus != models.BookingDraft {
			anyLeftDraft = true
			break
		}
	}
	if !anyLeftDraft {
		return models.ProjectPaused
	}

	if p.Status == models.ProjectLive && Ready(assignments) {
		return models.ProjectLive
	}
	return models.ProjectAwaitingTeam
}
