// Package matching decides whether a candidate satisfies a staffing
// requirement. Matching is boolean, not ranked: tie-breaking among several
// matching candidates is left to the assignment's conditional accept.
package matching

import (
	"github.com/teamlance/engine/internal/models"
)

// Matches reports whether the candidate satisfies the requirement. Pure, no
// side effects.
//
// A candidate matches iff profession and seniority are exactly equal, the
// candidate has passed onboarding, and the requirement's language and
// expertise sets are subsets of the candidate's (subset, not equality).
func Matches(req models.Requirement, c models.CandidateProfile) bool {
	if c.Profession != req.Profession {
		return false
	}
	if c.Seniority != req.Seniority {
		return false
	}
	if c.AvailabilityStatus == models.AvailabilityOnboarding {
		return false
	}
	if !subset(req.Languages, c.Languages) {
		return false
	}
	if !subset(req.Expertise, c.Expertise) {
		return false
	}
	return true
}

func subset(required, offered []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(offered))
	for _, s := range offered {
		have[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
