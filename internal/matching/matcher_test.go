package matching

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamlance/engine/internal/models"
)

func req(profession, seniority string, langs, exp []string) models.Requirement {
	return models.Requirement{
		Profession: profession,
		Seniority:  seniority,
		Languages:  langs,
		Expertise:  exp,
	}
}

func candidate(profession, seniority string, avail models.AvailabilityStatus, langs, exp []string) models.CandidateProfile {
	return models.CandidateProfile{
		Kind:               models.CandidateHuman,
		AvailabilityStatus: avail,
		Profession:         profession,
		Seniority:          seniority,
		Languages:          langs,
		Expertise:          exp,
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		req  models.Requirement
		cand models.CandidateProfile
		want bool
	}{
		{
			name: "exact match",
			req:  req("backend", "senior", []string{"en"}, []string{"go"}),
			cand: candidate("backend", "senior", models.AvailabilityAvailable, []string{"en"}, []string{"go"}),
			want: true,
		},
		{
			name: "candidate offers superset of languages and expertise",
			req:  req("backend", "senior", []string{"en"}, []string{"go"}),
			cand: candidate("backend", "senior", models.AvailabilityAvailable, []string{"en", "de", "fr"}, []string{"go", "postgres", "redis"}),
			want: true,
		},
		{
			name: "profession mismatch",
			req:  req("backend", "senior", nil, nil),
			cand: candidate("design", "senior", models.AvailabilityAvailable, nil, nil),
			want: false,
		},
		{
			name: "seniority mismatch is exact, not ordered",
			req:  req("backend", "senior", nil, nil),
			cand: candidate("backend", "lead", models.AvailabilityAvailable, nil, nil),
			want: false,
		},
		{
			name: "onboarding candidate never matches",
			req:  req("backend", "senior", nil, nil),
			cand: candidate("backend", "senior", models.AvailabilityOnboarding, nil, nil),
			want: false,
		},
		{
			name: "on_hold candidate still matches",
			req:  req("backend", "senior", nil, nil),
			cand: candidate("backend", "senior", models.AvailabilityOnHold, nil, nil),
			want: true,
		},
		{
			name: "missing one required language never matches",
			req:  req("backend", "senior", []string{"en", "de"}, nil),
			cand: candidate("backend", "senior", models.AvailabilityAvailable, []string{"en"}, nil),
			want: false,
		},
		{
			name: "missing one required expertise never matches",
			req:  req("backend", "senior", nil, []string{"go", "kafka"}),
			cand: candidate("backend", "senior", models.AvailabilityAvailable, nil, []string{"go"}),
			want: false,
		},
		{
			name: "empty requirement sets match any candidate skills",
			req:  req("backend", "senior", nil, nil),
			cand: candidate("backend", "senior", models.AvailabilityAvailable, []string{"en"}, []string{"go"}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Matches(tt.req, tt.cand))
		})
	}
}
