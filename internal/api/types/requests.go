package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=client candidate"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate     string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Budget      *float64 `json:"budget" validate:"omitempty,gte=0"`
}

type RequirementRequest struct {
	Profession string   `json:"profession" validate:"required"`
	Seniority  string   `json:"seniority" validate:"required"`
	Languages  []string `json:"languages"`
	Expertise  []string `json:"expertise"`
	Automated  bool     `json:"automated"`
}

type StartProjectRequest struct {
	KickoffTime string `json:"kickoff_time" validate:"required"`
}

type CandidateUpdateRequest struct {
	AvailabilityStatus string   `json:"availability_status" validate:"omitempty,oneof=onboarding available on_hold unavailable"`
	Profession         string   `json:"profession"`
	Seniority          string   `json:"seniority"`
	Languages          []string `json:"languages"`
	Expertise          []string `json:"expertise"`
}
