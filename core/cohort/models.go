package cohort

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Cohort struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// StudentCount is a cache; it is recomputed from the roster whenever
	// cohort membership changes, never written directly.
	StudentCount int       `json:"student_count"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewCohort contains information needed to create a new Cohort.
type NewCohort struct {
	Name      string    `json:"name" validate:"required"`
	Code      string    `json:"code" validate:"required,cohortcode"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Status    string    `json:"status" validate:"omitempty,oneof=upcoming active completed"`
}

func (nc *NewCohort) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(nc.Code)
}

// UpdateCohort defines what information may be provided to modify an existing Cohort.
type UpdateCohort struct {
	Name      string    `json:"name"`
	Code      string    `json:"code" validate:"omitempty,cohortcode"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status" validate:"omitempty,oneof=upcoming active completed"`
}

func (uc *UpdateCohort) Validate(orig Cohort, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if code := core.CleanString(uc.Code); code != "" {
		uc.Code = code
	} else {
		uc.Code = orig.Code
	}
	if uc.StartDate.IsZero() {
		uc.StartDate = orig.StartDate
	}
	if uc.EndDate.IsZero() {
		uc.EndDate = orig.EndDate
	}
	if uc.Status == "" {
		uc.Status = orig.Status
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(uc.Code, orig)
}

type QueryFilter struct {
	Search string `query:"search"` // case-insensitive match on name or code
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
