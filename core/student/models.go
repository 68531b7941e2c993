package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

// Lifecycle statuses. Students are never hard-deleted by roster flows;
// they only move between these states.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"
	StatusWithdrawn = "withdrawn"
)

type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	CohortID       string    `json:"cohort_id"`
	EnrolledAt     time.Time `json:"enrolled_at"` // UTC
	Status         string    `json:"status"`
	AttendanceRate int       `json:"attendance_rate"` // 0-100, refreshed from attendance summaries
	CreatedAt      time.Time `json:"created_at"`      // UTC
	UpdatedAt      time.Time `json:"updated_at"`      // UTC
}

func (s Student) IsActive() bool { return s.Status == StatusActive }

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name       string    `json:"name" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone"`
	CohortID   string    `json:"cohort_id" validate:"required"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name     string  `json:"name"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	CohortID string  `json:"cohort_id"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive graduated withdrawn"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	if us.CohortID == "" {
		us.CohortID = orig.CohortID
	}
	if us.Status == "" {
		us.Status = orig.Status
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(us.Email, orig)
}

type QueryFilter struct {
	Search       string    `query:"search"` // case-insensitive match on name or email
	CohortID     string    `query:"cohort_id"`
	Status       string    `query:"status"`
	EnrolledFrom time.Time `query:"enrolled_from"`
	EnrolledTo   time.Time `query:"enrolled_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CohortID == "" && qf.Status == "" &&
		qf.EnrolledFrom.IsZero() && qf.EnrolledTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
