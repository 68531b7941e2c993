package session

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

// Lifecycle statuses; set externally by staff, never derived.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CohortID  string    `json:"cohort_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"` // "HH:MM", 24h
	EndTime   string    `json:"end_time"`   // "HH:MM", 24h
	MeetingID string    `json:"meeting_id"`
	JoinURL   string    `json:"join_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// StartsAt combines Date and StartTime into a point in time.
func (s Session) StartsAt() time.Time {
	return combine(s.Date, s.StartTime)
}

// Duration is the scheduled length of the session.
func (s Session) Duration() time.Duration {
	return combine(s.Date, s.EndTime).Sub(s.StartsAt())
}

func combine(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// NewSession contains information needed to schedule a new Session.
type NewSession struct {
	Name      string    `json:"name" validate:"required"`
	CohortID  string    `json:"cohort_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,clocktime"`
	EndTime   string    `json:"end_time" validate:"required,clocktime"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return checkTimeOrder(ns.StartTime, ns.EndTime)
}

// checkTimeOrder rejects sessions that end before they start. "HH:MM" strings
// in 24h form compare correctly as strings.
func checkTimeOrder(start, end string) error {
	if end <= start {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}

// UpdateSession defines what information may be provided to modify an existing Session.
type UpdateSession struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time" validate:"omitempty,clocktime"`
	EndTime   string    `json:"end_time" validate:"omitempty,clocktime"`
	Status    string    `json:"status" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
}

func (us *UpdateSession) Validate(orig Session, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.Date.IsZero() {
		us.Date = orig.Date
	}
	if us.StartTime == "" {
		us.StartTime = orig.StartTime
	}
	if us.EndTime == "" {
		us.EndTime = orig.EndTime
	}
	if us.Status == "" {
		us.Status = orig.Status
	}
	if err := validate.Struct(us); err != nil {
		return err
	}
	return checkTimeOrder(us.StartTime, us.EndTime)
}

type QueryFilter struct {
	CohortID string    `query:"cohort_id"`
	Status   string    `query:"status"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CohortID == "" && qf.Status == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
