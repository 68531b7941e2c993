package recording

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Categories mirror what the archive page groups by.
const (
	CategorySession      = "session"
	CategoryWorkshop     = "workshop"
	CategorySpecialEvent = "special-event"
	CategoryTraining     = "training"
	CategoryOther        = "other"
)

// Recording is a derived artifact of a Session kept for a fixed retention
// window. Status and ExpiresAt are computed from RecordedAt on every read;
// the stored status column is only a cache (see Classify).
type Recording struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SessionName string    `json:"session_name"`
	CohortID    string    `json:"cohort_id"`
	CohortName  string    `json:"cohort_name"`
	RecordedAt  time.Time `json:"recorded_at"` // UTC
	Duration    string    `json:"duration"`    // e.g. "1h 32m"
	Size        string    `json:"size"`        // e.g. "1.2 GB"
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewRecording contains information needed to register a new Recording.
type NewRecording struct {
	Title       string    `json:"title" validate:"required"`
	SessionName string    `json:"session_name"`
	CohortID    string    `json:"cohort_id" validate:"required"`
	RecordedAt  time.Time `json:"recorded_at" validate:"required"`
	Duration    string    `json:"duration"`
	Size        string    `json:"size"`
	Category    string    `json:"category" validate:"omitempty,oneof=session workshop special-event training other"`
}

func (nr *NewRecording) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.SessionName = core.CleanString(nr.SessionName)
	return validate.Struct(nr)
}

type QueryFilter struct {
	CohortID string `query:"cohort_id"`
	Status   string `query:"status"` // matched against the recomputed classification
	Category string `query:"category"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CohortID == "" && qf.Status == "" && qf.Category == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}
