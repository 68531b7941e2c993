package blast

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

// Audience target types.
const (
	TargetAll    = "all"    // every active student
	TargetCohort = "cohort" // active students of one cohort
	TargetCustom = "custom" // explicit student ids, regardless of status
)

const (
	StatusDraft  = "draft"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Blast is one outbound bulk email action and its outcome.
type Blast struct {
	ID               string     `json:"id"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	TargetType       string     `json:"target_type"`
	TargetCohortID   string     `json:"target_cohort_id,omitempty"`
	TargetStudentIDs []string   `json:"target_student_ids,omitempty"`
	Status           string     `json:"status"`
	SentAt           *time.Time `json:"sent_at,omitempty"` // UTC
	RecipientCount   int        `json:"recipient_count"`
	SentCount        int        `json:"sent_count"`
	FailedCount      int        `json:"failed_count"`
	CreatedAt        time.Time  `json:"created_at"` // UTC
}

// NewBlast contains information needed to send a blast.
// Subject and body must be non-blank after trimming; the audience fields
// must match the target type. SessionID optionally supplies the
// [Link]/[Date]/[Time] placeholder values.
type NewBlast struct {
	Subject          string   `json:"subject" validate:"required"`
	Body             string   `json:"body" validate:"required"`
	TargetType       string   `json:"target_type" validate:"required,oneof=all cohort custom"`
	TargetCohortID   string   `json:"target_cohort_id"`
	TargetStudentIDs []string `json:"target_student_ids"`
	SessionID        string   `json:"session_id"`
}

func (nb *NewBlast) Validate(validate *validator.Validate) error {
	nb.Subject = core.CleanString(nb.Subject)
	nb.Body = core.CleanString(nb.Body)

	if err := validate.Struct(nb); err != nil {
		return err
	}
	switch nb.TargetType {
	case TargetCohort:
		if nb.TargetCohortID == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "target_cohort_id", Error: "this field is required"})
		}
	case TargetCustom:
		if len(nb.TargetStudentIDs) == 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "target_student_ids", Error: "this field is required"})
		}
	}
	return nil
}

type QueryFilter struct {
	Status     string `query:"status"`
	TargetType string `query:"target_type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.TargetType == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.TargetType = core.CleanString(qf.TargetType, true /* lower */)
}
