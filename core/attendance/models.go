package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Record is one student's attendance for one session.
// At most one record exists per (StudentID, SessionID) pair; marking again
// replaces the previous status and check-in time.
type Record struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	CheckInTime *time.Time `json:"check_in_time,omitempty"` // UTC
	SyncedAt    time.Time  `json:"synced_at"`               // UTC
}

// Mark contains information needed to record attendance.
type Mark struct {
	StudentID   string     `json:"student_id" validate:"required"`
	SessionID   string     `json:"session_id" validate:"required"`
	Status      string     `json:"status" validate:"required,oneof=present late absent"`
	CheckInTime *time.Time `json:"check_in_time"`
}

func (m *Mark) Validate(validate *validator.Validate) error {
	return validate.Struct(m)
}

// BulkMarks records a whole session roster in one call.
type BulkMarks struct {
	SessionID string `json:"session_id" validate:"required"`
	Marks     []Mark `json:"marks" validate:"required,min=1,dive"`
}

func (bm *BulkMarks) Validate(validate *validator.Validate) error {
	for i := range bm.Marks {
		if bm.Marks[i].SessionID == "" {
			bm.Marks[i].SessionID = bm.SessionID
		}
	}
	return validate.Struct(bm)
}

// Summary aggregates one student's attendance across sessions.
// Rate counts late as attended, rounded to the nearest integer percent.
type Summary struct {
	StudentID     string `json:"student_id"`
	TotalSessions int    `json:"total_sessions"`
	Present       int    `json:"present"`
	Late          int    `json:"late"`
	Absent        int    `json:"absent"`
	Rate          int    `json:"attendance_rate"` // 0-100
}

// rate computes the attended percentage; zero sessions yield a zero rate.
func rate(present, late, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(present+late)/float64(total)*100 + 0.5)
}
