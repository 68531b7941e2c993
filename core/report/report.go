package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/attendance"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/session"
	"github.com/joyinliving/academy/core/student"
)

// DashboardStats is the at-a-glance summary the dashboard landing page shows.
type DashboardStats struct {
	TotalStudents         int `json:"total_students"`
	ActiveStudents        int `json:"active_students"`
	TotalCohorts          int `json:"total_cohorts"`
	ActiveCohorts         int `json:"active_cohorts"`
	UpcomingSessions      int `json:"upcoming_sessions"`
	AverageAttendanceRate int `json:"average_attendance_rate"` // mean of active students' rates
}

type (
	ServiceInterface interface {
		Dashboard(ctx context.Context) (DashboardStats, error)
		AttendanceCSV(ctx context.Context) ([]byte, error)
	}

	service struct {
		students    student.ServiceInterface
		cohorts     cohort.ServiceInterface
		sessions    session.ServiceInterface
		attendances attendance.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	students student.ServiceInterface,
	cohorts cohort.ServiceInterface,
	sessions session.ServiceInterface,
	attendances attendance.ServiceInterface,
) *service {
	return &service{
		students:    students,
		cohorts:     cohorts,
		sessions:    sessions,
		attendances: attendances,
	}
}

func (svc *service) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	students, err := svc.students.Filter(ctx, nil, nil)
	if err != nil {
		return stats, errors.Wrap(err, "querying students")
	}
	cohorts, err := svc.cohorts.Filter(ctx, nil, nil)
	if err != nil {
		return stats, errors.Wrap(err, "querying cohorts")
	}
	sessions, err := svc.sessions.Filter(ctx, &session.QueryFilter{Status: session.StatusScheduled}, nil)
	if err != nil {
		return stats, errors.Wrap(err, "querying sessions")
	}

	stats.TotalStudents = len(students)
	stats.TotalCohorts = len(cohorts)

	var rateSum int
	for _, std := range students {
		if std.IsActive() {
			stats.ActiveStudents++
			rateSum += std.AttendanceRate
		}
	}
	if stats.ActiveStudents > 0 {
		stats.AverageAttendanceRate = int(float64(rateSum)/float64(stats.ActiveStudents) + 0.5)
	}

	for _, c := range cohorts {
		if c.Status == cohort.StatusActive {
			stats.ActiveCohorts++
		}
	}

	now := time.Now().UTC()
	for _, s := range sessions {
		if s.StartsAt().After(now) {
			stats.UpcomingSessions++
		}
	}
	return stats, nil
}

var csvHeader = []string{"name", "email", "cohort", "sessions", "present", "late", "absent", "rate"}

// AttendanceCSV exports one row per student with their attendance summary.
func (svc *service) AttendanceCSV(ctx context.Context) ([]byte, error) {
	students, err := svc.students.Filter(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	cohorts, err := svc.cohorts.Filter(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}
	codes := make(map[string]string, len(cohorts))
	for _, c := range cohorts {
		codes[c.ID] = c.Code
	}

	var buff bytes.Buffer
	w := csv.NewWriter(&buff)
	if err = w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "writing CSV header")
	}

	for _, std := range students {
		sum, err := svc.attendances.Summarize(ctx, std.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "summarizing attendance for %s", std.ID)
		}
		row := []string{
			std.Name,
			std.Email,
			codes[std.CohortID],
			strconv.Itoa(sum.TotalSessions),
			strconv.Itoa(sum.Present),
			strconv.Itoa(sum.Late),
			strconv.Itoa(sum.Absent),
			strconv.Itoa(sum.Rate),
		}
		if err = w.Write(row); err != nil {
			return nil, errors.Wrap(err, "writing CSV row")
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing CSV")
	}
	return buff.Bytes(), nil
}
