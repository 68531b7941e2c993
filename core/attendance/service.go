package attendance

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("attendance record not found")
)

type (
	Repository interface {
		// UpsertRecord inserts the record, or replaces status and check-in
		// time when one already exists for (StudentID, SessionID).
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		QueryBySession(ctx context.Context, sessionID string) ([]Record, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Record, error)
	}

	// RateSink receives refreshed attendance rates; the student service
	// implements it to keep Student.AttendanceRate current.
	RateSink interface {
		RefreshAttendanceRate(ctx context.Context, studentID string, rate int) error
	}

	ServiceInterface interface {
		Mark(ctx context.Context, m Mark) (Record, error)
		BulkMark(ctx context.Context, bm BulkMarks) ([]Record, error)
		QueryBySession(ctx context.Context, sessionID string) ([]Record, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Record, error)
		Summarize(ctx context.Context, studentID string) (Summary, error)
	}

	service struct {
		repo  Repository
		rates RateSink
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, rates RateSink) *service {
	return &service{repo: repo, rates: rates}
}

func (svc *service) Mark(ctx context.Context, m Mark) (Record, error) {
	rec := Record{
		StudentID:   m.StudentID,
		SessionID:   m.SessionID,
		Status:      m.Status,
		CheckInTime: m.CheckInTime,
		SyncedAt:    time.Now().UTC(),
	}
	rec, err := svc.repo.UpsertRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	return rec, svc.refreshRate(ctx, m.StudentID)
}

func (svc *service) BulkMark(ctx context.Context, bm BulkMarks) ([]Record, error) {
	recs := make([]Record, 0, len(bm.Marks))
	syncedAt := time.Now().UTC()
	for _, m := range bm.Marks {
		rec, err := svc.repo.UpsertRecord(ctx, Record{
			StudentID:   m.StudentID,
			SessionID:   m.SessionID,
			Status:      m.Status,
			CheckInTime: m.CheckInTime,
			SyncedAt:    syncedAt,
		})
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	for _, m := range bm.Marks {
		if err := svc.refreshRate(ctx, m.StudentID); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (svc *service) QueryBySession(ctx context.Context, sessionID string) ([]Record, error) {
	return svc.repo.QueryBySession(ctx, sessionID)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return svc.repo.QueryByStudent(ctx, studentID)
}

func (svc *service) Summarize(ctx context.Context, studentID string) (Summary, error) {
	recs, err := svc.repo.QueryByStudent(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(studentID, recs), nil
}

func (svc *service) refreshRate(ctx context.Context, studentID string) error {
	sum, err := svc.Summarize(ctx, studentID)
	if err != nil {
		return err
	}
	return svc.rates.RefreshAttendanceRate(ctx, studentID, sum.Rate)
}

func summarize(studentID string, recs []Record) Summary {
	sum := Summary{StudentID: studentID, TotalSessions: len(recs)}
	for _, rec := range recs {
		switch rec.Status {
		case StatusPresent:
			sum.Present++
		case StatusLate:
			sum.Late++
		case StatusAbsent:
			sum.Absent++
		}
	}
	sum.Rate = rate(sum.Present, sum.Late, sum.TotalSessions)
	return sum
}
