package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// fakeRepo keeps records in insertion order, one per (student, session) pair.
type fakeRepo struct {
	recs []Record
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) UpsertRecord(_ context.Context, rec Record) (Record, error) {
	for i, old := range r.recs {
		if old.StudentID == rec.StudentID && old.SessionID == rec.SessionID {
			rec.ID = old.ID
			r.recs[i] = rec
			return rec, nil
		}
	}
	rec.ID = uuid.New().String()
	r.recs = append(r.recs, rec)
	return rec, nil
}

func (r *fakeRepo) QueryBySession(_ context.Context, sessionID string) ([]Record, error) {
	var out []Record
	for _, rec := range r.recs {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) QueryByStudent(_ context.Context, studentID string) ([]Record, error) {
	var out []Record
	for _, rec := range r.recs {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeRateSink struct {
	rates map[string]int
}

func (s *fakeRateSink) RefreshAttendanceRate(_ context.Context, studentID string, rate int) error {
	s.rates[studentID] = rate
	return nil
}

func setup() (*service, *fakeRepo, *fakeRateSink) {
	repo := &fakeRepo{}
	rates := &fakeRateSink{rates: make(map[string]int)}
	return NewService(repo, rates), repo, rates
}

func TestService_Mark(t *testing.T) {
	svc, repo, rates := setup()
	ctx := context.Background()
	checkIn := time.Date(2025, time.January, 15, 9, 5, 0, 0, time.UTC)

	rec, err := svc.Mark(ctx, Mark{StudentID: "s1", SessionID: "sess1", Status: StatusPresent, CheckInTime: &checkIn})
	if err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	if rec.ID == "" {
		t.Error("Mark() did not assign an ID")
	}
	if rec.Status != StatusPresent {
		t.Errorf("Status = %v, want %v", rec.Status, StatusPresent)
	}
	if rec.SyncedAt.IsZero() {
		t.Error("SyncedAt not set")
	}
	if got := rates.rates["s1"]; got != 100 {
		t.Errorf("refreshed rate = %v, want 100", got)
	}

	// marking again replaces, never duplicates
	rec2, err := svc.Mark(ctx, Mark{StudentID: "s1", SessionID: "sess1", Status: StatusAbsent})
	if err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	if rec2.ID != rec.ID {
		t.Errorf("re-mark ID = %v, want %v", rec2.ID, rec.ID)
	}
	if len(repo.recs) != 1 {
		t.Fatalf("records = %v, want 1", len(repo.recs))
	}
	if repo.recs[0].Status != StatusAbsent {
		t.Errorf("Status = %v, want %v", repo.recs[0].Status, StatusAbsent)
	}
	if got := rates.rates["s1"]; got != 0 {
		t.Errorf("refreshed rate = %v, want 0", got)
	}
}

func TestService_BulkMark(t *testing.T) {
	svc, repo, rates := setup()
	ctx := context.Background()

	bm := BulkMarks{
		SessionID: "sess1",
		Marks: []Mark{
			{StudentID: "s1", Status: StatusPresent},
			{StudentID: "s2", Status: StatusLate},
			{StudentID: "s3", Status: StatusAbsent},
		},
	}
	if err := bm.Validate(validator.New()); err != nil {
		t.Fatalf("Validate(): %v", err)
	}
	recs, err := svc.BulkMark(ctx, bm)
	if err != nil {
		t.Fatalf("BulkMark(): %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %v, want 3", len(recs))
	}
	for _, rec := range recs {
		if rec.SessionID != "sess1" {
			t.Errorf("SessionID = %v, want sess1", rec.SessionID)
		}
	}
	if len(repo.recs) != 3 {
		t.Errorf("stored records = %v, want 3", len(repo.recs))
	}
	// late counts as attended; absent does not
	for student, want := range map[string]int{"s1": 100, "s2": 100, "s3": 0} {
		if got := rates.rates[student]; got != want {
			t.Errorf("rate[%v] = %v, want %v", student, got, want)
		}
	}
}

func TestService_Summarize(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	marks := []Mark{
		{StudentID: "s1", SessionID: "sess1", Status: StatusPresent},
		{StudentID: "s1", SessionID: "sess2", Status: StatusLate},
		{StudentID: "s1", SessionID: "sess3", Status: StatusAbsent},
		{StudentID: "s2", SessionID: "sess1", Status: StatusAbsent},
	}
	for _, m := range marks {
		if _, err := svc.Mark(ctx, m); err != nil {
			t.Fatalf("Mark(): %v", err)
		}
	}

	sum, err := svc.Summarize(ctx, "s1")
	if err != nil {
		t.Fatalf("Summarize(): %v", err)
	}
	want := Summary{StudentID: "s1", TotalSessions: 3, Present: 1, Late: 1, Absent: 1, Rate: 67}
	if sum != want {
		t.Errorf("Summarize() = %+v, want %+v", sum, want)
	}

	// no records at all
	sum, err = svc.Summarize(ctx, "nobody")
	if err != nil {
		t.Fatalf("Summarize(): %v", err)
	}
	if want := (Summary{StudentID: "nobody"}); sum != want {
		t.Errorf("Summarize() = %+v, want %+v", sum, want)
	}
}

func Test_rate(t *testing.T) {
	tests := []struct {
		name                 string
		present, late, total int
		want                 int
	}{
		{name: "no sessions", want: 0},
		{name: "all present", present: 10, total: 10, want: 100},
		{name: "late counts", present: 5, late: 5, total: 10, want: 100},
		{name: "rounds up", present: 2, total: 3, want: 67},
		{name: "rounds down", present: 1, total: 3, want: 33},
		{name: "all absent", total: 4, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rate(tt.present, tt.late, tt.total); got != tt.want {
				t.Errorf("rate() = %v, want %v", got, tt.want)
			}
		})
	}
}
