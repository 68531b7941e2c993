package recording

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/joyinliving/academy/core"
)

type fakeRepo struct {
	recs []Recording
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) CreateRecording(_ context.Context, rec Recording) (Recording, error) {
	rec.ID = strconv.Itoa(len(r.recs) + 1)
	r.recs = append(r.recs, rec)
	return rec, nil
}

func (r *fakeRepo) GetRecordingByID(_ context.Context, id string) (Recording, error) {
	for _, rec := range r.recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Recording{}, ErrNotFound
}

func (r *fakeRepo) FilterRecordings(_ context.Context, filter *QueryFilter, _ []core.DBOrdering) ([]Recording, error) {
	var out []Recording
	for _, rec := range r.recs {
		if filter != nil {
			if filter.CohortID != "" && rec.CohortID != filter.CohortID {
				continue
			}
			if filter.Category != "" && rec.Category != filter.Category {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRepo) DeleteRecordingsByID(_ context.Context, ids ...string) error {
	kept := r.recs[:0]
	for _, rec := range r.recs {
		var del bool
		for _, id := range ids {
			if rec.ID == id {
				del = true
				break
			}
		}
		if !del {
			kept = append(kept, rec)
		}
	}
	r.recs = kept
	return nil
}

func TestService_statusIsRecomputedOnRead(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}

	now := date(2025, time.February, 1)
	svc := NewServiceWithClock(repo, func() time.Time { return now })

	rec, err := svc.Create(ctx, NewRecording{
		Title:      "Week 1: Kickoff",
		CohortID:   "c1",
		RecordedAt: date(2025, time.January, 20),
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if rec.Status != StatusActive {
		t.Errorf("Status = %v, want %v", rec.Status, StatusActive)
	}
	if rec.Category != CategorySession {
		t.Errorf("Category = %v, want %v", rec.Category, CategorySession)
	}

	// nothing in storage changes; only the clock moves
	now = date(2025, time.April, 1)

	rec, err = svc.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if rec.Status != StatusArchived {
		t.Errorf("Status = %v, want %v", rec.Status, StatusArchived)
	}
}

func TestService_filterByClassifiedStatus(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}

	now := date(2025, time.March, 1)
	svc := NewServiceWithClock(repo, func() time.Time { return now })

	fresh, err := svc.Create(ctx, NewRecording{Title: "Fresh", CohortID: "c1", RecordedAt: date(2025, time.February, 20)})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	old, err := svc.Create(ctx, NewRecording{Title: "Old", CohortID: "c1", RecordedAt: date(2024, time.November, 1)})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tests := []struct {
		name    string
		filter  *QueryFilter
		wantIDs []string
	}{
		{name: "all", wantIDs: []string{fresh.ID, old.ID}},
		{name: "active", filter: &QueryFilter{Status: StatusActive}, wantIDs: []string{fresh.ID}},
		{name: "archived", filter: &QueryFilter{Status: StatusArchived}, wantIDs: []string{old.ID}},
		{name: "other cohort", filter: &QueryFilter{CohortID: "c2"}, wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := svc.Filter(ctx, tt.filter, nil)
			if err != nil {
				t.Fatalf("Filter(): %v", err)
			}
			if len(recs) != len(tt.wantIDs) {
				t.Fatalf("Filter() returned %v recordings, want %v", len(recs), len(tt.wantIDs))
			}
			for i, rec := range recs {
				if rec.ID != tt.wantIDs[i] {
					t.Errorf("Filter()[%d].ID = %v, want %v", i, rec.ID, tt.wantIDs[i])
				}
			}
		})
	}
}
