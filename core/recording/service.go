package recording

import (
	"context"
	"errors"
	"time"

	"github.com/joyinliving/academy/core"
)

var (
	// errors
	ErrNotFound = errors.New("recording not found")
)

type (
	Repository interface {
		CreateRecording(ctx context.Context, rec Recording) (Recording, error)
		GetRecordingByID(ctx context.Context, id string) (Recording, error)
		// FilterRecordings applies cohort/category filters only; status is
		// classified by the service after the read, not matched in storage.
		FilterRecordings(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Recording, error)
		DeleteRecordingsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nr NewRecording) (Recording, error)
		GetByID(ctx context.Context, id string) (Recording, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Recording, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
		now  func() time.Time // injected for tests
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo, now: time.Now}
}

func NewServiceWithClock(repo Repository, now func() time.Time) *service {
	return &service{repo: repo, now: now}
}

func (svc *service) Create(ctx context.Context, nr NewRecording) (Recording, error) {
	now := svc.now().UTC()
	category := nr.Category
	if category == "" {
		category = CategorySession
	}
	rec := Recording{
		Title:       nr.Title,
		SessionName: nr.SessionName,
		CohortID:    nr.CohortID,
		RecordedAt:  nr.RecordedAt.UTC(),
		Duration:    nr.Duration,
		Size:        nr.Size,
		Category:    category,
		CreatedAt:   now,
	}
	rec.apply(Classify(rec.RecordedAt, now))

	rec, err := svc.repo.CreateRecording(ctx, rec)
	if err != nil {
		return Recording{}, err
	}
	return rec, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Recording, error) {
	rec, err := svc.repo.GetRecordingByID(ctx, id)
	if err != nil {
		return Recording{}, err
	}
	rec.apply(Classify(rec.RecordedAt, svc.now().UTC()))
	return rec, nil
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Recording, error) {
	recs, err := svc.repo.FilterRecordings(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}

	now := svc.now().UTC()
	out := recs[:0]
	for _, rec := range recs {
		rec.apply(Classify(rec.RecordedAt, now))
		if filter != nil && filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRecordingsByID(ctx, ids...)
}

// apply refreshes the cached classification columns; the computed values are
// authoritative and overwrite whatever the store returned.
func (r *Recording) apply(c Classification) {
	r.Status = c.Status
	r.ExpiresAt = c.ExpiresAt
}
