package session

import (
	"context"
	"errors"
	"time"

	"github.com/joyinliving/academy/core"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type (
	// Meeting is what the video-conferencing provider hands back for a
	// scheduled session.
	Meeting struct {
		ID      string
		JoinURL string
	}

	// Scheduler is any provider that can schedule an online meeting.
	Scheduler interface {
		Schedule(ctx context.Context, topic string, start time.Time, duration time.Duration) (Meeting, error)
	}

	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		// FilterSessions applies AND operation on available QueryFilter fields.
		FilterSessions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Session, error)
		UpdateSession(ctx context.Context, s Session) (Session, error)
		SetSessionStatus(ctx context.Context, id, status string) (Session, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSession) (Session, error)
		GetByID(ctx context.Context, id string) (Session, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Session, error)
		Update(ctx context.Context, id string, us UpdateSession) (Session, error)
		SetStatus(ctx context.Context, id, status string) (Session, error)
	}

	service struct {
		repo      Repository
		scheduler Scheduler
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, scheduler Scheduler) *service {
	return &service{repo: repo, scheduler: scheduler}
}

func (svc *service) Create(ctx context.Context, ns NewSession) (Session, error) {
	now := time.Now().UTC()
	s := Session{
		Name:      ns.Name,
		CohortID:  ns.CohortID,
		Date:      ns.Date.UTC(),
		StartTime: ns.StartTime,
		EndTime:   ns.EndTime,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	meeting, err := svc.scheduler.Schedule(ctx, s.Name, s.StartsAt(), s.Duration())
	if err != nil {
		return Session{}, err
	}
	s.MeetingID = meeting.ID
	s.JoinURL = meeting.JoinURL

	return svc.repo.CreateSession(ctx, s)
}

func (svc *service) GetByID(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Session, error) {
	return svc.repo.FilterSessions(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSession) (Session, error) {
	orig, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s := Session{
		ID:        id,
		Name:      us.Name,
		CohortID:  orig.CohortID,
		Date:      us.Date.UTC(),
		StartTime: us.StartTime,
		EndTime:   us.EndTime,
		MeetingID: orig.MeetingID,
		JoinURL:   orig.JoinURL,
		Status:    us.Status,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSession(ctx, s)
}

func (svc *service) SetStatus(ctx context.Context, id, status string) (Session, error) {
	return svc.repo.SetSessionStatus(ctx, id, status)
}
