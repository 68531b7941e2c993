package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) FilterSessions(ctx context.Context, filter *session.QueryFilter, ordering []core.DBOrdering) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]session.Session, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if matchSession(*s, filter) {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartsAt().Before(sessions[j].StartsAt()) })
	return sessions, nil
}

func matchSession(s session.Session, filter *session.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.CohortID != "" && s.CohortID != filter.CohortID {
		return false
	}
	if filter.Status != "" && s.Status != filter.Status {
		return false
	}
	if !filter.DateFrom.IsZero() && s.Date.Before(filter.DateFrom) {
		return false
	}
	if !filter.DateTo.IsZero() && s.Date.After(filter.DateTo) {
		return false
	}
	return true
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	s.MeetingID = orig.MeetingID
	s.JoinURL = orig.JoinURL
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *sessionRepository) SetSessionStatus(ctx context.Context, id, status string) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	s.Status = status
	return *s, nil
}
