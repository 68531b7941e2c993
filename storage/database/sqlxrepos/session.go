package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/session"
)

type sessionRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	CohortID  string      `db:"cohort_id"`
	Date      time.Time   `db:"date"`
	StartTime string      `db:"start_time"`
	EndTime   string      `db:"end_time"`
	MeetingID null.String `db:"meeting_id"`
	JoinURL   null.String `db:"join_url"`
	Status    string      `db:"status"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r sessionRow) toDomain() session.Session {
	return session.Session{
		ID:        r.ID,
		Name:      r.Name,
		CohortID:  r.CohortID,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		MeetingID: r.MeetingID.String,
		JoinURL:   r.JoinURL.String,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	s.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO session (id, name, cohort_id, date, start_time, end_time, meeting_id, join_url, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Name, s.CohortID, s.Date, s.StartTime, s.EndTime,
		null.NewString(s.MeetingID, s.MeetingID != ""), null.NewString(s.JoinURL, s.JoinURL != ""),
		s.Status, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return s, nil
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return session.Session{}, session.ErrNotFound
	}
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM session WHERE id = $1`, id)
	if err != nil {
		return session.Session{}, trapNoRowsErr(err, session.ErrNotFound, "finding session by ID")
	}
	return row.toDomain(), nil
}

func (repo sessionRepository) FilterSessions(ctx context.Context, filter *session.QueryFilter, ordering []core.DBOrdering) ([]session.Session, error) {
	query := `SELECT * FROM session`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.CohortID != "" {
			clauses = append(clauses, `cohort_id = ?`)
			args = append(args, filter.CohortID)
		}
		if filter.Status != "" {
			clauses = append(clauses, `status = ?`)
			args = append(args, filter.Status)
		}
		if !filter.DateFrom.IsZero() {
			clauses = append(clauses, `date >= ?`)
			args = append(args, filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			clauses = append(clauses, `date <= ?`)
			args = append(args, filter.DateTo.UTC())
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "date ASC, start_time ASC")

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]session.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toDomain())
	}
	return sessions, nil
}

func (repo sessionRepository) UpdateSession(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE session SET name = $2, date = $3, start_time = $4, end_time = $5, status = $6, updated_at = $7
		 WHERE id = $1`,
		s.ID, s.Name, s.Date, s.StartTime, s.EndTime, s.Status, s.UpdatedAt)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (repo sessionRepository) SetSessionStatus(ctx context.Context, id, status string) (session.Session, error) {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE session SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "setting session status")
	}
	return repo.GetSessionByID(ctx, id)
}
