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
	"github.com/joyinliving/academy/core/recording"
)

type recordingRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	SessionName null.String `db:"session_name"`
	CohortID    string      `db:"cohort_id"`
	CohortName  null.String `db:"cohort_name"`
	RecordedAt  time.Time   `db:"recorded_at"`
	Duration    null.String `db:"duration"`
	Size        null.String `db:"size"`
	Category    string      `db:"category"`
	Status      string      `db:"status"`
	ExpiresAt   time.Time   `db:"expires_at"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r recordingRow) toDomain() recording.Recording {
	return recording.Recording{
		ID:          r.ID,
		Title:       r.Title,
		SessionName: r.SessionName.String,
		CohortID:    r.CohortID,
		CohortName:  r.CohortName.String,
		RecordedAt:  r.RecordedAt,
		Duration:    r.Duration.String,
		Size:        r.Size.String,
		Category:    r.Category,
		Status:      r.Status,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}

type recordingRepository struct {
	db *sqlx.DB
}

var _ recording.Repository = (*recordingRepository)(nil) // interface compliance check

func NewRecordingRepository(db *sqlx.DB) *recordingRepository {
	return &recordingRepository{db: db}
}

func (repo recordingRepository) CreateRecording(ctx context.Context, rec recording.Recording) (recording.Recording, error) {
	rec.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO recording (id, title, session_name, cohort_id, recorded_at, duration, size, category, status, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Title, null.NewString(rec.SessionName, rec.SessionName != ""), rec.CohortID,
		rec.RecordedAt, null.NewString(rec.Duration, rec.Duration != ""), null.NewString(rec.Size, rec.Size != ""),
		rec.Category, rec.Status, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return recording.Recording{}, errors.Wrap(err, "inserting recording")
	}
	// re-read to pick up the joined cohort name
	return repo.GetRecordingByID(ctx, rec.ID)
}

func (repo recordingRepository) GetRecordingByID(ctx context.Context, id string) (recording.Recording, error) {
	if _, err := uuid.Parse(id); err != nil {
		return recording.Recording{}, recording.ErrNotFound
	}
	var row recordingRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT r.*, c.name AS cohort_name FROM recording r
		 LEFT JOIN cohort c ON c.id = r.cohort_id
		 WHERE r.id = $1`, id)
	if err != nil {
		return recording.Recording{}, trapNoRowsErr(err, recording.ErrNotFound, "finding recording by ID")
	}
	return row.toDomain(), nil
}

func (repo recordingRepository) FilterRecordings(ctx context.Context, filter *recording.QueryFilter, ordering []core.DBOrdering) ([]recording.Recording, error) {
	query := `SELECT r.*, c.name AS cohort_name FROM recording r LEFT JOIN cohort c ON c.id = r.cohort_id`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.CohortID != "" {
			clauses = append(clauses, `r.cohort_id = ?`)
			args = append(args, filter.CohortID)
		}
		if filter.Category != "" {
			clauses = append(clauses, `r.category = ?`)
			args = append(args, filter.Category)
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "r.recorded_at DESC")

	var rows []recordingRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying recordings")
	}
	recordings := make([]recording.Recording, 0, len(rows))
	for _, r := range rows {
		recordings = append(recordings, r.toDomain())
	}
	return recordings, nil
}

func (repo recordingRepository) DeleteRecordingsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM recording WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting recordings")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting recordings")
	}
	return nil
}
