package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/cohort"
)

type cohortRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Code         string    `db:"code"`
	StartDate    time.Time `db:"start_date"`
	EndDate      time.Time `db:"end_date"`
	StudentCount int       `db:"student_count"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r cohortRow) toDomain() cohort.Cohort {
	return cohort.Cohort{
		ID:           r.ID,
		Name:         r.Name,
		Code:         r.Code,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		StudentCount: r.StudentCount,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type cohortRepository struct {
	db *sqlx.DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *sqlx.DB) *cohortRepository {
	return &cohortRepository{db: db}
}

func (repo cohortRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCohorts ...cohort.Cohort) error {
	query := `SELECT EXISTS (SELECT 1 FROM cohort WHERE code = ?)`
	args := []interface{}{code}
	if len(excludedCohorts) > 0 {
		ids := make([]string, 0, len(excludedCohorts))
		for _, c := range excludedCohorts {
			ids = append(ids, c.ID)
		}
		var err error
		query = `SELECT EXISTS (SELECT 1 FROM cohort WHERE code = ? AND id NOT IN (?))`
		query, args, err = sqlx.In(query, code, ids)
		if err != nil {
			return errors.Wrap(err, "checking cohort code uniqueness")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking cohort code uniqueness")
	}
	if exists {
		return cohort.ErrCodeExists
	}
	return nil
}

func (repo cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	c.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO cohort (id, name, code, start_date, end_date, student_count, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Code, c.StartDate, c.EndDate, c.StudentCount, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "inserting cohort")
	}
	return c, nil
}

func (repo cohortRepository) GetCohortByID(ctx context.Context, id string) (cohort.Cohort, error) {
	if _, err := uuid.Parse(id); err != nil {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	var row cohortRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM cohort WHERE id = $1`, id)
	if err != nil {
		return cohort.Cohort{}, trapNoRowsErr(err, cohort.ErrNotFound, "finding cohort by ID")
	}
	return row.toDomain(), nil
}

func (repo cohortRepository) FilterCohorts(ctx context.Context, filter *cohort.QueryFilter, ordering []core.DBOrdering) ([]cohort.Cohort, error) {
	query := `SELECT * FROM cohort`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			clauses = append(clauses, `(name ILIKE ? OR code ILIKE ?)`)
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.Status != "" {
			clauses = append(clauses, `status = ?`)
			args = append(args, filter.Status)
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "start_date DESC")

	var rows []cohortRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}
	cohorts := make([]cohort.Cohort, 0, len(rows))
	for _, r := range rows {
		cohorts = append(cohorts, r.toDomain())
	}
	return cohorts, nil
}

func (repo cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE cohort SET name = $2, code = $3, start_date = $4, end_date = $5, status = $6, updated_at = $7
		 WHERE id = $1`,
		c.ID, c.Name, c.Code, c.StartDate, c.EndDate, c.Status, c.UpdatedAt)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "updating cohort")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	return c, nil
}

func (repo cohortRepository) RecountStudents(ctx context.Context, cohortIDs ...string) error {
	if len(cohortIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(
		`UPDATE cohort
		 SET student_count = (SELECT COUNT(*) FROM student WHERE student.cohort_id = cohort.id),
		     updated_at = NOW()
		 WHERE id IN (?)`, cohortIDs)
	if err != nil {
		return errors.Wrap(err, "recounting cohort students")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "recounting cohort students")
	}
	return nil
}
