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
	"github.com/joyinliving/academy/core/student"
)

type studentRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	Email          string      `db:"email"`
	Phone          null.String `db:"phone"`
	CohortID       string      `db:"cohort_id"`
	EnrolledAt     time.Time   `db:"enrolled_at"`
	Status         string      `db:"status"`
	AttendanceRate int         `db:"attendance_rate"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r studentRow) toDomain() student.Student {
	return student.Student{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone.String,
		CohortID:       r.CohortID,
		EnrolledAt:     r.EnrolledAt,
		Status:         r.Status,
		AttendanceRate: r.AttendanceRate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func studentsToDomain(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toDomain())
	}
	return students
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE email = ?)`
	args := []interface{}{email}
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, std := range excludedStudents {
			ids = append(ids, std.ID)
		}
		var err error
		query = `SELECT EXISTS (SELECT 1 FROM student WHERE email = ? AND id NOT IN (?))`
		query, args, err = sqlx.In(query, email, ids)
		if err != nil {
			return errors.Wrap(err, "checking student email uniqueness")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking student email uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student (id, name, email, phone, cohort_id, enrolled_at, status, attendance_rate, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		std.ID, std.Name, std.Email, null.NewString(std.Phone, std.Phone != ""), std.CohortID,
		std.EnrolledAt, std.Status, std.AttendanceRate, std.CreatedAt, std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.toDomain(), nil
}

func (repo studentRepository) GetStudentsByID(ctx context.Context, ids []string) ([]student.Student, error) {
	if len(ids) == 0 {
		return []student.Student{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying students by ID")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students by ID")
	}
	return studentsToDomain(rows), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	query := `SELECT * FROM student`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			clauses = append(clauses, `(name ILIKE ? OR email ILIKE ?)`)
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.CohortID != "" {
			clauses = append(clauses, `cohort_id = ?`)
			args = append(args, filter.CohortID)
		}
		if filter.Status != "" {
			clauses = append(clauses, `status = ?`)
			args = append(args, filter.Status)
		}
		if !filter.EnrolledFrom.IsZero() {
			clauses = append(clauses, `enrolled_at >= ?`)
			args = append(args, filter.EnrolledFrom.UTC())
		}
		if !filter.EnrolledTo.IsZero() {
			clauses = append(clauses, `enrolled_at <= ?`)
			args = append(args, filter.EnrolledTo.UTC())
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "name ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return studentsToDomain(rows), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student SET name = $2, email = $3, phone = $4, cohort_id = $5, status = $6, updated_at = $7
		 WHERE id = $1`,
		std.ID, std.Name, std.Email, null.NewString(std.Phone, std.Phone != ""), std.CohortID,
		std.Status, std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) SetStudentStatus(ctx context.Context, id, status string) (student.Student, error) {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE student SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "setting student status")
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo studentRepository) SetAttendanceRate(ctx context.Context, id string, rate int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE student SET attendance_rate = $2, updated_at = NOW() WHERE id = $1`, id, rate)
	return errors.Wrap(err, "setting attendance rate")
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

// orderBy renders an ORDER BY clause, falling back to a stable default.
func orderBy(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		return ` ORDER BY ` + dflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return ` ORDER BY ` + strings.Join(orderList, ", ")
}
