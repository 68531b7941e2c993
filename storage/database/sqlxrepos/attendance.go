package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/joyinliving/academy/core/attendance"
)

type attendanceRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	SessionID   string    `db:"session_id"`
	Status      string    `db:"status"`
	CheckInTime null.Time `db:"check_in_time"`
	SyncedAt    time.Time `db:"synced_at"`
}

func (r attendanceRow) toDomain() attendance.Record {
	return attendance.Record{
		ID:          r.ID,
		StudentID:   r.StudentID,
		SessionID:   r.SessionID,
		Status:      r.Status,
		CheckInTime: r.CheckInTime.Ptr(),
		SyncedAt:    r.SyncedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row,
		`INSERT INTO attendance_record (id, student_id, session_id, status, check_in_time, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (student_id, session_id) DO UPDATE
		 SET status = EXCLUDED.status, check_in_time = EXCLUDED.check_in_time, synced_at = EXCLUDED.synced_at
		 RETURNING *`,
		rec.ID, rec.StudentID, rec.SessionID, rec.Status, null.TimeFromPtr(rec.CheckInTime), rec.SyncedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return row.toDomain(), nil
}

func (repo attendanceRepository) QueryBySession(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	return repo.query(ctx, `SELECT * FROM attendance_record WHERE session_id = $1`, sessionID)
}

func (repo attendanceRepository) QueryByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	return repo.query(ctx, `SELECT * FROM attendance_record WHERE student_id = $1`, studentID)
}

func (repo attendanceRepository) query(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toDomain())
	}
	return records, nil
}
