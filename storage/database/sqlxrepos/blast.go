package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/blast"
)

type blastRow struct {
	ID               string         `db:"id"`
	Subject          string         `db:"subject"`
	Body             string         `db:"body"`
	TargetType       string         `db:"target_type"`
	TargetCohortID   null.String    `db:"target_cohort_id"`
	TargetStudentIDs pq.StringArray `db:"target_student_ids"`
	Status           string         `db:"status"`
	SentAt           null.Time      `db:"sent_at"`
	RecipientCount   int            `db:"recipient_count"`
	SentCount        int            `db:"sent_count"`
	FailedCount      int            `db:"failed_count"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r blastRow) toDomain() blast.Blast {
	return blast.Blast{
		ID:               r.ID,
		Subject:          r.Subject,
		Body:             r.Body,
		TargetType:       r.TargetType,
		TargetCohortID:   r.TargetCohortID.String,
		TargetStudentIDs: r.TargetStudentIDs,
		Status:           r.Status,
		SentAt:           r.SentAt.Ptr(),
		RecipientCount:   r.RecipientCount,
		SentCount:        r.SentCount,
		FailedCount:      r.FailedCount,
		CreatedAt:        r.CreatedAt,
	}
}

type blastRepository struct {
	db *sqlx.DB
}

var _ blast.Repository = (*blastRepository)(nil) // interface compliance check

func NewBlastRepository(db *sqlx.DB) *blastRepository {
	return &blastRepository{db: db}
}

func (repo blastRepository) CreateBlast(ctx context.Context, b blast.Blast) (blast.Blast, error) {
	b.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO blast (id, subject, body, target_type, target_cohort_id, target_student_ids,
		                    status, sent_at, recipient_count, sent_count, failed_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Subject, b.Body, b.TargetType,
		null.NewString(b.TargetCohortID, b.TargetCohortID != ""), pq.StringArray(b.TargetStudentIDs),
		b.Status, null.TimeFromPtr(b.SentAt), b.RecipientCount, b.SentCount, b.FailedCount, b.CreatedAt)
	if err != nil {
		return blast.Blast{}, errors.Wrap(err, "inserting blast")
	}
	return b, nil
}

func (repo blastRepository) GetBlastByID(ctx context.Context, id string) (blast.Blast, error) {
	if _, err := uuid.Parse(id); err != nil {
		return blast.Blast{}, blast.ErrNotFound
	}
	var row blastRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM blast WHERE id = $1`, id)
	if err != nil {
		return blast.Blast{}, trapNoRowsErr(err, blast.ErrNotFound, "finding blast by ID")
	}
	return row.toDomain(), nil
}

func (repo blastRepository) FilterBlasts(ctx context.Context, filter *blast.QueryFilter, ordering []core.DBOrdering) ([]blast.Blast, error) {
	query := `SELECT * FROM blast`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.Status != "" {
			clauses = append(clauses, `status = ?`)
			args = append(args, filter.Status)
		}
		if filter.TargetType != "" {
			clauses = append(clauses, `target_type = ?`)
			args = append(args, filter.TargetType)
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []blastRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying blasts")
	}
	blasts := make([]blast.Blast, 0, len(rows))
	for _, r := range rows {
		blasts = append(blasts, r.toDomain())
	}
	return blasts, nil
}
