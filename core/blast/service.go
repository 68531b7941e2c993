package blast

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/session"
	"github.com/joyinliving/academy/core/student"
)

var (
	// errors
	ErrNotFound     = errors.New("blast not found")
	ErrNoRecipients = errors.New("no recipients resolved for the selected audience")
)

type (
	Repository interface {
		CreateBlast(ctx context.Context, b Blast) (Blast, error)
		GetBlastByID(ctx context.Context, id string) (Blast, error)
		FilterBlasts(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Blast, error)
	}

	ServiceInterface interface {
		// Preview resolves the audience and personalizes without sending.
		Preview(ctx context.Context, nb NewBlast) ([]Recipient, error)
		// Send resolves, dispatches one message per recipient and persists
		// the blast with its success/failure counts.
		Send(ctx context.Context, nb NewBlast) (Blast, error)
		GetByID(ctx context.Context, id string) (Blast, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Blast, error)
	}

	service struct {
		repo     Repository
		students student.ServiceInterface
		cohorts  cohort.ServiceInterface
		sessions session.ServiceInterface
		mail     core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	students student.ServiceInterface,
	cohorts cohort.ServiceInterface,
	sessions session.ServiceInterface,
	mailSvc core.EmailService,
) *service {
	return &service{
		repo:     repo,
		students: students,
		cohorts:  cohorts,
		sessions: sessions,
		mail:     mailSvc,
	}
}

// resolveAudience fetches the students selected by the target fields.
// All and Cohort targets take active students only; Custom takes the listed
// students regardless of status (callers filter if they want to).
func (svc *service) resolveAudience(ctx context.Context, nb NewBlast) ([]student.Student, error) {
	switch nb.TargetType {
	case TargetCohort:
		return svc.students.Filter(ctx, &student.QueryFilter{CohortID: nb.TargetCohortID, Status: student.StatusActive}, nil)
	case TargetCustom:
		return svc.students.GetByIDs(ctx, nb.TargetStudentIDs)
	default: // TargetAll
		return svc.students.Filter(ctx, &student.QueryFilter{Status: student.StatusActive}, nil)
	}
}

func (svc *service) cohortNames(ctx context.Context) (map[string]string, error) {
	cohorts, err := svc.cohorts.Filter(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cohorts))
	for _, c := range cohorts {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (svc *service) sessionContext(ctx context.Context, sessionID string) (*SessionContext, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := svc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewSessionContext(sess.JoinURL, sess.Date, sess.StartTime), nil
}

func (svc *service) resolve(ctx context.Context, nb NewBlast) ([]Recipient, error) {
	students, err := svc.resolveAudience(ctx, nb)
	if err != nil {
		return nil, err
	}
	names, err := svc.cohortNames(ctx)
	if err != nil {
		return nil, err
	}
	sctx, err := svc.sessionContext(ctx, nb.SessionID)
	if err != nil {
		return nil, err
	}
	return BuildRecipients(students, names, nb.Subject, nb.Body, sctx), nil
}

func (svc *service) Preview(ctx context.Context, nb NewBlast) ([]Recipient, error) {
	return svc.resolve(ctx, nb)
}

func (svc *service) Send(ctx context.Context, nb NewBlast) (Blast, error) {
	recipients, err := svc.resolve(ctx, nb)
	if err != nil {
		return Blast{}, err
	}
	if len(recipients) == 0 {
		return Blast{}, core.NewValidationError(ErrNoRecipients)
	}

	messages := make([]*core.EmailMessage, 0, len(recipients))
	for _, r := range recipients {
		messages = append(messages, &core.EmailMessage{
			To:          []mail.Address{{Name: r.Name, Address: r.Email}},
			Subject:     r.Subject,
			TextContent: r.Body,
			HTMLContent: core.PlainToHTML(r.Body),
		})
	}

	// one failed send never aborts the rest; only counts come back
	report := svc.mail.SendBatch(messages...)

	now := time.Now().UTC()
	status := StatusSent
	if report.Sent == 0 {
		status = StatusFailed
	}
	b := Blast{
		Subject:          nb.Subject,
		Body:             nb.Body,
		TargetType:       nb.TargetType,
		TargetCohortID:   nb.TargetCohortID,
		TargetStudentIDs: nb.TargetStudentIDs,
		Status:           status,
		SentAt:           &now,
		RecipientCount:   len(recipients),
		SentCount:        report.Sent,
		FailedCount:      report.Failed,
		CreatedAt:        now,
	}
	return svc.repo.CreateBlast(ctx, b)
}

func (svc *service) GetByID(ctx context.Context, id string) (Blast, error) {
	return svc.repo.GetBlastByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Blast, error) {
	return svc.repo.FilterBlasts(ctx, filter, ordering)
}
