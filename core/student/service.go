package student

import (
	"context"
	"errors"
	"time"

	"github.com/joyinliving/academy/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrEmailExists   = errors.New("a student with this email already exists")
	ErrUnknownCohort = errors.New("cohort does not exist")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// GetStudentsByID returns the students whose id is in `ids`, in the
		// order resolved by the store; unknown ids are skipped silently.
		GetStudentsByID(ctx context.Context, ids []string) ([]Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.Email.
		FilterStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		SetStudentStatus(ctx context.Context, id, status string) (Student, error)
		SetAttendanceRate(ctx context.Context, id string, rate int) error
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	// CohortDirectory is the slice of the cohort service the roster needs:
	// existence checks on enroll and the cached student-count recompute
	// whenever cohort membership changes.
	CohortDirectory interface {
		Exists(ctx context.Context, cohortID string) (bool, error)
		Recount(ctx context.Context, cohortIDs ...string) error
	}

	ServiceInterface interface {
		CheckEmailUniqueness(email string, excludedStudents ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByIDs(ctx context.Context, ids []string) ([]Student, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		SetStatus(ctx context.Context, id, status string) (Student, error)
		RefreshAttendanceRate(ctx context.Context, id string, rate int) error
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		cohorts CohortDirectory
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, cohorts CohortDirectory) *service {
	return &service{repo: repo, cohorts: cohorts}
}

func (svc *service) CheckEmailUniqueness(email string, exclStudents ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclStudents...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) checkCohort(ctx context.Context, cohortID string) error {
	ok, err := svc.cohorts.Exists(ctx, cohortID)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(ErrUnknownCohort, core.FieldError{Field: "cohort_id", Error: ErrUnknownCohort.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkCohort(ctx, ns.CohortID); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	enrolledAt := ns.EnrolledAt
	if enrolledAt.IsZero() {
		enrolledAt = now
	}
	std := Student{
		Name:       ns.Name,
		Email:      ns.Email,
		Phone:      ns.Phone,
		CohortID:   ns.CohortID,
		EnrolledAt: enrolledAt.UTC(),
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	return std, svc.cohorts.Recount(ctx, std.CohortID)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) GetByIDs(ctx context.Context, ids []string) ([]Student, error) {
	return svc.repo.GetStudentsByID(ctx, ids)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	std := Student{
		ID:             id,
		Name:           us.Name,
		Email:          us.Email,
		Phone:          orig.Phone,
		CohortID:       us.CohortID,
		EnrolledAt:     orig.EnrolledAt,
		Status:         us.Status,
		AttendanceRate: orig.AttendanceRate,
		CreatedAt:      orig.CreatedAt,
		UpdatedAt:      time.Now().UTC(),
	}
	if us.Phone != nil {
		std.Phone = core.CleanString(*us.Phone)
	}

	cohortChanged := std.CohortID != orig.CohortID
	if cohortChanged {
		if err = svc.checkCohort(ctx, std.CohortID); err != nil {
			return Student{}, err
		}
	}

	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	if cohortChanged {
		if err = svc.cohorts.Recount(ctx, orig.CohortID, std.CohortID); err != nil {
			return Student{}, err
		}
	}
	return std, nil
}

func (svc *service) SetStatus(ctx context.Context, id, status string) (Student, error) {
	std, err := svc.repo.SetStudentStatus(ctx, id, status)
	if err != nil {
		return Student{}, err
	}
	// active-only counts are not cached; only membership changes trigger recounts
	return std, nil
}

func (svc *service) RefreshAttendanceRate(ctx context.Context, id string, rate int) error {
	return svc.repo.SetAttendanceRate(ctx, id, rate)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	cohortIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if std, err := svc.repo.GetStudentByID(ctx, id); err == nil {
			cohortIDs = append(cohortIDs, std.CohortID)
		}
	}
	if err := svc.repo.DeleteStudentsByID(ctx, ids...); err != nil {
		return err
	}
	return svc.cohorts.Recount(ctx, cohortIDs...)
}
