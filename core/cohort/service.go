package cohort

import (
	"context"
	"errors"
	"time"

	"github.com/joyinliving/academy/core"
)

var (
	// errors
	ErrNotFound   = errors.New("cohort not found")
	ErrCodeExists = errors.New("a cohort with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCohorts ...Cohort) error
		CreateCohort(ctx context.Context, c Cohort) (Cohort, error)
		GetCohortByID(ctx context.Context, id string) (Cohort, error)
		// FilterCohorts applies AND operation on available QueryFilter fields.
		FilterCohorts(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Cohort, error)
		UpdateCohort(ctx context.Context, c Cohort) (Cohort, error)
		// RecountStudents recomputes the cached student count of each cohort
		// from the roster table and persists it.
		RecountStudents(ctx context.Context, cohortIDs ...string) error
	}

	ServiceInterface interface {
		CheckCodeUniqueness(code string, excludedCohorts ...Cohort) error
		Create(ctx context.Context, nc NewCohort) (Cohort, error)
		GetByID(ctx context.Context, id string) (Cohort, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Cohort, error)
		Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error)
		Exists(ctx context.Context, cohortID string) (bool, error)
		Recount(ctx context.Context, cohortIDs ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CheckCodeUniqueness(code string, exclCohorts ...Cohort) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclCohorts...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewCohort) (Cohort, error) {
	now := time.Now().UTC()
	status := nc.Status
	if status == "" {
		status = StatusUpcoming
	}
	c := Cohort{
		Name:      nc.Name,
		Code:      nc.Code,
		StartDate: nc.StartDate.UTC(),
		EndDate:   nc.EndDate.UTC(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCohort(ctx, c)
}

func (svc *service) GetByID(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohortByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Cohort, error) {
	return svc.repo.FilterCohorts(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error) {
	c := Cohort{
		ID:        id,
		Name:      uc.Name,
		Code:      uc.Code,
		StartDate: uc.StartDate.UTC(),
		EndDate:   uc.EndDate.UTC(),
		Status:    uc.Status,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateCohort(ctx, c)
}

func (svc *service) Exists(ctx context.Context, cohortID string) (bool, error) {
	if _, err := svc.repo.GetCohortByID(ctx, cohortID); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *service) Recount(ctx context.Context, cohortIDs ...string) error {
	if len(cohortIDs) == 0 {
		return nil
	}
	return svc.repo.RecountStudents(ctx, cohortIDs...)
}
