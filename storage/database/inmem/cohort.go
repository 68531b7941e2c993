package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/cohort"
)

type cohortRepository struct {
	db       *cohortTable
	students *studentTable
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *DB) *cohortRepository {
	return &cohortRepository{db: db.cohort, students: db.student}
}

func (repo *cohortRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCohorts ...cohort.Cohort) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedCohorts))
	for _, c := range excludedCohorts {
		excluded[c.ID] = true
	}

	for _, c := range repo.db.table {
		if c.Code == code && !excluded[c.ID] {
			return cohort.ErrCodeExists
		}
	}
	return nil
}

func (repo *cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *cohortRepository) GetCohortByID(ctx context.Context, id string) (cohort.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return cohort.Cohort{}, cohort.ErrNotFound
}

func (repo *cohortRepository) FilterCohorts(ctx context.Context, filter *cohort.QueryFilter, ordering []core.DBOrdering) ([]cohort.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cohorts := make([]cohort.Cohort, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if matchCohort(*c, filter) {
			cohorts = append(cohorts, *c)
		}
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].StartDate.After(cohorts[j].StartDate) })
	return cohorts, nil
}

func matchCohort(c cohort.Cohort, filter *cohort.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		kw := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(c.Name), kw) && !strings.Contains(strings.ToLower(c.Code), kw) {
			return false
		}
	}
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	return true
}

func (repo *cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	c.StudentCount = orig.StudentCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *cohortRepository) RecountStudents(ctx context.Context, cohortIDs ...string) error {
	repo.students.RLock()
	counts := make(map[string]int, len(cohortIDs))
	for _, std := range repo.students.table {
		counts[std.CohortID]++
	}
	repo.students.RUnlock()

	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range cohortIDs {
		if c, ok := repo.db.table[id]; ok {
			c.StudentCount = counts[id]
		}
	}
	return nil
}
