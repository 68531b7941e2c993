package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedStudents))
	for _, std := range excludedStudents {
		excluded[std.ID] = true
	}

	for _, std := range repo.db.table {
		if std.Email == email && !excluded[std.ID] {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentsByID(ctx context.Context, ids []string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if std, ok := repo.db.table[id]; ok {
			students = append(students, *std)
		}
	}
	return students, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		if matchStudent(*std, filter) {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func matchStudent(std student.Student, filter *student.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		kw := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(std.Name), kw) && !strings.Contains(strings.ToLower(std.Email), kw) {
			return false
		}
	}
	if filter.CohortID != "" && std.CohortID != filter.CohortID {
		return false
	}
	if filter.Status != "" && std.Status != filter.Status {
		return false
	}
	if !filter.EnrolledFrom.IsZero() && std.EnrolledAt.Before(filter.EnrolledFrom) {
		return false
	}
	if !filter.EnrolledTo.IsZero() && std.EnrolledAt.After(filter.EnrolledTo) {
		return false
	}
	return true
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	// derived/immutable fields stay as stored
	std.EnrolledAt = orig.EnrolledAt
	std.AttendanceRate = orig.AttendanceRate
	std.CreatedAt = orig.CreatedAt
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) SetStudentStatus(ctx context.Context, id, status string) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.Status = status
	return *std, nil
}

func (repo *studentRepository) SetAttendanceRate(ctx context.Context, id string, rate int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	std.AttendanceRate = rate
	return nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
