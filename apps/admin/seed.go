package main

import (
	"context"
	"time"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/student"
)

type seedStudent struct {
	name   string
	email  string
	phone  string
	status string
}

var (
	seedCohort = cohort.NewCohort{
		Name:      "SCTP3 Batch 046",
		Code:      "SCTP3-046",
		StartDate: time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC),
		Status:    cohort.StatusActive,
	}

	seedStudents = []seedStudent{
		{"John Tan", "john.tan@example.com", "+65 9123 4567", student.StatusActive},
		{"Sarah Lim", "sarah.lim@example.com", "+65 9234 5678", student.StatusActive},
		{"Michael Wong", "michael.wong@example.com", "+65 9345 6789", student.StatusActive},
		{"Emily Chen", "emily.chen@example.com", "", student.StatusInactive},
	}
)

// seed loads the sample cohort and roster. Safe to re-run; existing rows
// are left untouched.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	c, err := cli.seedCohort(ctx)
	if err != nil {
		return err
	}

	for _, ss := range seedStudents {
		if err := cli.seedStudent(ctx, c.ID, ss); err != nil {
			return err
		}
	}
	return nil
}

func (cli *commandLine) seedCohort(ctx context.Context) (cohort.Cohort, error) {
	existing, err := cli.cohortSvc.Filter(ctx, &cohort.QueryFilter{Search: seedCohort.Code}, nil)
	if err != nil {
		return cohort.Cohort{}, err
	}
	for _, c := range existing {
		if c.Code == seedCohort.Code {
			return c, nil
		}
	}
	return cli.cohortSvc.Create(ctx, seedCohort)
}

func (cli *commandLine) seedStudent(ctx context.Context, cohortID string, ss seedStudent) error {
	if err := cli.studentSvc.CheckEmailUniqueness(ss.email); err != nil {
		if _, ok := err.(*core.ValidationError); ok {
			return nil // already seeded
		}
		return err
	}

	std, err := cli.studentSvc.Create(ctx, student.NewStudent{
		Name:       ss.name,
		Email:      ss.email,
		Phone:      ss.phone,
		CohortID:   cohortID,
		EnrolledAt: seedCohort.StartDate,
	})
	if err != nil {
		return err
	}
	if ss.status != student.StatusActive {
		_, err = cli.studentSvc.SetStatus(ctx, std.ID, ss.status)
	}
	return err
}
