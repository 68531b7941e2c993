package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/student"
	"github.com/joyinliving/academy/core/user"
	inmemdb "github.com/joyinliving/academy/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	cohortSvc := cohort.NewService(inmemdb.NewCohortRepository(db))

	return &commandLine{
		usrRepo:    usrRepo,
		cohortSvc:  cohortSvc,
		studentSvc: student.NewService(inmemdb.NewStudentRepository(db), cohortSvc),
	}
}

func createUser(t *testing.T, name, uname, email, pwd string) user.User {
	t.Helper()

	usr := user.User{Name: name, Username: uname, Email: email, IsActive: true}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addStaff(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cretPwd"), nil }

	if err := cli.run([]string{"admin", "addstaff", "-name", "Jane Doe", "-username", "jane", "-email", "jane@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}

	usr, err := usrRepo.GetUserByUsernameOrEmail(context.Background(), "jane")
	if err != nil {
		t.Fatalf("GetUserByUsernameOrEmail() failed, %v", err)
	}
	if !usr.IsActive {
		t.Error("expected new staff account to be active")
	}
	if err = usr.CheckPassword("s3cretPwd"); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}

	// re-running updates the existing account instead of duplicating it
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("newPwd123"), nil }
	if err := cli.run([]string{"admin", "addstaff", "-name", "Jane Doe", "-username", "jane", "-email", "jane@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}
	refreshed, err := usrRepo.GetUserByUsernameOrEmail(context.Background(), "jane")
	if err != nil {
		t.Fatalf("GetUserByUsernameOrEmail() failed, %v", err)
	}
	if refreshed.ID != usr.ID {
		t.Errorf("expected existing account to be updated; got new ID %s", refreshed.ID)
	}
	if err = refreshed.CheckPassword("newPwd123"); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}

	cohorts, err := cli.cohortSvc.Filter(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Filter() failed, %v", err)
	}
	if len(cohorts) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(cohorts))
	}
	if cohorts[0].StudentCount != 4 {
		t.Errorf("expected student count 4, got %d", cohorts[0].StudentCount)
	}

	students, err := cli.studentSvc.Filter(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Filter() failed, %v", err)
	}
	if len(students) != 4 {
		t.Fatalf("expected 4 students, got %d", len(students))
	}

	// seeding again is a no-op
	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}
	students, err = cli.studentSvc.Filter(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Filter() failed, %v", err)
	}
	if len(students) != 4 {
		t.Errorf("expected 4 students after re-seed, got %d", len(students))
	}
}
