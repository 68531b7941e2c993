// Package inmemdb provides map-backed repositories used by the test suites
// and the local dev server.
package inmemdb

import (
	"sync"

	"github.com/joyinliving/academy/core/attendance"
	"github.com/joyinliving/academy/core/blast"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/recording"
	"github.com/joyinliving/academy/core/session"
	"github.com/joyinliving/academy/core/student"
	"github.com/joyinliving/academy/core/user"
)

type DB struct {
	user       *userTable
	student    *studentTable
	cohort     *cohortTable
	session    *sessionTable
	attendance *attendanceTable
	recording  *recordingTable
	blast      *blastTable
}

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		cohort:     &cohortTable{table: make(map[string]*cohort.Cohort)},
		session:    &sessionTable{table: make(map[string]*session.Session)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Record)},
		recording:  &recordingTable{table: make(map[string]*recording.Recording)},
		blast:      &blastTable{table: make(map[string]*blast.Blast)},
	}
	return db, nil
}

type (
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	cohortTable struct {
		sync.RWMutex
		table map[string]*cohort.Cohort
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]*session.Session
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Record
	}

	recordingTable struct {
		sync.RWMutex
		table map[string]*recording.Recording
	}

	blastTable struct {
		sync.RWMutex
		table map[string]*blast.Blast
	}
)
