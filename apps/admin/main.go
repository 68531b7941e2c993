package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/student"
	"github.com/joyinliving/academy/storage/database"
	"github.com/joyinliving/academy/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	cohortSvc := cohort.NewService(sqlxrepos.NewCohortRepository(dbx))

	// start CLI
	cli := commandLine{
		db:         db,
		usrRepo:    sqlxrepos.NewUserRepository(dbx),
		cohortSvc:  cohortSvc,
		studentSvc: student.NewService(sqlxrepos.NewStudentRepository(dbx), cohortSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
