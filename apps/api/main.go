package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/joyinliving/academy/apps/api/echo"
	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/attendance"
	"github.com/joyinliving/academy/core/blast"
	"github.com/joyinliving/academy/core/cohort"
	"github.com/joyinliving/academy/core/recording"
	"github.com/joyinliving/academy/core/report"
	"github.com/joyinliving/academy/core/session"
	"github.com/joyinliving/academy/core/student"
	"github.com/joyinliving/academy/core/user"
	emailsvc "github.com/joyinliving/academy/services/email"
	logsvc "github.com/joyinliving/academy/services/logger"
	zoomsvc "github.com/joyinliving/academy/services/zoom"
	"github.com/joyinliving/academy/storage/database"
	"github.com/joyinliving/academy/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var scheduler session.Scheduler
	if conf.Zoom.AccountID != "" {
		scheduler = zoomsvc.NewClient(conf)
	} else {
		scheduler = zoomsvc.NewStaticScheduler()
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(dbx))
	cohortSvc := cohort.NewService(sqlxrepos.NewCohortRepository(dbx))
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(dbx), cohortSvc)
	sessionSvc := session.NewService(sqlxrepos.NewSessionRepository(dbx), scheduler)
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(dbx), studentSvc)
	recordingSvc := recording.NewService(sqlxrepos.NewRecordingRepository(dbx))
	blastSvc := blast.NewService(sqlxrepos.NewBlastRepository(dbx), studentSvc, cohortSvc, sessionSvc, mailSvc)
	reportSvc := report.NewService(studentSvc, cohortSvc, sessionSvc, attendanceSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	cohort.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			StudentSvc:    studentSvc,
			CohortSvc:     cohortSvc,
			SessionSvc:    sessionSvc,
			AttendanceSvc: attendanceSvc,
			RecordingSvc:  recordingSvc,
			BlastSvc:      blastSvc,
			ReportSvc:     reportSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
