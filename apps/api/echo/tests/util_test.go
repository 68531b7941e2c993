package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	locale_en "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/joyinliving/academy/apps/api/echo"
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
	inmemdb "github.com/joyinliving/academy/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	conf   *core.Config
	server Server

	usrRepo       user.Repository
	usrSvc        user.ServiceInterface
	studentSvc    student.ServiceInterface
	cohortSvc     cohort.ServiceInterface
	sessionSvc    session.ServiceInterface
	attendanceSvc attendance.ServiceInterface
}

// setup builds a full server on in-memory repositories; each test gets a
// fresh app and a clean outbox.
func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		AppName:   "Joy in Living Academy",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "!!WeWillSurelyChangeThis!!",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}

	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo)
	cohortSvc := cohort.NewService(inmemdb.NewCohortRepository(db))
	studentSvc := student.NewService(inmemdb.NewStudentRepository(db), cohortSvc)
	sessionSvc := session.NewService(inmemdb.NewSessionRepository(db), zoomsvc.NewStaticScheduler())
	attendanceSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), studentSvc)
	recordingSvc := recording.NewService(inmemdb.NewRecordingRepository(db))
	blastSvc := blast.NewService(inmemdb.NewBlastRepository(db), studentSvc, cohortSvc, sessionSvc, mailSvc)
	reportSvc := report.NewService(studentSvc, cohortSvc, sessionSvc, attendanceSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	cohort.InitValidators(validate, translator)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	server := NewServer(ServerDeps{
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
	})

	return &testApp{
		conf:          conf,
		server:        server,
		usrRepo:       usrRepo,
		usrSvc:        usrSvc,
		studentSvc:    studentSvc,
		cohortSvc:     cohortSvc,
		sessionSvc:    sessionSvc,
		attendanceSvc: attendanceSvc,
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newTranslator() ut.Translator {
	_en := locale_en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// Fixtures

func (app *testApp) createUser(t *testing.T, name, uname, email, pwd string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func (app *testApp) createCohort(t *testing.T, name, code string, start time.Time) cohort.Cohort {
	t.Helper()
	c, err := app.cohortSvc.Create(context.Background(), cohort.NewCohort{
		Name:      name,
		Code:      code,
		StartDate: start,
		EndDate:   start.AddDate(0, 6, 0),
		Status:    cohort.StatusActive,
	})
	if err != nil {
		t.Fatalf("createCohort(): %v", err)
	}
	return c
}

func (app *testApp) createStudent(t *testing.T, name, email, cohortID string) student.Student {
	t.Helper()
	std, err := app.studentSvc.Create(context.Background(), student.NewStudent{
		Name:     name,
		Email:    email,
		CohortID: cohortID,
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return std
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(app.conf, GetUserClaims(app.conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// HTTP plumbing

type httpErr struct {
	Error string `json:"error"`
}

type echoMap map[string]interface{}

type loginResponse struct {
	Token string `json:"token"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	if l1, ok := j1.([]interface{}); ok {
		if l2, ok := j2.([]interface{}); ok {
			return assert.ElementsMatch(t, l1, l2), nil
		}
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
