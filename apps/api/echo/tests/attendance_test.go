package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/joyinliving/academy/core/attendance"
	"github.com/joyinliving/academy/core/report"
	"github.com/joyinliving/academy/core/session"
)

func Test_attendanceApi_markAndSummary(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)

	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))
	john := app.createStudent(t, "John Tan", "john.tan@example.com", c.ID)
	sarah := app.createStudent(t, "Sarah Lim", "sarah.lim@example.com", c.ID)

	sessions := make([]session.Session, 2)
	for i, name := range []string{"Week 1: Kickoff", "Week 2: SQL Basics"} {
		s, err := app.sessionSvc.Create(ctx, session.NewSession{
			Name:      name,
			CohortID:  c.ID,
			Date:      date(2025, 1, 8+7*i),
			StartTime: "09:00",
			EndTime:   "12:00",
		})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		sessions[i] = s
	}

	t.Run("mark", func(t *testing.T) {
		body := marchallObj(t, echoMap{"student_id": john.ID, "session_id": sessions[0].ID, "status": attendance.StatusPresent})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/mark", token, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var r attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		if r.Status != attendance.StatusPresent {
			t.Errorf("Status = %v, want %v", r.Status, attendance.StatusPresent)
		}

		// re-marking replaces the record
		body = marchallObj(t, echoMap{"student_id": john.ID, "session_id": sessions[0].ID, "status": attendance.StatusLate})
		req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/mark", token, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var r2 attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &r2); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		if r2.ID != r.ID {
			t.Errorf("re-mark ID = %v, want %v", r2.ID, r.ID)
		}

		recs, err := app.attendanceSvc.QueryBySession(ctx, sessions[0].ID)
		if err != nil {
			t.Fatalf("QueryBySession(): %v", err)
		}
		if len(recs) != 1 || recs[0].Status != attendance.StatusLate {
			t.Errorf("records = %+v, want one late record", recs)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		body := marchallObj(t, echoMap{"student_id": john.ID, "session_id": sessions[0].ID, "status": "awol"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/mark", token, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("bulk mark backfills session", func(t *testing.T) {
		body := marchallObj(t, echoMap{
			"session_id": sessions[1].ID,
			"marks": []echoMap{
				{"student_id": john.ID, "status": attendance.StatusPresent},
				{"student_id": sarah.ID, "status": attendance.StatusAbsent},
			},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/bulk", token, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var recs []attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("records = %v, want 2", len(recs))
		}
		for _, r := range recs {
			if r.SessionID != sessions[1].ID {
				t.Errorf("SessionID = %v, want %v", r.SessionID, sessions[1].ID)
			}
		}
	})

	t.Run("summary and roster rate", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/student/"+john.ID+"/summary", token)
		app.server.ServeHTTP(rec, req)
		want := attendance.Summary{StudentID: john.ID, TotalSessions: 2, Present: 1, Late: 1, Rate: 100}
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)

		std, err := app.studentSvc.GetByID(ctx, john.ID)
		if err != nil {
			t.Fatalf("GetByID(): %v", err)
		}
		if std.AttendanceRate != 100 {
			t.Errorf("AttendanceRate = %v, want 100", std.AttendanceRate)
		}

		std, err = app.studentSvc.GetByID(ctx, sarah.ID)
		if err != nil {
			t.Fatalf("GetByID(): %v", err)
		}
		if std.AttendanceRate != 0 {
			t.Errorf("AttendanceRate = %v, want 0", std.AttendanceRate)
		}
	})
}

func Test_reportApi(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)

	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))
	john := app.createStudent(t, "John Tan", "john.tan@example.com", c.ID)
	app.createStudent(t, "Sarah Lim", "sarah.lim@example.com", c.ID)

	s, err := app.sessionSvc.Create(ctx, session.NewSession{
		Name:      "Week 1: Kickoff",
		CohortID:  c.ID,
		Date:      date(2100, 1, 8), // far enough out to always count as upcoming
		StartTime: "09:00",
		EndTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err = app.attendanceSvc.Mark(ctx, attendance.Mark{StudentID: john.ID, SessionID: s.ID, Status: attendance.StatusPresent}); err != nil {
		t.Fatalf("Mark(): %v", err)
	}

	t.Run("dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/dashboard", token)
		app.server.ServeHTTP(rec, req)
		want := report.DashboardStats{
			TotalStudents:         2,
			ActiveStudents:        2,
			TotalCohorts:          1,
			ActiveCohorts:         1,
			UpcomingSessions:      1,
			AverageAttendanceRate: 50, // 100 and 0
		}
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)
	})

	t.Run("attendance csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/attendance.csv", token)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="attendance.csv"` {
			t.Errorf("Content-Disposition = %v", got)
		}
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		if len(lines) != 3 { // header + 2 students
			t.Fatalf("lines = %v, want 3:\n%v", len(lines), rec.Body.String())
		}
		if lines[0] != "name,email,cohort,sessions,present,late,absent,rate" {
			t.Errorf("header = %v", lines[0])
		}
		if !strings.Contains(rec.Body.String(), "John Tan,john.tan@example.com,SCTP3-046,1,1,0,0,100") {
			t.Errorf("missing John's row:\n%v", rec.Body.String())
		}
	})
}
