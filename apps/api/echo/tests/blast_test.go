package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/joyinliving/academy/core/blast"
	"github.com/joyinliving/academy/core/student"
	emailsvc "github.com/joyinliving/academy/services/email"
)

func Test_blastApi_preview(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)

	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))
	john := app.createStudent(t, "John Tan", "john.tan@example.com", c.ID)
	sarah := app.createStudent(t, "Sarah Lim", "sarah.lim@example.com", c.ID)
	if _, err := app.studentSvc.SetStatus(ctx, sarah.ID, student.StatusWithdrawn); err != nil {
		t.Fatalf("SetStatus(): %v", err)
	}

	tests := []httpTest{
		{
			name: "missing target type", token: token,
			body:     marchallObj(t, echoMap{"subject": "Hi", "body": "Hello"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoMap{"target_type": "this field is required"}),
		},
		{
			name: "cohort target needs a cohort", token: token,
			body:     marchallObj(t, echoMap{"subject": "Hi", "body": "Hello", "target_type": blast.TargetCohort}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoMap{"target_cohort_id": "this field is required"}),
		},
		{
			name: "all targets active students only", token: token,
			body:     marchallObj(t, echoMap{"subject": "Hi [Name]", "body": "Welcome to [Cohort]!", "target_type": blast.TargetAll}),
			wantCode: http.StatusOK,
			wantData: marchallList(t, blast.Recipient{
				StudentID: john.ID,
				Name:      "John Tan",
				Email:     "john.tan@example.com",
				Subject:   "Hi John Tan",
				Body:      "Welcome to SCTP3 Batch 046!",
			}),
		},
		{
			name: "custom target ignores status", token: token,
			body: marchallObj(t, echoMap{
				"subject": "Hi [Name]", "body": "Hello",
				"target_type": blast.TargetCustom, "target_student_ids": []string{sarah.ID},
			}),
			wantCode: http.StatusOK,
			wantData: marchallList(t, blast.Recipient{
				StudentID: sarah.ID,
				Name:      "Sarah Lim",
				Email:     "sarah.lim@example.com",
				Subject:   "Hi Sarah Lim",
				Body:      "Hello",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/blasts/preview", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_blastApi_send(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)

	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))
	app.createStudent(t, "John Tan", "john.tan@example.com", c.ID)
	app.createStudent(t, "Sarah Lim", "sarah.lim@example.com", c.ID)

	t.Run("no recipients", func(t *testing.T) {
		body := marchallObj(t, echoMap{
			"subject": "Hi", "body": "Hello",
			"target_type": blast.TargetCohort, "target_cohort_id": "deadbeef",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/blasts", token, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: blast.ErrNoRecipients.Error()}),
		}, rec)
	})

	t.Run("send to cohort", func(t *testing.T) {
		body := marchallObj(t, echoMap{
			"subject": "Class reminder", "body": "Hi [Name], see you soon!",
			"target_type": blast.TargetCohort, "target_cohort_id": c.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/blasts", token, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var b blast.Blast
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		if b.Status != blast.StatusSent {
			t.Errorf("Status = %v, want %v", b.Status, blast.StatusSent)
		}
		if b.RecipientCount != 2 || b.SentCount != 2 || b.FailedCount != 0 {
			t.Errorf("counts = %v/%v/%v, want 2/2/0", b.RecipientCount, b.SentCount, b.FailedCount)
		}
		if b.SentAt == nil {
			t.Error("SentAt not set")
		}

		if len(emailsvc.SentMessages) != 2 {
			t.Fatalf("outbox = %v messages, want 2", len(emailsvc.SentMessages))
		}
		var bodies []string
		for _, msg := range emailsvc.SentMessages {
			bodies = append(bodies, msg.TextContent)
		}
		want := map[string]bool{"Hi John Tan, see you soon!": true, "Hi Sarah Lim, see you soon!": true}
		for _, got := range bodies {
			if !want[got] {
				t.Errorf("unexpected message body %q", got)
			}
		}

		// the blast is now listed
		req, rec = newAuthRequest(http.MethodGet, "/v1/blasts", token)
		app.server.ServeHTTP(rec, req)
		var blasts []blast.Blast
		if err := json.Unmarshal(rec.Body.Bytes(), &blasts); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		if len(blasts) != 1 || blasts[0].ID != b.ID {
			t.Errorf("blasts = %+v, want just %v", blasts, b.ID)
		}

		// and retrievable by id
		req, rec = newAuthRequest(http.MethodGet, "/v1/blasts/"+b.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, b)}, rec)
	})
}
