package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/joyinliving/academy/core/recording"
)

func (app *testApp) createRecording(t *testing.T, token string, nr recording.NewRecording) recording.Recording {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/recordings", token, marchallObj(t, nr))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createRecording(): code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var r recording.Recording
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("createRecording(): %v", err)
	}
	return r
}

func Test_recordingApi_createAndRetrieve(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)
	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))

	r := app.createRecording(t, token, recording.NewRecording{
		Title:      "Week 1 Orientation",
		CohortID:   c.ID,
		RecordedAt: time.Now().UTC().Add(-24 * time.Hour),
	})
	if r.CohortName != c.Name {
		t.Errorf("CohortName = %q, want %q", r.CohortName, c.Name)
	}
	if r.Status != recording.StatusActive {
		t.Errorf("Status = %v, want %v", r.Status, recording.StatusActive)
	}
	if r.Category != recording.CategorySession {
		t.Errorf("Category = %v, want %v", r.Category, recording.CategorySession)
	}

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/recordings/"+r.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, r)}, rec)
	})
}

func Test_recordingApi_query(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Grace Ho", "graceho", "grace.ho@joyinliving.sg", "V3ry#Secret")
	token := app.getToken(t, admin)
	c := app.createCohort(t, "SCTP3 Batch 046", "SCTP3-046", date(2025, 1, 6))

	fresh := app.createRecording(t, token, recording.NewRecording{
		Title:      "Week 1 Orientation",
		CohortID:   c.ID,
		RecordedAt: time.Now().UTC().Add(-24 * time.Hour),
	})
	old := app.createRecording(t, token, recording.NewRecording{
		Title:      "Git Workshop",
		CohortID:   c.ID,
		RecordedAt: time.Now().UTC().AddDate(0, -4, 0),
		Category:   recording.CategoryWorkshop,
	})
	if old.Status != recording.StatusArchived {
		t.Fatalf("Status = %v, want %v", old.Status, recording.StatusArchived)
	}

	path := func(params url.Values) string { return "/v1/recordings?" + params.Encode() }

	tests := []httpTest{
		{name: "all", path: "/v1/recordings", token: token, wantCode: http.StatusOK, wantData: marchallList(t, fresh, old)},
		{
			name: "status is case-insensitive", path: path(url.Values{"status": {"Active"}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, fresh),
		},
		{
			name: "archived", path: path(url.Values{"status": {recording.StatusArchived}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, old),
		},
		{
			name: "category is case-insensitive", path: path(url.Values{"category": {"Workshop"}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, old),
		},
		{
			name: "other cohort", path: path(url.Values{"cohort_id": {"nope"}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
