package blast

import (
	"strconv"
	"strings"
	"time"

	"github.com/joyinliving/academy/core/student"
)

// Recognized placeholder tokens. Substitution is literal, case-sensitive,
// whole-token only; anything else in the template passes through untouched.
const (
	TokenName   = "[Name]"
	TokenEmail  = "[Email]"
	TokenCohort = "[Cohort]"
	TokenLink   = "[Link]"
	TokenDate   = "[Date]"
	TokenTime   = "[Time]"
	TokenRate   = "[Rate]"
)

// cohortFallback replaces [Cohort] when the student's cohort cannot be found.
const cohortFallback = "your cohort"

type (
	// SessionContext supplies the session-bound placeholder values. These
	// are shared across the audience, not derived per recipient.
	SessionContext struct {
		Link string
		Date string // e.g. "15 Jan 2025"
		Time string // e.g. "09:00 AM"
	}

	// Recipient is one personalized send, ready for dispatch.
	Recipient struct {
		StudentID string `json:"student_id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Subject   string `json:"subject"`
		Body      string `json:"body"`
	}
)

// BuildRecipients personalizes subject and body for each resolved student.
// Pure and deterministic: one output entry per input student, in input
// order. Substitution is a single pass (replacement values are never
// rescanned for further tokens) and tokens with no supplied value, such
// as the session tokens without a SessionContext, stay verbatim.
func BuildRecipients(students []student.Student, cohortNames map[string]string, subject, body string, sctx *SessionContext) []Recipient {
	out := make([]Recipient, 0, len(students))
	for _, std := range students {
		cohortName, ok := cohortNames[std.CohortID]
		if !ok {
			cohortName = cohortFallback
		}

		pairs := []string{
			TokenName, std.Name,
			TokenEmail, std.Email,
			TokenCohort, cohortName,
			TokenRate, strconv.Itoa(std.AttendanceRate) + "%",
		}
		if sctx != nil {
			pairs = append(pairs,
				TokenLink, sctx.Link,
				TokenDate, sctx.Date,
				TokenTime, sctx.Time,
			)
		}

		r := strings.NewReplacer(pairs...)
		out = append(out, Recipient{
			StudentID: std.ID,
			Name:      std.Name,
			Email:     std.Email,
			Subject:   r.Replace(subject),
			Body:      r.Replace(body),
		})
	}
	return out
}

// NewSessionContext formats a session's join link, date and start time the
// way the dashboard's composer preview renders them.
func NewSessionContext(joinURL string, date time.Time, startTime string) *SessionContext {
	sctx := &SessionContext{
		Link: joinURL,
		Date: date.Format("2 Jan 2006"),
		Time: startTime,
	}
	if t, err := time.Parse("15:04", startTime); err == nil {
		sctx.Time = t.Format("03:04 PM")
	}
	return sctx
}
