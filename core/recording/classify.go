package recording

import "time"

const (
	// RetentionMonths is the fixed retention window: recordings archive
	// 2 calendar months after their recording date.
	RetentionMonths = 2

	// ExpiryWarningDays marks active recordings as "expiring soon" when
	// this close to archival. Display hint only, not a distinct state.
	ExpiryWarningDays = 14
)

// Classification is the computed lifecycle of a recording at a given
// instant. It is pure output: computing it never mutates stored data.
type Classification struct {
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
	DaysRemaining int       `json:"days_remaining"`
	ExpiringSoon  bool      `json:"expiring_soon"`
}

// Classify determines whether a recording is active or archived at `now`.
// The boundary is inclusive: now == expiresAt classifies as archived.
// Future recording dates are not rejected; DaysRemaining is simply large.
func Classify(recordedAt, now time.Time) Classification {
	expiresAt := addMonths(recordedAt, RetentionMonths)

	// ceil: a partial day left still counts as a day
	remaining := expiresAt.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}

	c := Classification{
		ExpiresAt:     expiresAt,
		DaysRemaining: days,
	}
	if !now.Before(expiresAt) {
		c.Status = StatusArchived
	} else {
		c.Status = StatusActive
		c.ExpiringSoon = days <= ExpiryWarningDays
	}
	return c
}

// addMonths adds n calendar months, clamping to the last valid day of the
// target month instead of letting overflow days normalize forward
// (Jan 31 + 2 months = Mar 31; Dec 31 + 2 months = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	month += time.Month(n)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes back to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
