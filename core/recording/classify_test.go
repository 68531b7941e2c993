package recording

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	recordedAt := date(2025, time.January, 20)

	tests := []struct {
		name         string
		now          time.Time
		wantStatus   string
		wantDays     int
		wantExpiring bool
	}{
		{name: "fresh", now: date(2025, time.January, 21), wantStatus: StatusActive, wantDays: 58},
		{name: "expiring soon", now: date(2025, time.March, 10), wantStatus: StatusActive, wantDays: 10, wantExpiring: true},
		{name: "last day", now: date(2025, time.March, 19), wantStatus: StatusActive, wantDays: 1, wantExpiring: true},
		{name: "partial day left counts", now: date(2025, time.March, 19).Add(18 * time.Hour), wantStatus: StatusActive, wantDays: 1, wantExpiring: true},
		{name: "boundary is archived", now: date(2025, time.March, 20), wantStatus: StatusArchived, wantDays: 0},
		{name: "long archived", now: date(2025, time.June, 1), wantStatus: StatusArchived, wantDays: -73},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(recordedAt, tt.now)
			if c.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", c.Status, tt.wantStatus)
			}
			if want := date(2025, time.March, 20); !c.ExpiresAt.Equal(want) {
				t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, want)
			}
			if c.DaysRemaining != tt.wantDays {
				t.Errorf("DaysRemaining = %v, want %v", c.DaysRemaining, tt.wantDays)
			}
			if c.ExpiringSoon != tt.wantExpiring {
				t.Errorf("ExpiringSoon = %v, want %v", c.ExpiringSoon, tt.wantExpiring)
			}
		})
	}
}

func TestClassify_monthEndClamping(t *testing.T) {
	tests := []struct {
		name       string
		recordedAt time.Time
		want       time.Time
	}{
		{name: "plain", recordedAt: date(2025, time.January, 15), want: date(2025, time.March, 15)},
		{name: "Jan 31 keeps its day", recordedAt: date(2025, time.January, 31), want: date(2025, time.March, 31)},
		{name: "Dec 31 clamps to Feb 28", recordedAt: date(2024, time.December, 31), want: date(2025, time.February, 28)},
		{name: "Dec 31 clamps to leap Feb 29", recordedAt: date(2023, time.December, 31), want: date(2024, time.February, 29)},
		{name: "Jul 31 clamps to Sep 30", recordedAt: date(2025, time.July, 31), want: date(2025, time.September, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := Classify(tt.recordedAt, tt.recordedAt); !c.ExpiresAt.Equal(tt.want) {
				t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, tt.want)
			}
		})
	}
}

func TestClassify_idempotent(t *testing.T) {
	recordedAt := date(2025, time.February, 3)
	now := date(2025, time.March, 1)

	first := Classify(recordedAt, now)
	for i := 0; i < 3; i++ {
		if c := Classify(recordedAt, now); c != first {
			t.Errorf("Classify() = %+v, want %+v", c, first)
		}
	}
}
