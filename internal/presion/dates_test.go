package presion

import (
	"testing"
	"time"
)

func TestWeekWindowFromAnyWeekday(t *testing.T) {
	// 2025-08-11 is a Monday, 2025-08-17 the closing Sunday.
	wantStart := time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	for day := 11; day <= 17; day++ {
		ref := time.Date(2025, 8, day, 13, 45, 0, 0, time.UTC)
		if got := StartOfWeekMonday(ref); !got.Equal(wantStart) {
			t.Errorf("StartOfWeekMonday(%s) = %s, want %s", ref.Format(dateLayout), got, wantStart)
		}
		if got := EndOfWeekSunday(ref); !got.Equal(wantEnd) {
			t.Errorf("EndOfWeekSunday(%s) = %s, want %s", ref.Format(dateLayout), got, wantEnd)
		}
	}
}

func TestWeekWindowCrossesMonth(t *testing.T) {
	// 2025-09-01 is a Monday; the prior Sunday belongs to the previous week.
	ref := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC) // Sunday
	if got := StartOfWeekMonday(ref); got.Format(dateLayout) != "2025-08-25" {
		t.Errorf("StartOfWeekMonday = %s, want 2025-08-25", got.Format(dateLayout))
	}
	if got := EndOfWeekSunday(ref); got.Format(dateLayout) != "2025-08-31" {
		t.Errorf("EndOfWeekSunday = %s, want 2025-08-31", got.Format(dateLayout))
	}
}

func TestMonthRange(t *testing.T) {
	cases := []struct {
		year       int
		month      time.Month
		start, end string
	}{
		{2025, time.February, "2025-02-01", "2025-02-28"},
		{2024, time.February, "2024-02-01", "2024-02-29"},
		{2025, time.August, "2025-08-01", "2025-08-31"},
		{2025, time.December, "2025-12-01", "2025-12-31"},
	}
	for _, tc := range cases {
		start, end := MonthRange(tc.year, tc.month)
		if start.Format(dateLayout) != tc.start || end.Format(dateLayout) != tc.end {
			t.Errorf("MonthRange(%d, %s) = %s..%s, want %s..%s",
				tc.year, tc.month, start.Format(dateLayout), end.Format(dateLayout), tc.start, tc.end)
		}
	}
}
