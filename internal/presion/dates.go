package presion

import "time"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// StartOfWeekMonday returns the Monday of the week containing t, at midnight.
func StartOfWeekMonday(t time.Time) time.Time {
	diff := int(t.Weekday()) - int(time.Monday)
	if diff < 0 {
		diff += 7
	}
	y, m, d := t.AddDate(0, 0, -diff).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfWeekSunday returns the Sunday closing the same week.
func EndOfWeekSunday(t time.Time) time.Time {
	return StartOfWeekMonday(t).AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	return start, end
}
