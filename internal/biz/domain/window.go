package domain

import (
	"fmt"
	"time"
)

// LabelLayout is the calendar-date layout used for window labels and artifact names
const LabelLayout = "2006-01-02"

// TimeWindow bounds one civil day of a fixed-offset timezone in absolute time
type TimeWindow struct {
	Start  time.Time // 00:00:00.000 civil, as UTC
	End    time.Time // 23:59:59.999 civil, as UTC
	Label  string    // civil date, YYYY-MM-DD
	Offset int       // minutes east of UTC
}

// ResolveWindow returns the civil day containing now in a zone offsetMinutes east of UTC.
// Only offset arithmetic is used, so the host's local zone never leaks in.
func ResolveWindow(now time.Time, offsetMinutes int) TimeWindow {
	shift := time.Duration(offsetMinutes) * time.Minute
	civil := now.UTC().Add(shift)
	midnight := time.Date(civil.Year(), civil.Month(), civil.Day(), 0, 0, 0, 0, time.UTC)

	start := midnight.Add(-shift)
	return TimeWindow{
		Start:  start,
		End:    start.Add(24*time.Hour - time.Millisecond),
		Label:  midnight.Format(LabelLayout),
		Offset: offsetMinutes,
	}
}

// ResolveWindowForDate returns the window for a civil date label (YYYY-MM-DD)
func ResolveWindowForDate(label string, offsetMinutes int) (TimeWindow, error) {
	day, err := time.Parse(LabelLayout, label)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid date %q: %w", label, err)
	}
	// Noon keeps the instant inside the day for any offset in [-12h, +14h].
	noon := day.Add(12 * time.Hour).Add(-time.Duration(offsetMinutes) * time.Minute)
	return ResolveWindow(noon, offsetMinutes), nil
}

// Contains reports whether t lies within [Start, End]
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Location returns a fixed zone matching the window offset
func (w TimeWindow) Location() *time.Location {
	return FixedZone(w.Offset)
}

// ZoneLabel formats the offset as UTC+05:30
func (w TimeWindow) ZoneLabel() string {
	return ZoneLabel(w.Offset)
}

// FixedZone builds a named fixed-offset location
func FixedZone(offsetMinutes int) *time.Location {
	return time.FixedZone(ZoneLabel(offsetMinutes), offsetMinutes*60)
}

// ZoneLabel formats a minute offset as UTC±hh:mm
func ZoneLabel(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}
