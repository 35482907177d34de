// Package schedule computes when a ready pause item should notify its user.
// It is pure time math: no delivery channels, no storage, no goroutines.
package schedule

import (
	"fmt"
	"time"
)

// Schedule types.
const (
	TypeImmediate = "immediate"
	TypeBatched   = "batched"
	TypeCustom    = "custom_time"
)

// Settings are a user's notification preferences.
type Settings struct {
	ScheduleType   string `json:"notification_schedule_type"`
	TimePreference string `json:"notification_time_preference"` // "HH:MM"
	BatchWindow    int    `json:"notification_batch_window"`    // minutes
	QuietStart     string `json:"quiet_hours_start"`            // "HH:MM"
	QuietEnd       string `json:"quiet_hours_end"`              // "HH:MM"
	Profile        string `json:"notification_profile"`
}

// DefaultSettings mirrors the "default" preset.
func DefaultSettings() Settings {
	return Settings{
		ScheduleType: TypeImmediate,
		BatchWindow:  30,
		QuietStart:   "22:00",
		QuietEnd:     "08:00",
		Profile:      "default",
	}
}

// CalculateScheduledTime returns the next eligible send time for an item
// that became ready at readyTime, relative to the wall clock.
func CalculateScheduledTime(settings Settings, readyTime time.Time) time.Time {
	return CalculateScheduledTimeAt(settings, readyTime, time.Now())
}

// CalculateScheduledTimeAt is the clock-injected variant.
func CalculateScheduledTimeAt(settings Settings, readyTime, now time.Time) time.Time {
	base := now
	if readyTime.After(now) {
		base = readyTime
	}

	switch settings.ScheduleType {
	case TypeBatched:
		return applyQuietHours(roundToBatchWindow(base, settings.BatchWindow), settings)
	case TypeCustom:
		return nextCustomTime(base, settings.TimePreference)
	default: // immediate
		return applyQuietHours(base, settings)
	}
}

// roundToBatchWindow rounds the minute-of-hour up to the next multiple of
// the window and zeroes seconds; minute 60 rolls into the next hour.
func roundToBatchWindow(t time.Time, window int) time.Time {
	if window <= 0 {
		window = 30
	}
	minute := t.Minute()
	rounded := ((minute + window - 1) / window) * window
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return t.Add(time.Duration(rounded) * time.Minute)
}

// nextCustomTime pins the clock to the preferred HH:MM, advancing a day when
// that moment is at or before the base time. A custom-time notification is
// never scheduled in the past relative to its base.
func nextCustomTime(base time.Time, pref string) time.Time {
	hour, minute, err := parseHHMM(pref)
	if err != nil {
		return base
	}
	candidate := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	if !candidate.After(base) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// applyQuietHours pushes a send time out of the user's quiet window. The
// window may wrap midnight (start > end). Equal start and end means quiet
// hours are disabled.
func applyQuietHours(t time.Time, settings Settings) time.Time {
	if !InQuietHours(t, settings.QuietStart, settings.QuietEnd) {
		return t
	}
	endHour, endMinute, err := parseHHMM(settings.QuietEnd)
	if err != nil {
		return t
	}
	end := time.Date(t.Year(), t.Month(), t.Day(), endHour, endMinute, 0, 0, t.Location())
	// In a wrapping window (22:00-08:00) a 23:30 send belongs to tomorrow's
	// quiet-hours end, detectable by the end sorting before the current
	// time of day.
	if settings.QuietStart > settings.QuietEnd && hhmm(t) >= settings.QuietStart {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// InQuietHours reports whether t's time-of-day falls in [start, end).
// Comparison is plain string ordering, valid because zero-padded 24-hour
// strings sort identically to time order.
func InQuietHours(t time.Time, start, end string) bool {
	if start == "" || end == "" || start == end {
		return false
	}
	tod := hhmm(t)
	if start < end {
		return tod >= start && tod < end
	}
	// Wraps midnight.
	return tod >= start || tod < end
}

func hhmm(t time.Time) string {
	return t.Format("15:04")
}

func parseHHMM(s string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule: invalid time %q", s)
	}
	return hour, minute, nil
}
