package schedule

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return parsed
}

func TestImmediateOutsideQuietHours(t *testing.T) {
	settings := DefaultSettings()
	now := mustTime(t, "2026-03-10 10:00")
	got := CalculateScheduledTimeAt(settings, now, now)
	if !got.Equal(now) {
		t.Fatalf("got %v, want unchanged %v", got, now)
	}
}

func TestImmediateDuringWrappingQuietHours(t *testing.T) {
	settings := DefaultSettings() // quiet 22:00-08:00
	now := mustTime(t, "2026-03-10 23:30")
	got := CalculateScheduledTimeAt(settings, now, now)
	want := mustTime(t, "2026-03-11 08:00")
	if !got.Equal(want) {
		t.Fatalf("23:30 send scheduled for %v, want %v", got, want)
	}

	// Early morning inside the same window resolves to today's end.
	now = mustTime(t, "2026-03-10 06:15")
	got = CalculateScheduledTimeAt(settings, now, now)
	want = mustTime(t, "2026-03-10 08:00")
	if !got.Equal(want) {
		t.Fatalf("06:15 send scheduled for %v, want %v", got, want)
	}
}

func TestQuietHoursDisabledWhenEqual(t *testing.T) {
	settings := DefaultSettings()
	settings.QuietStart = "08:00"
	settings.QuietEnd = "08:00"
	now := mustTime(t, "2026-03-10 08:00")
	if got := CalculateScheduledTimeAt(settings, now, now); !got.Equal(now) {
		t.Fatalf("equal quiet bounds should disable quiet hours, got %v", got)
	}
}

func TestBatchedRoundsUp(t *testing.T) {
	settings := DefaultSettings()
	settings.ScheduleType = TypeBatched
	settings.QuietStart, settings.QuietEnd = "", ""

	cases := []struct {
		window int
		now    string
		want   string
	}{
		{30, "2026-03-10 14:37", "2026-03-10 15:00"},
		{30, "2026-03-10 14:05", "2026-03-10 14:30"},
		{30, "2026-03-10 14:30", "2026-03-10 14:30"},
		{60, "2026-03-10 14:01", "2026-03-10 15:00"},
		{120, "2026-03-10 23:45", "2026-03-11 01:00"},
	}
	for _, c := range cases {
		settings.BatchWindow = c.window
		now := mustTime(t, c.now)
		got := CalculateScheduledTimeAt(settings, now, now)
		if want := mustTime(t, c.want); !got.Equal(want) {
			t.Fatalf("window %d at %s: got %v, want %v", c.window, c.now, got, want)
		}
	}
}

func TestCustomTimeRollsToNextDay(t *testing.T) {
	settings := DefaultSettings()
	settings.ScheduleType = TypeCustom
	settings.TimePreference = "09:00"

	now := mustTime(t, "2026-03-10 14:00")
	got := CalculateScheduledTimeAt(settings, now, now)
	want := mustTime(t, "2026-03-11 09:00")
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	now = mustTime(t, "2026-03-10 07:00")
	got = CalculateScheduledTimeAt(settings, now, now)
	want = mustTime(t, "2026-03-10 09:00")
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFutureReadyTimeIsBase(t *testing.T) {
	settings := DefaultSettings()
	settings.QuietStart, settings.QuietEnd = "", ""
	now := mustTime(t, "2026-03-10 10:00")
	ready := mustTime(t, "2026-03-12 11:00")
	if got := CalculateScheduledTimeAt(settings, ready, now); !got.Equal(ready) {
		t.Fatalf("got %v, want ready time %v", got, ready)
	}
}

func TestInQuietHours(t *testing.T) {
	cases := []struct {
		at         string
		start, end string
		want       bool
	}{
		{"2026-03-10 23:00", "22:00", "08:00", true},
		{"2026-03-10 07:59", "22:00", "08:00", true},
		{"2026-03-10 08:00", "22:00", "08:00", false},
		{"2026-03-10 12:00", "09:00", "17:00", true},
		{"2026-03-10 18:00", "09:00", "17:00", false},
		{"2026-03-10 12:00", "", "", false},
	}
	for _, c := range cases {
		if got := InQuietHours(mustTime(t, c.at), c.start, c.end); got != c.want {
			t.Fatalf("InQuietHours(%s, %q, %q) = %v, want %v", c.at, c.start, c.end, got, c.want)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	settings := DefaultSettings()
	settings.BatchWindow = 45

	got := ApplyPreset(settings, "work_focus")
	if got.ScheduleType != TypeBatched {
		t.Fatalf("ScheduleType = %q", got.ScheduleType)
	}
	if got.QuietStart != "09:00" || got.QuietEnd != "17:00" {
		t.Fatalf("quiet window = %q-%q", got.QuietStart, got.QuietEnd)
	}
	if got.BatchWindow != 120 {
		t.Fatalf("BatchWindow = %d", got.BatchWindow)
	}
	if got.Profile != "work_focus" {
		t.Fatalf("Profile = %q", got.Profile)
	}

	// default preset carries no batch window, so the user's value survives.
	got = ApplyPreset(settings, "default")
	if got.BatchWindow != 45 {
		t.Fatalf("BatchWindow = %d, want user's 45 preserved", got.BatchWindow)
	}

	if got := ApplyPreset(settings, "no_such_preset"); got != settings {
		t.Fatalf("unknown preset changed settings: %+v", got)
	}
}

func TestCreateBatchedNotification(t *testing.T) {
	one := CreateBatchedNotification([]Item{{ID: "a", Title: "Sneakers ready", Body: "Decide on your sneakers."}})
	if one.Title != "Sneakers ready" || one.Body != "Decide on your sneakers." {
		t.Fatalf("single item rewrote message: %+v", one)
	}

	many := CreateBatchedNotification([]Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	if many.Title != "Time to review 3 paused items!" {
		t.Fatalf("Title = %q", many.Title)
	}
	ids, ok := many.Data["itemIds"].([]string)
	if !ok || len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("itemIds = %v", many.Data["itemIds"])
	}

	if got := CreateBatchedNotification(nil); got.Title != "" || got.Data != nil {
		t.Fatalf("empty batch should be zero notification: %+v", got)
	}
}
