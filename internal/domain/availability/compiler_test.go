package availability

import (
	"testing"
	"time"
)

// A fixed reference clock keeps weekday math stable. 2025-06-04 is a
// Wednesday.
var wednesdayNoon = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

func entry(dow int, start, end string) RecurringEntry {
	return RecurringEntry{DayOfWeek: dow, StartTime: start, EndTime: end}
}

func TestCompileSlotsTwoHourBlockTwoWeeks(t *testing.T) {
	// Mondays 09:00-11:00 over two weeks yields two hour slots per week.
	entries := []RecurringEntry{entry(1, "09:00", "11:00")}

	windows := CompileSlots(entries, 2, wednesdayNoon)
	if len(windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(windows))
	}
	for i, w := range windows {
		if w.Start.Weekday() != time.Monday {
			t.Errorf("window %d starts on %s, want Monday", i, w.Start.Weekday())
		}
		if w.End.Sub(w.Start) != SlotDuration {
			t.Errorf("window %d duration = %s", i, w.End.Sub(w.Start))
		}
		if !w.Start.After(wednesdayNoon) {
			t.Errorf("window %d starts at or before now", i)
		}
	}
	if h := windows[0].Start.Hour(); h != 9 {
		t.Errorf("first window starts at hour %d, want 9", h)
	}
	if h := windows[1].Start.Hour(); h != 10 {
		t.Errorf("second window starts at hour %d, want 10", h)
	}
}

func TestCompileSlotsDropsPartialTrailingStep(t *testing.T) {
	// 09:00-10:30 fits exactly one hour slot; the trailing half hour is
	// dropped rather than emitted short.
	entries := []RecurringEntry{entry(1, "09:00", "10:30")}

	windows := CompileSlots(entries, 1, wednesdayNoon)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if h, m := windows[0].Start.Hour(), windows[0].Start.Minute(); h != 9 || m != 0 {
		t.Errorf("window starts at %02d:%02d, want 09:00", h, m)
	}
}

func TestCompileSlotsSkipsElapsedToday(t *testing.T) {
	// Today is Wednesday at noon; the 09:00-11:00 Wednesday block has fully
	// elapsed, so only next week's occurrence is emitted.
	entries := []RecurringEntry{entry(3, "09:00", "11:00")}

	windows := CompileSlots(entries, 2, wednesdayNoon)
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	for _, w := range windows {
		if !w.Start.After(wednesdayNoon) {
			t.Errorf("emitted elapsed window %s", w.Start)
		}
	}
}

func TestCompileSlotsEmitsRemainderOfToday(t *testing.T) {
	// Wednesday 09:00-15:00 at noon: the 13:00 and 14:00 slots are still
	// ahead, plus six slots next week.
	entries := []RecurringEntry{entry(3, "09:00", "15:00")}

	windows := CompileSlots(entries, 2, wednesdayNoon)
	if len(windows) != 8 {
		t.Fatalf("got %d windows, want 8", len(windows))
	}
	if h := windows[0].Start.Hour(); h != 13 {
		t.Errorf("first remaining slot at hour %d, want 13", h)
	}
}

func TestCompileSlotsDeterministic(t *testing.T) {
	entries := []RecurringEntry{
		entry(1, "09:00", "12:00"),
		entry(4, "14:00", "18:00"),
	}

	a := CompileSlots(entries, 4, wednesdayNoon)
	b := CompileSlots(entries, 4, wednesdayNoon)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			t.Fatalf("window %d differs between runs", i)
		}
	}
}

func TestFilterBooked(t *testing.T) {
	start := wednesdayNoon.Add(24 * time.Hour)
	candidates := []Window{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)},
		{Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour)},
	}
	booked := []*Slot{
		{StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour)},
	}

	kept := FilterBooked(candidates, booked)
	if len(kept) != 2 {
		t.Fatalf("got %d windows, want 2", len(kept))
	}
	for _, w := range kept {
		if w.Start.Equal(start.Add(time.Hour)) {
			t.Errorf("booked window survived filtering")
		}
	}
}

func TestFilterBookedTouchingIsNotOverlap(t *testing.T) {
	start := wednesdayNoon.Add(24 * time.Hour)
	candidates := []Window{{Start: start, End: start.Add(time.Hour)}}
	booked := []*Slot{{StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour)}}

	if kept := FilterBooked(candidates, booked); len(kept) != 1 {
		t.Fatalf("touching candidate dropped, want kept")
	}
}
