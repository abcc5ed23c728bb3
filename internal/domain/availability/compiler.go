package availability

import "time"

// CompileSlots expands validated recurring entries into concrete hour-long
// candidate windows over the generation horizon. Pure function of its inputs:
// "now" is passed in so regeneration day behaves deterministically in tests.
//
// For each entry the next occurrence of its weekday on or after today is
// located, then each of the horizonWeeks weekly occurrences is walked in
// fixed one-hour steps from the block's start to its end. A step is dropped
// when its end would exceed the block end, and only windows starting strictly
// after now are emitted, which naturally skips today's already-elapsed
// blocks.
func CompileSlots(entries []RecurringEntry, horizonWeeks int, now time.Time) []Window {
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var windows []Window
	for _, entry := range entries {
		startMins, ok := parseClock(entry.StartTime)
		if !ok {
			continue
		}
		endMins, ok := parseClock(entry.EndTime)
		if !ok || endMins <= startMins {
			continue
		}

		// Next occurrence of the entry's weekday on or after today.
		daysAhead := (entry.DayOfWeek - int(today.Weekday()) + 7) % 7
		first := today.AddDate(0, 0, daysAhead)

		for week := 0; week < horizonWeeks; week++ {
			day := first.AddDate(0, 0, 7*week)
			blockEnd := day.Add(time.Duration(endMins) * time.Minute)

			for cur := day.Add(time.Duration(startMins) * time.Minute); ; cur = cur.Add(SlotDuration) {
				slotEnd := cur.Add(SlotDuration)
				if slotEnd.After(blockEnd) {
					break
				}
				// HH:MM bounds keep blocks inside a single day, so a slot
				// that fits the block cannot cross midnight.
				if cur.After(now) {
					windows = append(windows, Window{Start: cur, End: slotEnd})
				}
			}
		}
	}

	return windows
}

// FilterBooked drops candidate windows whose interval intersects any of the
// booked slots, protecting committed appointments from colliding re-inserts
// across schedule versions.
func FilterBooked(candidates []Window, booked []*Slot) []Window {
	if len(booked) == 0 {
		return candidates
	}

	kept := candidates[:0]
	for _, w := range candidates {
		collides := false
		for _, b := range booked {
			if w.Overlaps(b.StartTime, b.EndTime) {
				collides = true
				break
			}
		}
		if !collides {
			kept = append(kept, w)
		}
	}
	return kept
}
