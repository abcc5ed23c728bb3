package availability

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// parseClock converts an "HH:MM" string into minutes since midnight. The
// second return value is false when the string is not a valid 24-hour time.
func parseClock(s string) (int, bool) {
	if !clockPattern.MatchString(s) {
		return 0, false
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, true
}

// minBlockMinutes is the minimum block duration: one slot.
var minBlockMinutes = int(SlotDuration.Minutes())

// ValidateDay checks one day's time blocks. A disabled day is valid only when
// empty of meaning (its blocks are ignored); an enabled day must have at
// least one block, and every block must be well-formed, at least one slot
// long, and non-overlapping with its siblings. Touching blocks are allowed.
func ValidateDay(day DaySchedule) error {
	if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
		return &ValidationError{Day: day.DayOfWeek, Block: -1, Reason: "day of week must be between 0 and 6"}
	}
	if !day.Enabled {
		return nil
	}
	if len(day.Blocks) == 0 {
		return &ValidationError{Day: day.DayOfWeek, Block: -1, Reason: "day enabled but has no time blocks"}
	}

	type span struct {
		start, end, block int
	}
	spans := make([]span, 0, len(day.Blocks))

	for i, b := range day.Blocks {
		start, ok := parseClock(b.StartTime)
		if !ok {
			return &ValidationError{Day: day.DayOfWeek, Block: i, Reason: "start time must be in HH:MM 24-hour format"}
		}
		end, ok := parseClock(b.EndTime)
		if !ok {
			return &ValidationError{Day: day.DayOfWeek, Block: i, Reason: "end time must be in HH:MM 24-hour format"}
		}
		if end <= start {
			return &ValidationError{Day: day.DayOfWeek, Block: i, Reason: "end time must be after start time"}
		}
		if end-start < minBlockMinutes {
			return &ValidationError{Day: day.DayOfWeek, Block: i, Reason: "block must be at least 1 hour"}
		}
		spans = append(spans, span{start: start, end: end, block: i})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return &ValidationError{Day: day.DayOfWeek, Block: spans[i].block, Reason: "overlapping time blocks"}
		}
	}

	return nil
}

// ValidateWeek checks a full submitted schedule, failing on the first
// violation so the whole save can be rejected with zero side effects.
func ValidateWeek(days []DaySchedule) error {
	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if seen[day.DayOfWeek] {
			return &ValidationError{Day: day.DayOfWeek, Block: -1, Reason: "duplicate day of week"}
		}
		seen[day.DayOfWeek] = true
		if err := ValidateDay(day); err != nil {
			return err
		}
	}
	return nil
}

// FlattenWeek converts the enabled days of a validated schedule into
// recurring entries for the given counselor.
func FlattenWeek(counselorID uuid.UUID, days []DaySchedule) []RecurringEntry {
	var entries []RecurringEntry
	for _, day := range days {
		if !day.Enabled {
			continue
		}
		for _, b := range day.Blocks {
			entries = append(entries, RecurringEntry{
				CounselorID: counselorID,
				DayOfWeek:   day.DayOfWeek,
				StartTime:   b.StartTime,
				EndTime:     b.EndTime,
			})
		}
	}
	return entries
}
