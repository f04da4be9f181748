package booking

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the day-month-year form the booking surface uses.
const dateLayout = "02-01-2006"

// slotLayouts are the accepted 12-hour clock forms for a time slot.
var slotLayouts = []string{"3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}

// ParseSchedule combines a selected date (day-month-year) with a chosen
// 12-hour clock slot into one scheduled timestamp in local time. An
// invalid time format is a hard failure for the checkout attempt.
func ParseSchedule(date, slot string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking date %q: %w", date, err)
	}

	slot = strings.ToUpper(strings.TrimSpace(slot))
	var clock time.Time
	var parseErr error
	for _, layout := range slotLayouts {
		clock, parseErr = time.Parse(layout, slot)
		if parseErr == nil {
			break
		}
	}
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q: expected a 12-hour time like \"6:30 PM\"", slot)
	}

	return time.Date(
		day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local,
	), nil
}
