package poller

import (
	"fmt"
	"time"
)

const dayLayout = "20060102"

// SportsDay returns the scoreboard date (YYYYMMDD) a wall-clock instant
// belongs to. Late games run past midnight, so the day does not roll over
// until rolloverHour in loc; before that hour the previous calendar day is
// still in play.
func SportsDay(now time.Time, loc *time.Location, rolloverHour int) string {
	local := now.In(loc)
	if local.Hour() < rolloverHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(dayLayout)
}

// PreviousDay returns the calendar day before a YYYYMMDD date
func PreviousDay(day string) (string, error) {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", day, err)
	}
	return t.AddDate(0, 0, -1).Format(dayLayout), nil
}
