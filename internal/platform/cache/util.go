package cache

import (
	"time"
)

// publishHour is the local hour by which the day's NGX price list is normally online.
const publishHour = 18

// lagos returns the exchange's time zone, falling back to a fixed UTC+1
// zone when tzdata is unavailable.
func lagos() *time.Location {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		return time.FixedZone("WAT", 60*60)
	}
	return loc
}

// TimeUntilNextPublish returns the duration until the next 18:00 in Lagos.
func TimeUntilNextPublish() time.Duration {
	return timeUntilNext(time.Now(), publishHour, lagos())
}

func timeUntilNext(now time.Time, hour int, loc *time.Location) time.Duration {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
