package remind

import "time"

// DateComponents is a partial wall-clock specification. Unset fields act
// as wildcards when the trigger repeats.
type DateComponents struct {
	Year    *int
	Month   *time.Month
	Day     *int
	Weekday *time.Weekday
	Hour    *int
	Minute  *int
}

// Trigger is the time condition that fires a notification: either a
// one-shot calendar date or an indefinitely repeating partial date.
type Trigger struct {
	Components DateComponents
	Repeats    bool
}

// ComponentsFromTime extracts year/month/day/hour/minute from t.
// Second-level precision is discarded.
func ComponentsFromTime(t time.Time) DateComponents {
	year, month, day := t.Date()
	hour, minute := t.Hour(), t.Minute()
	return DateComponents{
		Year:   &year,
		Month:  &month,
		Day:    &day,
		Hour:   &hour,
		Minute: &minute,
	}
}

// Daily returns components for "every day at hour:minute".
func Daily(hour, minute int) DateComponents {
	return DateComponents{Hour: &hour, Minute: &minute}
}

// Weekly returns components for "every <weekday> at hour:minute".
func Weekly(weekday time.Weekday, hour, minute int) DateComponents {
	return DateComponents{Weekday: &weekday, Hour: &hour, Minute: &minute}
}

// NextFire returns the first instant strictly after the given time at
// which the trigger fires, or false if it never will (a one-shot whose
// date has passed).
func (tr Trigger) NextFire(after time.Time) (time.Time, bool) {
	c := tr.Components

	if !tr.Repeats {
		at := c.concrete(after.Location())
		if at.After(after) {
			return at, true
		}
		return time.Time{}, false
	}

	// Walk forward a minute at a time from the next whole minute until
	// every set component matches. Bounded to a little over a year so a
	// contradictory specification cannot loop forever.
	t := after.Truncate(time.Minute).Add(time.Minute)
	limit := after.AddDate(1, 0, 2)
	for ; t.Before(limit); t = t.Add(time.Minute) {
		if c.matches(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

// concrete builds the single instant a one-shot trigger fires at. Unset
// fields default to the zero calendar values.
func (c DateComponents) concrete(loc *time.Location) time.Time {
	year, month, day := 1, time.January, 1
	hour, minute := 0, 0
	if c.Year != nil {
		year = *c.Year
	}
	if c.Month != nil {
		month = *c.Month
	}
	if c.Day != nil {
		day = *c.Day
	}
	if c.Hour != nil {
		hour = *c.Hour
	}
	if c.Minute != nil {
		minute = *c.Minute
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func (c DateComponents) matches(t time.Time) bool {
	if c.Year != nil && t.Year() != *c.Year {
		return false
	}
	if c.Month != nil && t.Month() != *c.Month {
		return false
	}
	if c.Day != nil && t.Day() != *c.Day {
		return false
	}
	if c.Weekday != nil && t.Weekday() != *c.Weekday {
		return false
	}
	if c.Hour != nil && t.Hour() != *c.Hour {
		return false
	}
	if c.Minute != nil && t.Minute() != *c.Minute {
		return false
	}
	return true
}
