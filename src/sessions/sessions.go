package sessions

import "time"

// Session labels the global trading session a timestamp falls into, New York
// time. The journal tags every entry and fill with its session so performance
// can later be broken down by time of day.
type Session string

const (
	SessionWeekendHoliday Session = "weekend_holiday"
	SessionDeadZone       Session = "dead_zone"
	SessionAsia           Session = "asia_session"
	SessionLondon         Session = "london_session"
	SessionUS             Session = "us_session"

	daysPerWeek     = 7
	thirdWeekOffset = 2
	fourthWeek      = 3
)

// Classify returns the session a timestamp belongs to. Sunday evenings where
// London is already open count as the London session, not the weekend.
func Classify(t time.Time) Session {
	et := easternTime(t)

	if et.Weekday() == time.Sunday && isLondonHours(et) {
		return SessionLondon
	}

	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday || IsUSMarketHoliday(et) {
		return SessionWeekendHoliday
	}

	switch {
	case isDeadZoneHours(et):
		return SessionDeadZone
	case isAsiaHours(et):
		return SessionAsia
	case isLondonHours(et):
		return SessionLondon
	default:
		return SessionUS
	}
}

// IsUSMarketHoliday reports whether the date (NY time) is a US equity market
// holiday: New Year's, MLK, Presidents' Day, Memorial Day, Independence Day,
// Labor Day, Thanksgiving, Christmas. Sunday holidays shift to Monday.
func IsUSMarketHoliday(t time.Time) bool {
	year := t.Year()

	newYears := observedFixed(year, time.January, 1)
	mlkDay := nthWeekday(year, time.January, time.Monday, thirdWeekOffset)
	presidentsDay := nthWeekday(year, time.February, time.Monday, thirdWeekOffset)

	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	independenceDay := observedFixed(year, time.July, 4)
	laborDay := nthWeekday(year, time.September, time.Monday, 0)
	thanksgiving := nthWeekday(year, time.November, time.Thursday, fourthWeek)
	christmas := observedFixed(year, time.December, 25)

	holidays := []time.Time{
		newYears,
		mlkDay,
		presidentsDay,
		memorialDay,
		independenceDay,
		laborDay,
		thanksgiving,
		christmas,
	}

	for _, d := range holidays {
		if t.Format("2006-01-02") == d.Format("2006-01-02") {
			return true
		}
	}
	return false
}

func easternTime(t time.Time) time.Time {
	nyLocation, err := time.LoadLocation("America/New_York")
	if err != nil {
		return t.UTC()
	}
	return t.In(nyLocation)
}

// NY session boundaries: dead zone 17-20, Asia 20-03, London 03-09, US 09-17.

func isDeadZoneHours(t time.Time) bool {
	return t.Hour() >= 17 && t.Hour() < 20
}

func isAsiaHours(t time.Time) bool {
	return t.Hour() >= 20 || t.Hour() < 3
}

func isLondonHours(t time.Time) bool {
	return t.Hour() >= 3 && t.Hour() < 9
}

// observedFixed shifts a Sunday holiday to the following Monday.
func observedFixed(year int, month time.Month, day int) time.Time {
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

// nthWeekday returns the (weekOffset+1)-th given weekday of a month, e.g.
// weekOffset 2 with Monday gives the third Monday.
func nthWeekday(year int, month time.Month, weekday time.Weekday, weekOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(weekday-firstOfMonth.Weekday()+daysPerWeek) % daysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+weekOffset*daysPerWeek)
}
