package service

import (
	"fmt"
	"time"

	"github.com/guttosm/freightrates/internal/apperrors"
)

// DayLayout is the wire format of every date the API accepts or returns.
const DayLayout = "2006-01-02"

const (
	msgDateOrder      = "date_from must be less than or equal to date_to"
	msgLengthMismatch = "price and generated date length does not match"
)

// ParseDay parses a YYYY-MM-DD date into midnight UTC.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// ValidateRange rejects ranges whose start falls after their end. Both the
// query and the upload paths report the same message.
func ValidateRange(from, to time.Time) error {
	if from.After(to) {
		return apperrors.Validation(msgDateOrder)
	}
	return nil
}

// DayCount returns how many calendar days ExpandDays(from, to) would yield,
// without building them. It is 0 when from is after to.
func DayCount(from, to time.Time) int64 {
	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return 0
	}
	return (to.Unix()-from.Unix())/secondsPerDay + 1
}

const secondsPerDay = 24 * 60 * 60

// ExpandDays lists every calendar day from from to to, both inclusive.
// It returns nil when from is after to.
func ExpandDays(from, to time.Time) []time.Time {
	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
