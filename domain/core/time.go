package core

import (
	"encoding/json"
	"time"
)

const (
	secondsPerDay = 86400
	daysPerYear   = 365.25

	// ordinal of 1970-01-01 counting 0001-01-01 as day 1
	unixEpochOrdinal = 719163

	DateLayout = "2006-01-02"
)

// Date is a calendar date that may be absent in the source sheet.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate wraps t as a present date.
func NewDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// NullDate returns an absent date.
func NullDate() Date {
	return Date{}
}

// DateOf builds a present UTC date.
func DateOf(year int, month time.Month, day int) Date {
	return NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Equal reports whether both dates are present and denote the same instant.
// Two absent dates are not equal.
func (d Date) Equal(o Date) bool {
	return d.Valid && o.Valid && d.Time.Equal(o.Time)
}

// Year returns the calendar year when the date is present.
func (d Date) Year() (int, bool) {
	if !d.Valid {
		return 0, false
	}
	return d.Time.Year(), true
}

// Ordinal returns the proleptic Gregorian day number of the date.
func (d Date) Ordinal() int {
	y, m, day := d.Time.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal converts a day number back to a UTC midnight.
func FromOrdinal(n int) time.Time {
	return time.Unix(int64(n-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// YearsBetween returns the elapsed time from a to b in 365.25-day years.
func YearsBetween(a, b time.Time) float64 {
	return b.Sub(a).Seconds() / secondsPerDay / daysPerYear
}

// JSON marshaling for Date
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = NullDate()
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}
