// Package fuzzydate models calendar dates known to year, year-month or
// year-month-day precision and their "YYYY[-MM[-DD]]" string form.
package fuzzydate

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is returned when a string is not a fuzzy date.
var ErrInvalid = errors.New("invalid fuzzy date")

// Precision describes how much of a Date is known.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// Date is a possibly partial calendar date. A zero Year means "no date";
// a zero Month means only the year is known; a zero Day means the day is unknown.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Build assembles a Date from optional components (0 = unknown). Without a year
// the result is the zero Date, and the day is dropped when the month is unknown.
func Build(year, month, day int) Date {
	if year == 0 {
		return Date{}
	}
	if month == 0 {
		return Date{Year: year}
	}
	return Date{Year: year, Month: month, Day: day}
}

// FromTime returns the full-precision Date of t in its own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Parse reads "YYYY", "YYYY-MM" or "YYYY-MM-DD". The empty string yields the zero Date.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		nums[i] = n
	}

	return Build(nums[0], nums[1], nums[2]), nil
}

// ParseValid is Parse for user and AI input: every component written must
// exist on the calendar, so "2024-13", "2024-00" and "2023-02-29" are rejected.
func ParseValid(s string) (Date, error) {
	s = strings.TrimSpace(s)
	d, err := Parse(s)
	if err != nil || s == "" {
		return d, err
	}
	written := strings.Count(s, "-") + 1
	if int(d.Precision()) != written || !d.Valid() {
		return Date{}, fmt.Errorf("%w: %q is not on the calendar", ErrInvalid, s)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether no date is set.
func (d Date) IsZero() bool {
	return d.Year == 0
}

// Precision returns how much of the date is known.
func (d Date) Precision() Precision {
	switch {
	case d.Year == 0:
		return PrecisionNone
	case d.Month == 0:
		return PrecisionYear
	case d.Day == 0:
		return PrecisionMonth
	default:
		return PrecisionDay
	}
}

// String renders the date with zero-padded month and day, or "" for no date.
func (d Date) String() string {
	switch d.Precision() {
	case PrecisionNone:
		return ""
	case PrecisionYear:
		return strconv.Itoa(d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Time maps the date to the earliest instant it covers in loc: a year maps to
// Jan 1 and a year-month to the 1st. It reports false for the zero Date and for
// dates that do not exist on the calendar.
func (d Date) Time(loc *time.Location) (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	if month < 1 || month > 12 || day < 1 || day > DaysInMonth(d.Year, month) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// Valid reports whether the date maps to a calendar instant.
func (d Date) Valid() bool {
	_, ok := d.Time(time.UTC)
	return ok
}

// Compare orders dates component-wise; unknown components sort first.
func Compare(a, b Date) int {
	for _, p := range [][2]int{{a.Year, b.Year}, {a.Month, b.Month}, {a.Day, b.Day}} {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// DaysInMonth returns the number of days in month of year, leap years included.
// With the year or month unknown the bound is 31.
func DaysInMonth(year, month int) int {
	if year == 0 || month < 1 || month > 12 {
		return 31
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clears a day that no longer fits after the year or month changed.
func ClampDay(d Date) Date {
	if d.Day > DaysInMonth(d.Year, d.Month) {
		d.Day = 0
	}
	return d
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the zero Date as NULL.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("fuzzydate: cannot scan %T", src)
	}
}
