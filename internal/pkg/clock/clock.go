// Package clock pins "now" and calendar dates to the organisation time zone.
package clock

import "time"

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoned struct {
	loc *time.Location
}

func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return zoned{loc: loc}
}

func (z zoned) Now() time.Time            { return time.Now().In(z.loc) }
func (z zoned) Location() *time.Location { return z.loc }

// Fixed is a manually advanced clock for tests and replays.
type Fixed struct {
	T   time.Time
	Loc *time.Location
}

func (f *Fixed) Now() time.Time { return f.T.In(f.Location()) }

func (f *Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}

func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// Today returns the calendar date of now in the clock's zone.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// Date parses a YYYY-MM-DD string as midnight UTC, the form stored in DATE columns.
func Date(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
