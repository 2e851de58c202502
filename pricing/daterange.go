package pricing

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange  = errors.New("pricing: check-out must not be before check-in")
	ErrInvalidPeriod = errors.New("pricing: period end must not be before start")
)

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Stay is a half-open range of nights [CheckIn, CheckOut).
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay normalizes both ends to days. Equal ends make an empty stay.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if checkIn.IsZero() || checkOut.IsZero() || s.CheckOut.Before(s.CheckIn) {
		return Stay{}, ErrInvalidRange
	}
	return s, nil
}

func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// EachNight returns the date of every night in the stay, in order.
func (s Stay) EachNight() []time.Time {
	n := s.Nights()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.CheckIn.AddDate(0, 0, i))
	}
	return out
}

// Interval is a closed range of days [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: Day(start), End: Day(end)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() || iv.End.Before(iv.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (iv Interval) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(iv.Start) && !day.After(iv.End)
}

func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !other.Start.After(iv.End)
}
