package pricing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var ErrOverlap = errors.New("pricing: period overlaps an existing period")

// OverlapError names the stored period a new one collides with.
type OverlapError struct {
	RoomID    uint
	Requested Interval
	Existing  Period
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("pricing: room %d period %s..%s overlaps period %d (%s..%s)",
		e.RoomID,
		e.Requested.Start.Format(time.DateOnly), e.Requested.End.Format(time.DateOnly),
		e.Existing.ID,
		e.Existing.Start.Format(time.DateOnly), e.Existing.End.Format(time.DateOnly))
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// Period prices every night of a closed interval for one room.
type Period struct {
	ID uint
	Interval
	Price               decimal.Decimal
	AvailableForBooking bool
	Promotional         bool
	Discount            Discount
}

// PricedNight is what the calendar knows about one night.
type PricedNight struct {
	Date        time.Time
	PeriodID    uint
	Price       decimal.Decimal
	Available   bool
	Promotional bool
	Discount    Discount
}

// Calendar holds the non-overlapping periods of one room, ordered by start.
type Calendar struct {
	RoomID  uint
	periods []Period
}

func NewCalendar(roomID uint) *Calendar {
	return &Calendar{RoomID: roomID}
}

// LoadCalendar builds a calendar from stored periods in the given order. A
// period that is malformed or overlaps an earlier one is left out and reported
// in rejected, keyed by period id.
func LoadCalendar(roomID uint, periods []Period) (c *Calendar, rejected map[uint]error) {
	c = NewCalendar(roomID)
	for _, p := range periods {
		if err := c.Insert(p); err != nil {
			if rejected == nil {
				rejected = make(map[uint]error)
			}
			rejected[p.ID] = err
		}
	}
	return c, rejected
}

// Insert adds p unless it is malformed or overlaps a stored period.
func (c *Calendar) Insert(p Period) error {
	p.Start, p.End = Day(p.Start), Day(p.End)
	if err := p.Interval.Validate(); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidPeriod)
	}
	if existing, ok := c.conflict(p.Interval); ok {
		return &OverlapError{RoomID: c.RoomID, Requested: p.Interval, Existing: existing}
	}
	idx := sort.Search(len(c.periods), func(i int) bool {
		return c.periods[i].Start.After(p.Start)
	})
	c.periods = append(c.periods, Period{})
	copy(c.periods[idx+1:], c.periods[idx:])
	c.periods[idx] = p
	return nil
}

func (c *Calendar) conflict(iv Interval) (Period, bool) {
	for _, existing := range c.periods {
		if existing.Overlaps(iv) {
			return existing, true
		}
	}
	return Period{}, false
}

// Lookup returns the night covering day, or false when day falls in a gap.
func (c *Calendar) Lookup(day time.Time) (PricedNight, bool) {
	day = Day(day)
	// first period starting after day; the candidate is the one before it
	idx := sort.Search(len(c.periods), func(i int) bool {
		return c.periods[i].Start.After(day)
	})
	if idx == 0 {
		return PricedNight{}, false
	}
	p := c.periods[idx-1]
	if !p.Contains(day) {
		return PricedNight{}, false
	}
	return PricedNight{
		Date:        day,
		PeriodID:    p.ID,
		Price:       p.Price,
		Available:   p.AvailableForBooking,
		Promotional: p.Promotional,
		Discount:    p.Discount,
	}, true
}

// NightLookup is one entry of a range lookup; Covered is false for a gap.
type NightLookup struct {
	PricedNight
	Covered bool
}

// Nights walks the stay night by night. fully is true only when every night is
// covered by a period open for booking.
func (c *Calendar) Nights(stay Stay) (nights []NightLookup, fully bool) {
	fully = true
	for _, day := range stay.EachNight() {
		night, ok := c.Lookup(day)
		if !ok {
			night = PricedNight{Date: day}
		}
		if !ok || !night.Available {
			fully = false
		}
		nights = append(nights, NightLookup{PricedNight: night, Covered: ok})
	}
	return nights, fully
}
