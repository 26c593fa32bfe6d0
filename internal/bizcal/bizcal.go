// Package bizcal implements per-jurisdiction business-day calendars:
// a configurable weekend-day set plus a growable holiday set, with
// bounded business-day advancement on top.
package bizcal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fintechforge/forge-api/internal/civiltime"
)

var ErrNoBusinessDayFound = errors.New("no business day found")

// searchLimit bounds the next-business-day scan. A real calendar never
// has a year-long run of non-business days; hitting the limit means the
// calendar is misconfigured.
const searchLimit = 366

// Calendar answers business-day questions for one jurisdiction.
// Reads are safe for unlimited concurrency; holiday registration is
// serialized against them with a read-write lock.
type Calendar struct {
	jurisdiction string
	weekend      map[time.Weekday]struct{}

	mu       sync.RWMutex
	holidays map[civiltime.Date]struct{}
}

// New creates a calendar with the default Saturday/Sunday weekend and
// no holidays.
func New(jurisdiction string) *Calendar {
	return NewWithWeekend(jurisdiction, time.Saturday, time.Sunday)
}

// NewWithWeekend creates a calendar with an explicit weekend-day set,
// e.g. Friday/Saturday for Gulf-region jurisdictions.
func NewWithWeekend(jurisdiction string, weekend ...time.Weekday) *Calendar {
	w := make(map[time.Weekday]struct{}, len(weekend))
	for _, d := range weekend {
		w[d] = struct{}{}
	}
	return &Calendar{
		jurisdiction: jurisdiction,
		weekend:      w,
		holidays:     make(map[civiltime.Date]struct{}),
	}
}

// Jurisdiction returns the name the calendar was registered under.
func (c *Calendar) Jurisdiction() string {
	return c.jurisdiction
}

// AddHoliday registers a holiday. Idempotent; no validation of the
// date beyond it being a date.
func (c *Calendar) AddHoliday(d civiltime.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays[d] = struct{}{}
}

// AddHolidays registers several holidays in one lock acquisition.
func (c *Calendar) AddHolidays(dates ...civiltime.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		c.holidays[d] = struct{}{}
	}
}

// IsHoliday reports whether d is a registered holiday.
func (c *Calendar) IsHoliday(d civiltime.Date) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.holidays[d]
	return ok
}

// Holidays returns a sorted snapshot of the registered holidays.
func (c *Calendar) Holidays() []civiltime.Date {
	c.mu.RLock()
	out := make([]civiltime.Date, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// IsBusinessDay reports whether d is neither a weekend day nor a
// holiday in this jurisdiction.
func (c *Calendar) IsBusinessDay(d civiltime.Date) bool {
	if _, weekend := c.weekend[d.Weekday()]; weekend {
		return false
	}
	return !c.IsHoliday(d)
}

// NextBusinessDay returns the smallest date strictly after d that is a
// business day. Fails with ErrNoBusinessDayFound if no business day
// exists within the search bound, which indicates a misconfigured
// calendar rather than a legitimate answer.
func (c *Calendar) NextBusinessDay(d civiltime.Date) (civiltime.Date, error) {
	current := d
	for i := 0; i < searchLimit; i++ {
		current = current.AddDays(1)
		if c.IsBusinessDay(current) {
			return current, nil
		}
	}
	return civiltime.Date{}, fmt.Errorf("%w: no business day within %d days of %s in %s",
		ErrNoBusinessDayFound, searchLimit, d, c.jurisdiction)
}

// AddBusinessDays advances d by n business days. For n <= 0 the date
// is returned unchanged: the start date is never counted and carries
// no business-day requirement of its own.
func (c *Calendar) AddBusinessDays(d civiltime.Date, n int) (civiltime.Date, error) {
	result := d
	for i := 0; i < n; i++ {
		next, err := c.NextBusinessDay(result)
		if err != nil {
			return civiltime.Date{}, err
		}
		result = next
	}
	return result, nil
}
