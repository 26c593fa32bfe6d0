package settlement

import (
	"strings"
	"sync"
	"time"

	"github.com/fintechforge/forge-api/internal/bizcal"
	"github.com/fintechforge/forge-api/internal/civiltime"
)

// tzJurisdictions maps settlement timezones to the market jurisdiction
// whose calendar governs them. A jurisdiction is not a timezone: all US
// markets settle on the same calendar regardless of the zone the trade
// was booked in.
var tzJurisdictions = map[string]string{
	"America/New_York": "US",
	"America/Chicago":  "US",
	"Europe/London":    "UK",
	"Asia/Tokyo":       "JP",
}

// Registry owns the per-jurisdiction business calendars. Well-known
// jurisdictions are seeded with published holidays at construction;
// anything else gets a default Sat/Sun calendar created lazily on
// first use and kept for the life of the process.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]*bizcal.Calendar
}

// NewRegistry builds a registry seeded with the US, UK and JP holiday
// calendars, covering a window of years around the current one.
func NewRegistry() *Registry {
	firstYear := time.Now().Year() - 3
	lastYear := time.Now().Year() + 3
	return NewRegistryForYears(firstYear, lastYear)
}

// NewRegistryForYears seeds well-known holidays for an explicit year
// range. Tests use fixed ranges for reproducibility.
func NewRegistryForYears(firstYear, lastYear int) *Registry {
	r := &Registry{calendars: make(map[string]*bizcal.Calendar)}
	for jurisdiction := range map[string]struct{}{"US": {}, "UK": {}, "JP": {}} {
		if c, ok := bizcal.WellKnown(jurisdiction, firstYear, lastYear); ok {
			r.calendars[jurisdiction] = c
		}
	}
	return r
}

// JurisdictionFor derives the jurisdiction key for a settlement
// timezone: an explicit mapping when one exists, otherwise the
// trailing segment of the identifier ("Australia/Sydney" -> "Sydney").
func JurisdictionFor(tzID string) string {
	if j, ok := tzJurisdictions[tzID]; ok {
		return j
	}
	if i := strings.LastIndex(tzID, "/"); i >= 0 {
		return tzID[i+1:]
	}
	return tzID
}

// CalendarForTimezone returns the calendar governing settlement in the
// given timezone, creating a default one for unknown jurisdictions.
// The timezone identifier itself must be valid; it is never defaulted.
func (r *Registry) CalendarForTimezone(tzID string) (*bizcal.Calendar, error) {
	if _, err := civiltime.LoadLocation(tzID); err != nil {
		return nil, err
	}
	return r.Calendar(JurisdictionFor(tzID)), nil
}

// Calendar returns the calendar for a jurisdiction key, creating a
// default Sat/Sun calendar on first use.
func (r *Registry) Calendar(jurisdiction string) *bizcal.Calendar {
	r.mu.RLock()
	c, ok := r.calendars[jurisdiction]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.calendars[jurisdiction]; ok {
		return c
	}
	c = bizcal.New(jurisdiction)
	r.calendars[jurisdiction] = c
	return c
}

// Register installs a calendar under a jurisdiction key, replacing any
// existing one. Used to configure non-default weekend sets.
func (r *Registry) Register(c *bizcal.Calendar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars[c.Jurisdiction()] = c
}

// Jurisdictions returns the keys currently registered.
func (r *Registry) Jurisdictions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.calendars))
	for j := range r.calendars {
		out = append(out, j)
	}
	return out
}
