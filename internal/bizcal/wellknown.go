package bizcal

import (
	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"

	"github.com/fintechforge/forge-api/internal/civiltime"
)

// wellKnown maps jurisdiction keys to published holiday definitions.
var wellKnown = map[string][]*cal.Holiday{
	"US": us.Holidays,
	"UK": gb.Holidays,
	"JP": jp.Holidays,
}

// WellKnown builds a pre-seeded calendar for a known jurisdiction,
// registering the observed holiday dates for every year in
// [firstYear, lastYear]. The second return value is false when the
// jurisdiction has no published holiday set.
func WellKnown(jurisdiction string, firstYear, lastYear int) (*Calendar, bool) {
	defs, ok := wellKnown[jurisdiction]
	if !ok {
		return nil, false
	}

	c := New(jurisdiction)
	for _, h := range defs {
		for year := firstYear; year <= lastYear; year++ {
			_, observed := h.Calc(year)
			if !observed.IsZero() {
				c.AddHoliday(civiltime.DateOf(observed))
			}
		}
	}
	return c, true
}
