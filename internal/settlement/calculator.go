package settlement

import (
	"github.com/fintechforge/forge-api/internal/civiltime"
)

// Calculator derives settlement dates: project the trade instant into
// the settlement timezone, then advance business days on that
// jurisdiction's calendar. Given a fixed holiday set the result is a
// pure function of the TradeTime and the day count, so it can be
// recomputed or cached freely.
type Calculator struct {
	registry *Registry
}

func NewCalculator(registry *Registry) *Calculator {
	return &Calculator{registry: registry}
}

// Registry exposes the calendar registry for administrative holiday
// registration.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

// SettlementDate computes the T+N settlement date for a trade.
// Negative day counts are treated as zero (same-day): the trade date
// itself is never subject to business-day requirements, so there is
// nothing for a negative count to roll back over.
func (c *Calculator) SettlementDate(tt TradeTime, settlementDays int) (civiltime.Date, error) {
	tradeDate, err := tt.TradeDate()
	if err != nil {
		return civiltime.Date{}, err
	}

	cal, err := c.registry.CalendarForTimezone(tt.SettlementTimezone)
	if err != nil {
		return civiltime.Date{}, err
	}

	if settlementDays < 0 {
		settlementDays = 0
	}
	return cal.AddBusinessDays(tradeDate, settlementDays)
}
