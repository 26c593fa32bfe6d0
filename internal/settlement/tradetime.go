package settlement

import (
	"time"

	"github.com/fintechforge/forge-api/internal/civiltime"
)

// TradeTime is the immutable record of when a trade happened: the
// authoritative UTC instant plus the two timezones that matter to it.
// Local times are always derived from the instant, never stored, so
// they cannot drift. A correction means constructing a new TradeTime.
type TradeTime struct {
	Timestamp          time.Time `json:"timestamp_utc"`
	ExecutionTimezone  string    `json:"execution_timezone"`
	SettlementTimezone string    `json:"settlement_timezone"`
}

// NewTradeTime records a trade executed at a local wall-clock moment in
// the execution timezone. The wall clock is resolved to UTC immediately
// (ambiguous and non-existent readings follow the civiltime policies)
// and both timezone identifiers are validated up front.
func NewTradeTime(local civiltime.CivilTime, executionTZ, settlementTZ string) (TradeTime, error) {
	instant, err := civiltime.ToInstant(local, executionTZ)
	if err != nil {
		return TradeTime{}, err
	}
	if _, err := civiltime.LoadLocation(settlementTZ); err != nil {
		return TradeTime{}, err
	}
	return TradeTime{
		Timestamp:          instant.UTC(),
		ExecutionTimezone:  executionTZ,
		SettlementTimezone: settlementTZ,
	}, nil
}

// TradeTimeFromInstant wraps an already-canonical instant, validating
// the timezone identifiers.
func TradeTimeFromInstant(instant time.Time, executionTZ, settlementTZ string) (TradeTime, error) {
	if _, err := civiltime.LoadLocation(executionTZ); err != nil {
		return TradeTime{}, err
	}
	if _, err := civiltime.LoadLocation(settlementTZ); err != nil {
		return TradeTime{}, err
	}
	return TradeTime{
		Timestamp:          instant.UTC(),
		ExecutionTimezone:  executionTZ,
		SettlementTimezone: settlementTZ,
	}, nil
}

// ExecutionLocal projects the instant into the execution timezone,
// returning the wall clock and the UTC offset in effect.
func (tt TradeTime) ExecutionLocal() (civiltime.CivilTime, int, error) {
	return civiltime.ToCivilTime(tt.Timestamp, tt.ExecutionTimezone)
}

// SettlementLocal projects the instant into the settlement timezone.
func (tt TradeTime) SettlementLocal() (civiltime.CivilTime, int, error) {
	return civiltime.ToCivilTime(tt.Timestamp, tt.SettlementTimezone)
}

// TradeDate is the civil date of the trade in the settlement timezone;
// the date business-day counting starts from.
func (tt TradeTime) TradeDate() (civiltime.Date, error) {
	return civiltime.DateIn(tt.Timestamp, tt.SettlementTimezone)
}
