package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintechforge/forge-api/internal/bizcal"
	"github.com/fintechforge/forge-api/internal/civiltime"
)

func newTestCalculator() *Calculator {
	return NewCalculator(NewRegistryForYears(2023, 2024))
}

func mustTradeTime(t *testing.T, local civiltime.CivilTime, execTZ, settleTZ string) TradeTime {
	t.Helper()
	tt, err := NewTradeTime(local, execTZ, settleTZ)
	require.NoError(t, err)
	return tt
}

func TestNewTradeTimeResolvesToUTC(t *testing.T) {
	// Friday 09:00 New York in December is 14:00 UTC.
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 9},
		"America/New_York", "America/New_York")

	assert.Equal(t, time.Date(2023, time.December, 15, 14, 0, 0, 0, time.UTC), tt.Timestamp)
	assert.Equal(t, time.UTC, tt.Timestamp.Location())
}

func TestNewTradeTimeRejectsUnknownTimezones(t *testing.T) {
	local := civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 9}

	_, err := NewTradeTime(local, "Bad/Zone", "Asia/Tokyo")
	assert.ErrorIs(t, err, civiltime.ErrUnknownTimezone)

	_, err = NewTradeTime(local, "Europe/London", "Bad/Zone")
	assert.ErrorIs(t, err, civiltime.ErrUnknownTimezone)
}

func TestTradeTimeProjections(t *testing.T) {
	// 23:30 Friday London projects to 08:30 Saturday Tokyo.
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 23, Minute: 30},
		"Europe/London", "Asia/Tokyo")

	execLocal, execOffset, err := tt.ExecutionLocal()
	require.NoError(t, err)
	assert.Equal(t, civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 23, Minute: 30}, execLocal)
	assert.Equal(t, 0, execOffset)

	settleLocal, settleOffset, err := tt.SettlementLocal()
	require.NoError(t, err)
	assert.Equal(t, civiltime.CivilTime{Year: 2023, Month: time.December, Day: 16, Hour: 8, Minute: 30}, settleLocal)
	assert.Equal(t, 9*3600, settleOffset)

	tradeDate, err := tt.TradeDate()
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 16), tradeDate)
}

func TestSettlementDateSkipsWeekend(t *testing.T) {
	// Friday 2023-12-15 09:00 New York, T+2 in New York: the weekend is
	// skipped, settling Tuesday 2023-12-19.
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 9},
		"America/New_York", "America/New_York")

	got, err := calc.SettlementDate(tt, 2)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 19), got)
}

func TestSettlementDateCrossTimezoneTradeDate(t *testing.T) {
	// Friday 2023-12-15 23:30 London is already Saturday 2023-12-16 in
	// Tokyo, so T+2 counts from the Tokyo Saturday: Tuesday 2023-12-19.
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 23, Minute: 30},
		"Europe/London", "Asia/Tokyo")

	got, err := calc.SettlementDate(tt, 2)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 19), got)
}

func TestSettlementDateSkipsHolidays(t *testing.T) {
	// Friday 2023-12-22 14:00 London, T+2 in London with Christmas and
	// Boxing Day registered. Advancing one business day at a time:
	// Sat/Sun weekend, Mon/Tue holidays, so the first business day is
	// Wednesday 2023-12-27 and the second is Thursday 2023-12-28.
	calc := newTestCalculator()
	uk := calc.Registry().Calendar("UK")
	uk.AddHolidays(
		civiltime.NewDate(2023, time.December, 25),
		civiltime.NewDate(2023, time.December, 26),
	)

	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 22, Hour: 14},
		"Europe/London", "Europe/London")

	one, err := calc.SettlementDate(tt, 1)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 27), one)

	two, err := calc.SettlementDate(tt, 2)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 28), two)
}

func TestSettlementDateZeroDaysCrossesYearBoundary(t *testing.T) {
	// Sunday 2023-12-31 23:30 London is Monday 2024-01-01 in Tokyo.
	// With zero settlement days the projected civil date is returned
	// as-is, holiday or not.
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 31, Hour: 23, Minute: 30},
		"Europe/London", "Asia/Tokyo")

	got, err := calc.SettlementDate(tt, 0)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2024, time.January, 1), got)
}

func TestSettlementDateNegativeDaysTreatedAsZero(t *testing.T) {
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 9},
		"America/New_York", "America/New_York")

	zero, err := calc.SettlementDate(tt, 0)
	require.NoError(t, err)
	negative, err := calc.SettlementDate(tt, -3)
	require.NoError(t, err)
	assert.Equal(t, zero, negative)
}

func TestSettlementDateUnknownJurisdictionDefaults(t *testing.T) {
	// Sydney has no pre-registered calendar; a default Sat/Sun calendar
	// is created on demand. Friday 2023-12-15 10:00 Sydney T+2 settles
	// Tuesday 2023-12-19.
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 10},
		"Australia/Sydney", "Australia/Sydney")

	got, err := calc.SettlementDate(tt, 2)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 19), got)
}

func TestSettlementDatePureGivenFixedCalendarState(t *testing.T) {
	calc := newTestCalculator()
	tt := mustTradeTime(t,
		civiltime.CivilTime{Year: 2023, Month: time.December, Day: 15, Hour: 9},
		"America/New_York", "America/New_York")

	first, err := calc.SettlementDate(tt, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := calc.SettlementDate(tt, 2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRegistryJurisdictionMapping(t *testing.T) {
	assert.Equal(t, "US", JurisdictionFor("America/New_York"))
	assert.Equal(t, "US", JurisdictionFor("America/Chicago"))
	assert.Equal(t, "UK", JurisdictionFor("Europe/London"))
	assert.Equal(t, "JP", JurisdictionFor("Asia/Tokyo"))
	assert.Equal(t, "Sydney", JurisdictionFor("Australia/Sydney"))
	assert.Equal(t, "UTC", JurisdictionFor("UTC"))
}

func TestRegistryHolidayIndependence(t *testing.T) {
	// Registering a holiday in one jurisdiction never bleeds into
	// another's settlement results.
	registry := NewRegistryForYears(2023, 2024)
	day := civiltime.NewDate(2023, time.December, 20) // Wednesday

	registry.Calendar("UK").AddHoliday(day)

	assert.False(t, registry.Calendar("UK").IsBusinessDay(day))
	assert.True(t, registry.Calendar("US").IsBusinessDay(day))
	assert.True(t, registry.Calendar("JP").IsBusinessDay(day))
}

func TestRegistryLazyCreationIsStable(t *testing.T) {
	registry := NewRegistryForYears(2023, 2024)

	first, err := registry.CalendarForTimezone("Australia/Sydney")
	require.NoError(t, err)
	second, err := registry.CalendarForTimezone("Australia/Sydney")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = registry.CalendarForTimezone("Not/A_Zone")
	assert.ErrorIs(t, err, civiltime.ErrUnknownTimezone)
}

func TestRegistryRegisterCustomWeekend(t *testing.T) {
	registry := NewRegistryForYears(2023, 2024)
	registry.Register(bizcal.NewWithWeekend("Dubai", time.Friday, time.Saturday))

	c := registry.Calendar("Dubai")
	assert.False(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 15))) // Friday
	assert.True(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 17)))  // Sunday
}

func TestSeededWellKnownHolidays(t *testing.T) {
	registry := NewRegistryForYears(2023, 2024)

	assert.True(t, registry.Calendar("UK").IsHoliday(civiltime.NewDate(2023, time.December, 25)))
	assert.True(t, registry.Calendar("UK").IsHoliday(civiltime.NewDate(2023, time.December, 26)))
	assert.True(t, registry.Calendar("US").IsHoliday(civiltime.NewDate(2024, time.January, 1)))
	assert.True(t, registry.Calendar("JP").IsHoliday(civiltime.NewDate(2024, time.January, 1)))
}
