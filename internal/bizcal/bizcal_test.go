package bizcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintechforge/forge-api/internal/civiltime"
)

func TestIsBusinessDayDefaultWeekend(t *testing.T) {
	c := New("US")

	assert.True(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 18)))  // Monday
	assert.False(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 16))) // Saturday
	assert.False(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 17))) // Sunday
}

func TestIsBusinessDayCustomWeekend(t *testing.T) {
	// Gulf-region weekend: Friday and Saturday.
	c := NewWithWeekend("AE", time.Friday, time.Saturday)

	assert.False(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 15))) // Friday
	assert.False(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 16))) // Saturday
	assert.True(t, c.IsBusinessDay(civiltime.NewDate(2023, time.December, 17)))  // Sunday
}

func TestHolidays(t *testing.T) {
	c := New("UK")
	christmas := civiltime.NewDate(2023, time.December, 25)

	assert.True(t, c.IsBusinessDay(christmas)) // Monday, not yet registered

	c.AddHoliday(christmas)
	assert.True(t, c.IsHoliday(christmas))
	assert.False(t, c.IsBusinessDay(christmas))

	// Idempotent insert.
	c.AddHoliday(christmas)
	assert.Len(t, c.Holidays(), 1)

	c.AddHolidays(civiltime.NewDate(2023, time.December, 26), civiltime.NewDate(2024, time.January, 1))
	holidays := c.Holidays()
	require.Len(t, holidays, 3)
	assert.Equal(t, christmas, holidays[0]) // sorted snapshot
}

func TestJurisdictionIndependence(t *testing.T) {
	uk := New("UK")
	us := New("US")
	boxingDay := civiltime.NewDate(2023, time.December, 26) // Tuesday

	uk.AddHoliday(boxingDay)

	assert.False(t, uk.IsBusinessDay(boxingDay))
	assert.True(t, us.IsBusinessDay(boxingDay))
}

func TestNextBusinessDay(t *testing.T) {
	c := New("US")

	// Friday advances over the weekend to Monday.
	next, err := c.NextBusinessDay(civiltime.NewDate(2023, time.December, 15))
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 18), next)

	// Thursday advances to Friday.
	next, err = c.NextBusinessDay(civiltime.NewDate(2023, time.December, 14))
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 15), next)
}

func TestNextBusinessDaySkipsHolidays(t *testing.T) {
	c := New("UK")
	c.AddHolidays(civiltime.NewDate(2023, time.December, 25), civiltime.NewDate(2023, time.December, 26))

	// Friday before Christmas: Mon/Tue are holidays, so Wednesday.
	next, err := c.NextBusinessDay(civiltime.NewDate(2023, time.December, 22))
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 27), next)
}

func TestNextBusinessDayBoundedSearch(t *testing.T) {
	// Every day is a weekend day: the scan must fail rather than spin.
	c := NewWithWeekend("broken",
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday)

	_, err := c.NextBusinessDay(civiltime.NewDate(2023, time.December, 15))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBusinessDayFound)
}

func TestAddBusinessDays(t *testing.T) {
	c := New("US")
	friday := civiltime.NewDate(2023, time.December, 15)

	// Zero and negative counts return the start date unchanged, even
	// when it is not itself a business day.
	for _, n := range []int{0, -1, -5} {
		got, err := c.AddBusinessDays(civiltime.NewDate(2023, time.December, 16), n)
		require.NoError(t, err)
		assert.Equal(t, civiltime.NewDate(2023, time.December, 16), got)
	}

	// T+2 from Friday skips the weekend.
	got, err := c.AddBusinessDays(friday, 2)
	require.NoError(t, err)
	assert.Equal(t, civiltime.NewDate(2023, time.December, 19), got)
}

func TestAddBusinessDaysMonotonic(t *testing.T) {
	c := New("US")
	c.AddHoliday(civiltime.NewDate(2023, time.December, 25))
	start := civiltime.NewDate(2023, time.December, 13)

	prev := start
	for n := 1; n <= 10; n++ {
		got, err := c.AddBusinessDays(start, n)
		require.NoError(t, err)
		assert.True(t, got.After(prev), "n=%d: %s not after %s", n, got, prev)
		prev = got
	}
}

func TestWellKnownCalendars(t *testing.T) {
	uk, ok := WellKnown("UK", 2023, 2024)
	require.True(t, ok)
	assert.Equal(t, "UK", uk.Jurisdiction())
	assert.True(t, uk.IsHoliday(civiltime.NewDate(2023, time.December, 25)))
	assert.True(t, uk.IsHoliday(civiltime.NewDate(2023, time.December, 26)))

	us, ok := WellKnown("US", 2023, 2024)
	require.True(t, ok)
	assert.True(t, us.IsHoliday(civiltime.NewDate(2024, time.January, 1)))
	// Boxing Day is a UK holiday only.
	assert.False(t, us.IsHoliday(civiltime.NewDate(2023, time.December, 26)))

	_, ok = WellKnown("ZZ", 2023, 2024)
	assert.False(t, ok)
}

func TestConcurrentReadsDuringRegistration(t *testing.T) {
	c := New("US")
	day := civiltime.NewDate(2023, time.December, 18)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			c.AddHoliday(day.AddDays(i))
		}
	}()
	for i := 0; i < 1000; i++ {
		c.IsBusinessDay(day.AddDays(i % 50))
	}
	<-done
}
