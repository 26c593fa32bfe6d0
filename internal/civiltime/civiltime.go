// Package civiltime converts between wall-clock times in named IANA
// timezones and absolute UTC instants. All functions are pure and safe
// for concurrent use.
package civiltime

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

// CivilTime is a wall-clock reading with no inherent absolute meaning.
// It only becomes an instant when resolved against a timezone.
type CivilTime struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Day        int        `json:"day"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	Second     int        `json:"second"`
	Nanosecond int        `json:"-"`
}

// Date returns the civil date portion.
func (ct CivilTime) Date() Date {
	return Date{Year: ct.Year, Month: ct.Month, Day: ct.Day}
}

func (ct CivilTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		ct.Year, ct.Month, ct.Day, ct.Hour, ct.Minute, ct.Second)
}

// after reports whether ct is a later wall-clock reading than other.
// Pure tuple comparison, no timezone involved.
func (ct CivilTime) after(other CivilTime) bool {
	a := [6]int{ct.Year, int(ct.Month), ct.Day, ct.Hour, ct.Minute, ct.Second}
	b := [6]int{other.Year, int(other.Month), other.Day, other.Hour, other.Minute, other.Second}
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return ct.Nanosecond > other.Nanosecond
}

// FromTime extracts the wall-clock reading of t in its own location.
func FromTime(t time.Time) CivilTime {
	return CivilTime{
		Year:       t.Year(),
		Month:      t.Month(),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// LoadLocation resolves an IANA timezone identifier, mapping lookup
// failures to ErrUnknownTimezone. Identifiers are never defaulted.
func LoadLocation(tzID string) (*time.Location, error) {
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, tzID)
	}
	return loc, nil
}

// ToInstant resolves a wall-clock time in the given timezone to a UTC
// instant.
//
// DST transitions make this a policy decision rather than a lookup:
//   - An ambiguous reading (repeated during a fall-back transition)
//     resolves to the earlier, pre-transition occurrence.
//   - A non-existent reading (skipped during a spring-forward
//     transition) is normalized forward by the size of the gap, i.e.
//     the first valid instant at or after the nominal wall clock.
//
// Both choices are deterministic regardless of how the platform's
// timezone database breaks ties.
func ToInstant(ct CivilTime, tzID string) (time.Time, error) {
	loc, err := LoadLocation(tzID)
	if err != nil {
		return time.Time{}, err
	}

	// Seed: the reading interpreted as if it were UTC. The true instant
	// differs from the seed by exactly the zone offset in effect, so
	// sampling offsets around the seed covers both sides of any
	// transition (offsets never exceed +-14h, sample well past that).
	seed := time.Date(ct.Year, ct.Month, ct.Day, ct.Hour, ct.Minute, ct.Second, ct.Nanosecond, time.UTC)

	offsets := make(map[int]struct{}, 3)
	for _, dt := range []time.Duration{-30 * time.Hour, 0, 30 * time.Hour} {
		_, off := seed.Add(dt).In(loc).Zone()
		offsets[off] = struct{}{}
	}

	var valid []time.Time
	candidates := make([]time.Time, 0, len(offsets))
	for off := range offsets {
		cand := seed.Add(-time.Duration(off) * time.Second)
		candidates = append(candidates, cand)
		if FromTime(cand.In(loc)) == ct {
			valid = append(valid, cand)
		}
	}

	if len(valid) > 0 {
		// Unique or ambiguous: earliest instant is the pre-transition
		// occurrence.
		earliest := valid[0]
		for _, v := range valid[1:] {
			if v.Before(earliest) {
				earliest = v
			}
		}
		return earliest, nil
	}

	// Gap: no offset reproduces the requested wall clock. Pick the
	// earliest candidate whose normalized wall clock lands at or after
	// the nominal reading; that shifts forward by exactly the gap size.
	var result time.Time
	for _, cand := range candidates {
		wall := FromTime(cand.In(loc))
		if wall == ct || wall.after(ct) {
			if result.IsZero() || cand.Before(result) {
				result = cand
			}
		}
	}
	if result.IsZero() {
		// Unreachable for real tzdata; guard against pathological zones.
		return seed, nil
	}
	return result, nil
}

// ToCivilTime projects an instant into the given timezone, returning
// the wall-clock reading and the UTC offset (seconds east of UTC) in
// effect at that instant. Total: every instant has exactly one civil
// representation per timezone.
func ToCivilTime(instant time.Time, tzID string) (CivilTime, int, error) {
	loc, err := LoadLocation(tzID)
	if err != nil {
		return CivilTime{}, 0, err
	}
	local := instant.In(loc)
	_, offset := local.Zone()
	return FromTime(local), offset, nil
}

// DateIn returns the civil date of an instant in the given timezone.
func DateIn(instant time.Time, tzID string) (Date, error) {
	ct, _, err := ToCivilTime(instant, tzID)
	if err != nil {
		return Date{}, err
	}
	return ct.Date(), nil
}
