package metering

import (
	"fmt"
	"time"
)

// Period identifies one calendar-month metering window. Counters are
// keyed by period so quotas reset implicitly at month boundaries.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the metering period containing the given instant,
// evaluated in UTC.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Year: u.Year(), Month: u.Month()}
}

// CurrentPeriod returns the metering period containing the current instant
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Key returns the canonical string form used as the storage key, e.g. "2026-08"
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns the first instant of the period in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the period that follows this one
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Contains reports whether the instant falls inside the period
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}
