package domain

import (
	"fmt"
	"time"
)

// Period restricts a query to a time window relative to now.
type Period string

const (
	PeriodLastWeek  Period = "last-week"
	PeriodLastMonth Period = "last-month"
	PeriodAll       Period = "all"
)

// ParsePeriod parses a boundary query value. Empty input defaults to all.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodLastWeek, PeriodLastMonth, PeriodAll:
		return Period(s), nil
	case "":
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Window returns the [start, end) interval the period covers relative
// to now. ok is false for PeriodAll, which applies no restriction.
func (p Period) Window(now time.Time) (start, end time.Time, ok bool) {
	switch p {
	case PeriodLastWeek:
		return now.AddDate(0, 0, -7), now, true
	case PeriodLastMonth:
		return now.AddDate(0, 0, -30), now, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
