// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing renewal due
// dates. Each billing schedule has its own advancer that encapsulates
// the logic for computing the next due date after a renewal.
package services

import (
	"fmt"
	"time"

	"smartbills/internal/core"
)

// DueDateAdvancer is the strategy interface for rolling a due date
// forward one billing period.
type DueDateAdvancer interface {
	// Next returns the due date of the following billing period.
	// The day of month is clamped when the target month is shorter,
	// so a Jan 31 monthly renewal lands on Feb 28/29.
	Next(due core.Date) core.Date
}

// MonthlyAdvancer implements DueDateAdvancer for monthly schedules.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(due core.Date) core.Date {
	return addMonthsClamped(due, 1)
}

// QuarterlyAdvancer implements DueDateAdvancer for quarterly schedules.
type QuarterlyAdvancer struct{}

func (QuarterlyAdvancer) Next(due core.Date) core.Date {
	return addMonthsClamped(due, 3)
}

// YearlyAdvancer implements DueDateAdvancer for yearly schedules.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(due core.Date) core.Date {
	return addMonthsClamped(due, 12)
}

// WeeklyAdvancer implements DueDateAdvancer for weekly schedules.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(due core.Date) core.Date {
	return due.AddDays(7)
}

// addMonthsClamped adds n months keeping the day of month, clamped to
// the last day when the target month is shorter. Plain AddDate would
// overflow Jan 31 into March.
func addMonthsClamped(due core.Date, n int) core.Date {
	t := due.Time
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// advanceStrategies maps billing schedules to their advancers. One-time
// subscriptions have no entry: they never renew.
var advanceStrategies = map[core.Schedule]DueDateAdvancer{
	core.Monthly:   MonthlyAdvancer{},
	core.Quarterly: QuarterlyAdvancer{},
	core.Yearly:    YearlyAdvancer{},
	core.Weekly:    WeeklyAdvancer{},
}

// GetDueDateAdvancer returns the advancer for a schedule. Returns an
// error for one-time and unknown schedules.
func GetDueDateAdvancer(schedule core.Schedule) (DueDateAdvancer, error) {
	advancer, ok := advanceStrategies[schedule]
	if !ok {
		return nil, fmt.Errorf("schedule %q does not renew", schedule)
	}
	return advancer, nil
}

// RegisterDueDateAdvancer registers a custom advancer for a new
// schedule without modifying the existing strategies.
func RegisterDueDateAdvancer(schedule core.Schedule, advancer DueDateAdvancer) {
	advanceStrategies[schedule] = advancer
}
