package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly   Schedule = "monthly"
	Yearly    Schedule = "yearly"
	Weekly    Schedule = "weekly"
	Quarterly Schedule = "quarterly"
	OneTime   Schedule = "one-time"
)

// Recognized categories. The set is open: unrecognized values are kept
// and displayed as-is, never rejected.
const (
	CategoryEntertainment = "entertainment"
	CategoryProductivity  = "productivity"
	CategoryUtilities     = "utilities"
	CategoryHealth        = "health"
	CategoryEducation     = "education"
	CategoryOther         = "other"
)

// DefaultCurrency is applied when a record carries no currency code.
const DefaultCurrency = "GBP"

type (
	// Schedule is the billing cadence tag attached to a subscription.
	Schedule string

	// Date is a calendar date with no time-of-day semantics.
	Date struct {
		time.Time
	}

	// Subscription is a single tracked bill. The store assigns ID on
	// creation; the remaining fields are replaced wholesale on update.
	Subscription struct {
		ID       int64
		Name     string
		Price    float64
		Currency string
		DueDate  Date
		Category string
		Schedule Schedule
		Notes    string
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrMissingDueDate  = errors.New("missing due date")
	ErrInvalidSchedule = errors.New("invalid recurring schedule")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrNotesTooLong    = errors.New("notes too long (max 1000 characters)")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Truncate drops any time-of-day component, keeping the calendar day.
func Truncate(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Recognized reports whether s is one of the known schedule tags.
// Unrecognized tags are still accepted by MonthlyEquivalent (identity
// fallback), so this is a validation aid, not a gate.
func (s Schedule) Recognized() bool {
	switch s {
	case Monthly, Yearly, Weekly, Quarterly, OneTime:
		return true
	}
	return false
}

// Validate checks the invariants a subscription must satisfy before it
// reaches the store. Unknown categories pass; an empty category does not.
func (sub Subscription) Validate() error {
	if strings.TrimSpace(sub.Name) == "" {
		return ErrEmptyName
	}
	if len(sub.Name) > 200 {
		return ErrNameTooLong
	}
	if sub.Price < 0 {
		return ErrNegativePrice
	}
	if sub.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	if !sub.Schedule.Recognized() {
		return ErrInvalidSchedule
	}
	if strings.TrimSpace(sub.Category) == "" {
		return ErrEmptyCategory
	}
	if len(sub.Notes) > 1000 {
		return ErrNotesTooLong
	}
	return nil
}

// WithDefaults fills in the currency when absent.
func (sub Subscription) WithDefaults() Subscription {
	if strings.TrimSpace(sub.Currency) == "" {
		sub.Currency = DefaultCurrency
	}
	return sub
}
