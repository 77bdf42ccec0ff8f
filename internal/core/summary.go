package core

import "sort"

// UpcomingWindowDays is the size of the upcoming-bills window: a bill
// is upcoming when its due date falls within [today, today+30d].
const UpcomingWindowDays = 30

// Summary is the collection-level fold over a snapshot of subscriptions.
type Summary struct {
	// TotalMonthly sums the monthly-equivalent of every record.
	TotalMonthly float64
	// PerCategory sums RAW prices per category. The asymmetry with
	// TotalMonthly (raw here, normalized there) is inherited behavior
	// that downstream displays rely on; do not "fix" it.
	PerCategory map[string]float64
	// Upcoming holds the records due within the window, ascending by
	// due date, ties kept in input order.
	Upcoming []Subscription
}

// Aggregate folds a snapshot of subscriptions into a Summary. The
// caller supplies today's calendar date; re-running with the same
// snapshot and the same day reproduces identical output.
func Aggregate(records []Subscription, today Date) Summary {
	s := Summary{PerCategory: make(map[string]float64)}
	end := today.AddDays(UpcomingWindowDays)

	for _, r := range records {
		s.TotalMonthly += MonthlyEquivalent(r.Price, r.Schedule)
		s.PerCategory[r.Category] += r.Price

		if !r.DueDate.Before(today) && !r.DueDate.After(end) {
			s.Upcoming = append(s.Upcoming, r)
		}
	}

	sort.SliceStable(s.Upcoming, func(i, j int) bool {
		return s.Upcoming[i].DueDate.Before(s.Upcoming[j].DueDate)
	})

	return s
}

// TotalDue sums the raw prices of the upcoming bills, mirroring the
// payment-tracking view.
func (s Summary) TotalDue() float64 {
	var total float64
	for _, r := range s.Upcoming {
		total += r.Price
	}
	return total
}
