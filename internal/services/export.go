package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"smartbills/internal/core"
)

var csvHeader = []string{"Name", "Price", "Currency", "Due Date", "Category", "Schedule", "Notes"}

// WriteCSV writes the subscriptions as a CSV document with a header
// row. Prices are raw values, not monthly equivalents.
func WriteCSV(w io.Writer, subs []core.Subscription) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, sub := range subs {
		record := []string{
			sub.Name,
			strconv.FormatFloat(sub.Price, 'f', 2, 64),
			sub.Currency,
			sub.DueDate.String(),
			sub.Category,
			string(sub.Schedule),
			sub.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReport writes a plain-text spending report: headline totals
// followed by one line per subscription, ordered as given.
func WriteReport(w io.Writer, subs []core.Subscription, today core.Date) error {
	summary := core.Aggregate(subs, today)
	monthly := core.Round2(summary.TotalMonthly)
	yearly := core.Round2(summary.TotalMonthly * 12)

	currency := core.DefaultCurrency
	if len(subs) > 0 && subs[0].Currency != "" {
		currency = subs[0].Currency
	}

	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("Subscription report (%s)\n", today.String())
	write("Subscriptions: %d\n", len(subs))
	write("Monthly total: %.2f %s\n", monthly, currency)
	write("Yearly total: %.2f %s\n", yearly, currency)
	write("Due in next %d days: %d\n", core.UpcomingWindowDays, len(summary.Upcoming))
	write("\n")

	for _, sub := range subs {
		write("- %s: %.2f %s %s, due %s (%s)\n",
			sub.Name, sub.Price, sub.Currency, string(sub.Schedule),
			sub.DueDate.String(), sub.Category)
	}

	return err
}
