package services

import (
	"strings"
	"testing"

	"smartbills/internal/core"
)

func exportFixture() []core.Subscription {
	return []core.Subscription{
		{
			ID:       1,
			Name:     "Netflix",
			Price:    15.99,
			Currency: "GBP",
			DueDate:  core.NewDate(2024, 6, 15),
			Category: "entertainment",
			Schedule: core.Monthly,
			Notes:    "family plan",
		},
		{
			ID:       2,
			Name:     "Insurance",
			Price:    240,
			Currency: "GBP",
			DueDate:  core.NewDate(2025, 1, 1),
			Category: "utilities",
			Schedule: core.Yearly,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, exportFixture()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "Name,Price,Currency,Due Date,Category,Schedule,Notes\n" +
		"Netflix,15.99,GBP,2024-06-15,entertainment,monthly,family plan\n" +
		"Insurance,240.00,GBP,2025-01-01,utilities,yearly,\n"
	if sb.String() != want {
		t.Errorf("WriteCSV output:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	subs := []core.Subscription{
		{
			Name:     "Dove, The Magazine",
			Price:    5,
			Currency: "GBP",
			DueDate:  core.NewDate(2024, 6, 1),
			Category: "other",
			Schedule: core.Monthly,
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, subs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(sb.String(), `"Dove, The Magazine"`) {
		t.Errorf("WriteCSV should quote fields containing commas, got:\n%s", sb.String())
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if sb.String() != "Name,Price,Currency,Due Date,Category,Schedule,Notes\n" {
		t.Errorf("WriteCSV with no rows should emit only the header, got:\n%s", sb.String())
	}
}

func TestWriteReport(t *testing.T) {
	var sb strings.Builder
	today := core.NewDate(2024, 6, 1)
	if err := WriteReport(&sb, exportFixture(), today); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	got := sb.String()

	// 15.99 monthly plus 240 yearly normalizes to 35.99 a month.
	for _, want := range []string{
		"Subscription report (2024-06-01)",
		"Subscriptions: 2",
		"Monthly total: 35.99 GBP",
		"Yearly total: 431.88 GBP",
		"Due in next 30 days: 1",
		"- Netflix: 15.99 GBP monthly, due 2024-06-15 (entertainment)",
		"- Insurance: 240.00 GBP yearly, due 2025-01-01 (utilities)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("WriteReport output missing %q:\n%s", want, got)
		}
	}
}
