package services

import (
	"testing"

	"smartbills/internal/core"
)

func TestDueDateAdvancers(t *testing.T) {
	tests := []struct {
		name     string
		schedule core.Schedule
		due      core.Date
		want     core.Date
	}{
		{
			name:     "monthly mid month",
			schedule: core.Monthly,
			due:      core.NewDate(2024, 1, 15),
			want:     core.NewDate(2024, 2, 15),
		},
		{
			name:     "monthly clamps to short month",
			schedule: core.Monthly,
			due:      core.NewDate(2024, 1, 31),
			want:     core.NewDate(2024, 2, 29),
		},
		{
			name:     "monthly clamps in non leap year",
			schedule: core.Monthly,
			due:      core.NewDate(2023, 1, 31),
			want:     core.NewDate(2023, 2, 28),
		},
		{
			name:     "monthly across year boundary",
			schedule: core.Monthly,
			due:      core.NewDate(2024, 12, 10),
			want:     core.NewDate(2025, 1, 10),
		},
		{
			name:     "quarterly",
			schedule: core.Quarterly,
			due:      core.NewDate(2024, 11, 30),
			want:     core.NewDate(2025, 2, 28),
		},
		{
			name:     "yearly",
			schedule: core.Yearly,
			due:      core.NewDate(2024, 6, 1),
			want:     core.NewDate(2025, 6, 1),
		},
		{
			name:     "yearly from leap day",
			schedule: core.Yearly,
			due:      core.NewDate(2024, 2, 29),
			want:     core.NewDate(2025, 2, 28),
		},
		{
			name:     "weekly",
			schedule: core.Weekly,
			due:      core.NewDate(2024, 1, 29),
			want:     core.NewDate(2024, 2, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advancer, err := GetDueDateAdvancer(tt.schedule)
			if err != nil {
				t.Fatalf("GetDueDateAdvancer(%q): %v", tt.schedule, err)
			}
			got := advancer.Next(tt.due)
			if got.String() != tt.want.String() {
				t.Errorf("Next(%s) = %s, want %s", tt.due, got, tt.want)
			}
		})
	}
}

func TestGetDueDateAdvancerOneTime(t *testing.T) {
	if _, err := GetDueDateAdvancer(core.OneTime); err == nil {
		t.Error("GetDueDateAdvancer(one-time) should fail, one-time subscriptions never renew")
	}
}

func TestGetDueDateAdvancerUnknown(t *testing.T) {
	if _, err := GetDueDateAdvancer(core.Schedule("fortnightly")); err == nil {
		t.Error("GetDueDateAdvancer should fail for unknown schedules")
	}
}

func TestRegisterDueDateAdvancer(t *testing.T) {
	custom := core.Schedule("biweekly")
	RegisterDueDateAdvancer(custom, WeeklyAdvancer{})
	defer delete(advanceStrategies, custom)

	advancer, err := GetDueDateAdvancer(custom)
	if err != nil {
		t.Fatalf("GetDueDateAdvancer after register: %v", err)
	}
	got := advancer.Next(core.NewDate(2024, 1, 1))
	if got.String() != "2024-01-08" {
		t.Errorf("registered advancer Next = %s, want 2024-01-08", got)
	}
}
