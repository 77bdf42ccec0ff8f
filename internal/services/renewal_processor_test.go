package services

import (
	"context"
	"errors"
	"testing"

	"smartbills/internal/core"
)

type fakeRenewalStore struct {
	overdue    []core.Subscription
	advanced   map[int64]core.Date
	listErr    error
	advanceErr error
}

func (f *fakeRenewalStore) ListOverdueRecurring(ctx context.Context, before core.Date) ([]core.Subscription, error) {
	return f.overdue, f.listErr
}

func (f *fakeRenewalStore) AdvanceDueDate(ctx context.Context, id int64, due core.Date) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	if f.advanced == nil {
		f.advanced = make(map[int64]core.Date)
	}
	f.advanced[id] = due
	return nil
}

func TestRenewalProcessor_AdvancesOverdue(t *testing.T) {
	store := &fakeRenewalStore{
		overdue: []core.Subscription{
			{ID: 1, Name: "Netflix", Schedule: core.Monthly, DueDate: core.NewDate(2024, 5, 15)},
			{ID: 2, Name: "Insurance", Schedule: core.Yearly, DueDate: core.NewDate(2023, 6, 1)},
		},
	}
	publisher := &fakePublisher{}
	p := NewRenewalProcessor(store, publisher)

	today := core.NewDate(2024, 6, 10)
	processed, err := p.ProcessOverdue(context.Background(), today)
	if err != nil {
		t.Fatalf("ProcessOverdue: %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}

	if got := store.advanced[1].String(); got != "2024-06-15" {
		t.Errorf("monthly advanced to %s, want 2024-06-15", got)
	}
	// 2024-06-01 already passed, so the yearly row rolls to next year.
	if got := store.advanced[2].String(); got != "2025-06-01" {
		t.Errorf("yearly advanced to %s, want 2025-06-01", got)
	}

	if len(publisher.published) != 2 {
		t.Errorf("published %d sync messages, want 2", len(publisher.published))
	}
}

func TestRenewalProcessor_RollsForwardMultiplePeriods(t *testing.T) {
	store := &fakeRenewalStore{
		overdue: []core.Subscription{
			{ID: 1, Name: "Gym", Schedule: core.Weekly, DueDate: core.NewDate(2024, 1, 1)},
		},
	}
	p := NewRenewalProcessor(store, nil)

	today := core.NewDate(2024, 1, 20)
	if _, err := p.ProcessOverdue(context.Background(), today); err != nil {
		t.Fatalf("ProcessOverdue: %v", err)
	}

	// 2024-01-01 plus three weeks is the first weekly slot not before today.
	if got := store.advanced[1].String(); got != "2024-01-22" {
		t.Errorf("weekly advanced to %s, want 2024-01-22", got)
	}
}

func TestRenewalProcessor_SkipsNonRenewing(t *testing.T) {
	store := &fakeRenewalStore{
		overdue: []core.Subscription{
			{ID: 1, Name: "Domain", Schedule: core.OneTime, DueDate: core.NewDate(2024, 1, 1)},
			{ID: 2, Name: "Netflix", Schedule: core.Monthly, DueDate: core.NewDate(2024, 5, 1)},
		},
	}
	p := NewRenewalProcessor(store, nil)

	processed, err := p.ProcessOverdue(context.Background(), core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatalf("ProcessOverdue: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if _, ok := store.advanced[1]; ok {
		t.Error("one-time subscription should never be advanced")
	}
}

func TestRenewalProcessor_ListErrorPropagates(t *testing.T) {
	wantErr := errors.New("db locked")
	p := NewRenewalProcessor(&fakeRenewalStore{listErr: wantErr}, nil)

	if _, err := p.ProcessOverdue(context.Background(), core.NewDate(2024, 6, 1)); !errors.Is(err, wantErr) {
		t.Errorf("ProcessOverdue error = %v, want wrapped %v", err, wantErr)
	}
}

func TestRenewalProcessor_AdvanceErrorCountsZero(t *testing.T) {
	store := &fakeRenewalStore{
		overdue: []core.Subscription{
			{ID: 1, Name: "Netflix", Schedule: core.Monthly, DueDate: core.NewDate(2024, 5, 1)},
		},
		advanceErr: errors.New("db locked"),
	}
	p := NewRenewalProcessor(store, nil)

	processed, err := p.ProcessOverdue(context.Background(), core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatalf("ProcessOverdue should not fail on per-row errors, got: %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
}
