package services

import (
	"context"
	"fmt"
	"log/slog"

	"smartbills/internal/core"
)

// RenewalStore is the storage surface the renewal pass needs.
type RenewalStore interface {
	ListOverdueRecurring(ctx context.Context, before core.Date) ([]core.Subscription, error)
	AdvanceDueDate(ctx context.Context, id int64, due core.Date) error
}

// RenewalProcessor rolls overdue recurring due dates forward so the
// upcoming window always reflects the next real payment. One-time
// subscriptions are never touched.
type RenewalProcessor struct {
	store     RenewalStore
	publisher SyncPublisher
}

// NewRenewalProcessor builds a processor. The publisher may be nil,
// in which case renewed rows wait for the periodic sync sweep.
func NewRenewalProcessor(store RenewalStore, publisher SyncPublisher) *RenewalProcessor {
	return &RenewalProcessor{
		store:     store,
		publisher: publisher,
	}
}

// ProcessOverdue advances every recurring subscription whose due date
// fell before today. A subscription overdue by several periods is
// rolled forward until its due date is today or later. Returns the
// number of subscriptions advanced.
func (p *RenewalProcessor) ProcessOverdue(ctx context.Context, today core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	overdue, err := p.store.ListOverdueRecurring(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list overdue subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Processing overdue renewals",
		"total_overdue", len(overdue),
		"processing_date", today.String())

	processedCount := 0

	for _, sub := range overdue {
		advancer, err := GetDueDateAdvancer(sub.Schedule)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping subscription with non-renewing schedule",
				"id", sub.ID,
				"schedule", string(sub.Schedule),
				"error", err)
			continue
		}

		next := sub.DueDate
		for next.Before(today) {
			next = advancer.Next(next)
		}

		if err := p.store.AdvanceDueDate(ctx, sub.ID, next); err != nil {
			slog.ErrorContext(ctx, "Failed to advance due date",
				"id", sub.ID,
				"error", err)
			continue
		}

		if p.publisher != nil {
			if err := p.publisher.PublishSubscriptionSync(ctx, sub.ID, 0); err != nil {
				slog.ErrorContext(ctx, "Failed to publish sync message after renewal",
					"id", sub.ID, "error", err)
			}
		}

		processedCount++
		slog.InfoContext(ctx, "Advanced subscription due date",
			"id", sub.ID,
			"name", sub.Name,
			"schedule", string(sub.Schedule),
			"old_due", sub.DueDate.String(),
			"new_due", next.String())
	}

	slog.InfoContext(ctx, "Renewal processing complete",
		"processed", processedCount,
		"total_checked", len(overdue))

	return processedCount, nil
}
