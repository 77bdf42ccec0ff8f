package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"smartbills/internal/core"
	"smartbills/internal/storage"
)

// SyncPublisher publishes backup sync events for the sheet worker.
type SyncPublisher interface {
	PublishSubscriptionSync(ctx context.Context, id, version int64) error
	PublishSubscriptionDelete(ctx context.Context, id int64) error
	Close() error
}

// SubscriptionService orchestrates subscription writes across the
// store and the sync queue. The store is the source of truth; queue
// publishes are best effort and never fail the request.
type SubscriptionService struct {
	store     storage.SubscriptionStore
	publisher SyncPublisher
}

func NewSubscriptionService(store storage.SubscriptionStore, publisher SyncPublisher) *SubscriptionService {
	return &SubscriptionService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and saves a subscription, then publishes a sync
// message for the new row.
func (s *SubscriptionService) Create(ctx context.Context, userID int64, sub core.Subscription) (core.Subscription, error) {
	sub = sub.WithDefaults()
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	saved, err := s.store.CreateSubscription(ctx, userID, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}

	// New rows start at version 1.
	if err := s.publishSync(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
	}

	return saved, nil
}

// List returns the user's live subscriptions.
func (s *SubscriptionService) List(ctx context.Context, userID int64) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx, userID)
}

// Get returns one subscription owned by the user.
func (s *SubscriptionService) Get(ctx context.Context, userID, id int64) (core.Subscription, error) {
	return s.store.GetSubscription(ctx, userID, id)
}

// Update validates and replaces a subscription, then publishes a sync
// message. Version 0 tells the worker to read the current row version.
func (s *SubscriptionService) Update(ctx context.Context, userID, id int64, sub core.Subscription) (core.Subscription, error) {
	sub = sub.WithDefaults()
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	saved, err := s.store.UpdateSubscription(ctx, userID, id, sub)
	if err != nil {
		return core.Subscription{}, err
	}

	if err := s.publishSync(ctx, id, 0); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return saved, nil
}

// Delete soft-deletes a subscription and publishes a delete message.
func (s *SubscriptionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteSubscription(ctx, userID, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *SubscriptionService) publishSync(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishSubscriptionSync(ctx, id, version)
}

func (s *SubscriptionService) publishDelete(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishSubscriptionDelete(ctx, id)
}

// Close closes the store and the publisher.
func (s *SubscriptionService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close subscription service: %v", errs)
	}

	return nil
}
