package policies

import "context"

// Notifier informs parties about lifecycle changes. Delivery is best effort;
// failures are logged, never surfaced to the renter.
type Notifier interface {
	RentalRequested(ctx context.Context, ownerID, rentalID string) error
	RentalDecided(ctx context.Context, renterID, rentalID string, approved bool) error
	RentalPaid(ctx context.Context, ownerID, rentalID string) error
	RentalRefunded(ctx context.Context, renterID, rentalID string) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) RentalRequested(context.Context, string, string) error { return nil }

func (NopNotifier) RentalDecided(context.Context, string, string, bool) error { return nil }

func (NopNotifier) RentalPaid(context.Context, string, string) error { return nil }

func (NopNotifier) RentalRefunded(context.Context, string, string) error { return nil }
