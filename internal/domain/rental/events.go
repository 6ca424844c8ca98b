package rental

import (
	"time"

	"gearbook/internal/domain/shared/money"
)

type RequestedEvent struct {
	RentalID string
	ItemID   string
	RenterID string
	At       time.Time
}

func (e RequestedEvent) EventName() string     { return "rental.requested" }
func (e RequestedEvent) AggregateID() string   { return e.RentalID }
func (e RequestedEvent) OccurredAt() time.Time { return e.At }

type ApprovedEvent struct {
	RentalID string
	OwnerID  string
	At       time.Time
}

func (e ApprovedEvent) EventName() string     { return "rental.approved" }
func (e ApprovedEvent) AggregateID() string   { return e.RentalID }
func (e ApprovedEvent) OccurredAt() time.Time { return e.At }

type RejectedEvent struct {
	RentalID string
	OwnerID  string
	At       time.Time
}

func (e RejectedEvent) EventName() string     { return "rental.rejected" }
func (e RejectedEvent) AggregateID() string   { return e.RentalID }
func (e RejectedEvent) OccurredAt() time.Time { return e.At }

type CancelledEvent struct {
	RentalID string
	By       string
	At       time.Time
}

func (e CancelledEvent) EventName() string     { return "rental.cancelled" }
func (e CancelledEvent) AggregateID() string   { return e.RentalID }
func (e CancelledEvent) OccurredAt() time.Time { return e.At }

type PaidEvent struct {
	RentalID   string
	PaymentRef string
	Total      money.Money
	At         time.Time
}

func (e PaidEvent) EventName() string     { return "rental.paid" }
func (e PaidEvent) AggregateID() string   { return e.RentalID }
func (e PaidEvent) OccurredAt() time.Time { return e.At }

type ActivatedEvent struct {
	RentalID string
	At       time.Time
}

func (e ActivatedEvent) EventName() string     { return "rental.activated" }
func (e ActivatedEvent) AggregateID() string   { return e.RentalID }
func (e ActivatedEvent) OccurredAt() time.Time { return e.At }

type CompletedEvent struct {
	RentalID string
	At       time.Time
}

func (e CompletedEvent) EventName() string     { return "rental.completed" }
func (e CompletedEvent) AggregateID() string   { return e.RentalID }
func (e CompletedEvent) OccurredAt() time.Time { return e.At }

type PaidOutEvent struct {
	RentalID string
	OwnerID  string
	At       time.Time
}

func (e PaidOutEvent) EventName() string     { return "rental.paid_out" }
func (e PaidOutEvent) AggregateID() string   { return e.RentalID }
func (e PaidOutEvent) OccurredAt() time.Time { return e.At }

type RefundedEvent struct {
	RentalID string
	Total    money.Money
	At       time.Time
}

func (e RefundedEvent) EventName() string     { return "rental.refunded" }
func (e RefundedEvent) AggregateID() string   { return e.RentalID }
func (e RefundedEvent) OccurredAt() time.Time { return e.At }
