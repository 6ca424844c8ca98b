package memory

import (
	"context"
	"sync"

	"gearbook/internal/app/outbox"
)

// Outbox buffers event records in memory. Flush hands them to an optional
// sink; without one the flushed records stay readable for inspection, which
// is what tests and the audit endpoint rely on in memory mode.
type Outbox struct {
	mu      sync.Mutex
	pending []outbox.EventRecord
	flushed []outbox.EventRecord
	Sink    func(ctx context.Context, rec outbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()

	for _, rec := range batch {
		if o.Sink != nil {
			if err := o.Sink(ctx, rec); err != nil {
				o.mu.Lock()
				o.pending = append(o.pending, rec)
				o.mu.Unlock()
				return err
			}
		}
		o.mu.Lock()
		o.flushed = append(o.flushed, rec)
		o.mu.Unlock()
	}
	return nil
}

// Flushed returns a copy of everything delivered so far.
func (o *Outbox) Flushed() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]outbox.EventRecord, len(o.flushed))
	copy(out, o.flushed)
	return out
}
