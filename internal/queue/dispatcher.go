package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Dispatcher is the producer-facing entry point. It persists jobs as
// pending and returns without waiting for any worker.
type Dispatcher struct {
	store    Store
	clock    Clock
	observer Observer
	logger   *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherClock(c Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

func WithDispatcherObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

func NewDispatcher(store Store, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		clock:    SystemClock(),
		observer: NopObserver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch enqueues desc for immediate execution.
func (d *Dispatcher) Dispatch(ctx context.Context, desc Descriptor) (string, error) {
	return d.DispatchAt(ctx, desc, time.Time{})
}

// DispatchAt enqueues desc so that it is not claimed before at. A zero or
// past at means now.
func (d *Dispatcher) DispatchAt(ctx context.Context, desc Descriptor, at time.Time) (string, error) {
	raw, err := Encode(desc)
	if err != nil {
		return "", err
	}
	return d.enqueue(ctx, desc.Kind(), raw, at)
}

// DispatchRaw enqueues an already serialized payload under kind.
func (d *Dispatcher) DispatchRaw(ctx context.Context, kind string, payload json.RawMessage) (string, error) {
	return d.DispatchRawAt(ctx, kind, payload, time.Time{})
}

func (d *Dispatcher) DispatchRawAt(ctx context.Context, kind string, payload json.RawMessage, at time.Time) (string, error) {
	if kind == "" {
		return "", &SerializationError{Err: errors.New("empty kind")}
	}
	if !json.Valid(payload) {
		return "", &SerializationError{Kind: kind, Err: errors.New("payload is not valid JSON")}
	}
	return d.enqueue(ctx, kind, payload, at)
}

func (d *Dispatcher) enqueue(ctx context.Context, kind string, payload json.RawMessage, at time.Time) (string, error) {
	now := d.clock.Now()
	if at.Before(now) {
		at = now
	}

	id, err := d.store.Insert(ctx, kind, payload, at)
	if err != nil {
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			err = &PersistenceError{Op: "dispatch job", Err: err}
		}
		return "", err
	}

	d.observer.JobEnqueued(kind)
	d.logger.Debug("job dispatched",
		slog.String("job_id", id),
		slog.String("kind", kind),
		slog.Time("available_at", at),
	)

	return id, nil
}
