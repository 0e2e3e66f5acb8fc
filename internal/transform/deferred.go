package transform

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxDeferred bounds the decorations running at once.
const DefaultMaxDeferred = 8

// Deferred collects decorations that run concurrently with the rest of the
// pipeline. A task only computes; the tree mutation it returns is applied on
// the caller's goroutine by Wait, in submission order.
type Deferred struct {
	g   *errgroup.Group
	ctx context.Context

	mu       sync.Mutex
	appliers []func()
}

// NewDeferred returns an empty set bound to ctx. limit <= 0 uses DefaultMaxDeferred.
func NewDeferred(ctx context.Context, limit int) *Deferred {
	if limit <= 0 {
		limit = DefaultMaxDeferred
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	return &Deferred{g: g, ctx: gctx}
}

// Go starts task. The returned applier may be nil.
func (d *Deferred) Go(task func(ctx context.Context) (apply func(), err error)) {
	d.mu.Lock()
	idx := len(d.appliers)
	d.appliers = append(d.appliers, nil)
	d.mu.Unlock()

	d.g.Go(func() error {
		apply, err := task(d.ctx)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.appliers[idx] = apply
		d.mu.Unlock()
		return nil
	})
}

// Len returns the number of submitted tasks.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.appliers)
}

// Wait joins every task and applies their results. On error nothing is applied.
func (d *Deferred) Wait() error {
	if err := d.g.Wait(); err != nil {
		return err
	}
	d.mu.Lock()
	appliers := d.appliers
	d.appliers = nil
	d.mu.Unlock()
	for _, apply := range appliers {
		if apply != nil {
			apply()
		}
	}
	return nil
}
