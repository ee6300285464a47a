package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/lectern/internal/domain"
)

// maxSupersededRestarts bounds how often a caller follows invalidations that
// keep superseding the cycle it is waiting on.
const maxSupersededRestarts = 5

// errSuperseded is returned to waiters of a cycle whose generation was
// invalidated while it ran. Callers restart on the new generation, and see
// it wrapped once the restarts run out.
var errSuperseded = errors.New("population superseded by invalidation")

// PopulateFunc fetches an owner's whole catalog tree into the store.
// Every write must carry gen so the store can discard it once superseded.
type PopulateFunc func(ctx context.Context, owner domain.OwnerKey, gen uint64) error

// Coordinator runs at most one population cycle per owner generation and
// lets any number of callers wait on it.
type Coordinator struct {
	store  domain.CatalogStore
	group  singleflight.Group
	logger *slog.Logger
}

// NewCoordinator creates a coordinator over store.
func NewCoordinator(store domain.CatalogStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: store, logger: logger}
}

// StartOrJoin starts a population cycle for owner, or joins the one already
// in flight. populate runs once per cycle no matter how many callers arrive.
//
// The cycle is detached from ctx: a caller whose ctx ends stops waiting and
// gets ctx.Err(), while the cycle runs to completion for everyone else.
func (c *Coordinator) StartOrJoin(ctx context.Context, owner domain.OwnerKey, populate PopulateFunc) error {
	owner = owner.Normalize()
	if !owner.Valid() {
		return domain.ErrInvalidOwner
	}

	for range maxSupersededRestarts {
		gen := c.store.Ensure(owner).Generation
		key := fmt.Sprintf("%s#%d", owner, gen)

		err := c.wait(ctx, key, func() (any, error) {
			return nil, c.runCycle(context.WithoutCancel(ctx), owner, gen, populate)
		})
		if errors.Is(err, errSuperseded) {
			c.logger.Debug("population superseded, restarting", "owner", owner, "gen", gen)
			continue
		}
		return err
	}
	return fmt.Errorf("%w %d times", errSuperseded, maxSupersededRestarts)
}

// Refill runs fn once for all concurrent callers sharing key.
// Used to refetch a single sub-collection after targeted invalidation.
func (c *Coordinator) Refill(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return c.wait(ctx, key, func() (any, error) {
		return nil, fn(context.WithoutCancel(ctx))
	})
}

func (c *Coordinator) runCycle(ctx context.Context, owner domain.OwnerKey, want uint64, populate PopulateFunc) error {
	// A cycle for this generation may have finished between the caller
	// reading the generation and joining the group.
	if cur, ok := c.store.Generation(owner); ok && cur == want && c.store.Populated(owner) {
		return nil
	}

	gen, running := c.store.BeginPopulation(owner)
	if gen != want || running {
		return errSuperseded
	}

	c.logger.Debug("population started", "owner", owner, "gen", gen)
	err := populate(ctx, owner, gen)
	if err == nil {
		if cur, ok := c.store.Generation(owner); !ok || cur != gen {
			err = errSuperseded
		}
	}

	if errors.Is(err, errSuperseded) {
		c.store.EndPopulation(owner, gen, nil)
		return err
	}
	c.store.EndPopulation(owner, gen, err)

	if err != nil {
		c.logger.Error("population failed", "owner", owner, "gen", gen, "error", err)
		return err
	}
	c.logger.Debug("population finished", "owner", owner, "gen", gen)
	return nil
}

// wait joins the shared call for key and blocks until it settles or ctx ends.
func (c *Coordinator) wait(ctx context.Context, key string, fn func() (any, error)) error {
	ch := c.group.DoChan(key, fn)
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
