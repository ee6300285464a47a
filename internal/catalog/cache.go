package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/lectern/internal/domain"
)

// ScopeKind selects what Invalidate removes.
type ScopeKind int

const (
	ScopeKindAll ScopeKind = iota
	ScopeKindDivisions
	ScopeKindContents
)

// Scope describes a targeted invalidation.
type Scope struct {
	Kind ScopeKind
	ID   int64 // course ID for divisions, division ID for contents
}

// ScopeAll drops the whole owner record.
func ScopeAll() Scope { return Scope{Kind: ScopeKindAll} }

// ScopeDivisions drops one course's divisions and every cached content list.
func ScopeDivisions(courseID int64) Scope { return Scope{Kind: ScopeKindDivisions, ID: courseID} }

// ScopeContents drops one division's contents.
func ScopeContents(divisionID int64) Scope { return Scope{Kind: ScopeKindContents, ID: divisionID} }

func (s Scope) String() string {
	switch s.Kind {
	case ScopeKindDivisions:
		return fmt.Sprintf("divisions:%d", s.ID)
	case ScopeKindContents:
		return fmt.Sprintf("contents:%d", s.ID)
	default:
		return "all"
	}
}

// Options tunes the cache.
type Options struct {
	// FetchConcurrency caps parallel sibling fetches during population.
	// 1 or less fetches strictly in sequence.
	FetchConcurrency int
}

// Cache is the read-through catalog cache consumers use.
// Reads of populated data never block; misses start or join the owner's
// population cycle.
type Cache struct {
	repo             domain.CourseRepository
	store            domain.CatalogStore
	coord            *Coordinator
	fetchConcurrency int
	logger           *slog.Logger

	mu        sync.RWMutex
	observers []domain.PopulateObserver
}

// NewCache creates a cache reading through repo into store.
func NewCache(repo domain.CourseRepository, store domain.CatalogStore, opts Options, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		repo:             repo,
		store:            store,
		coord:            NewCoordinator(store, logger),
		fetchConcurrency: opts.FetchConcurrency,
		logger:           logger,
	}
}

// AddObserver registers an observer for population progress.
func (c *Cache) AddObserver(obs domain.PopulateObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

func (c *Cache) notify(p domain.PopulateProgress) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, obs := range c.observers {
		obs.OnProgress(p)
	}
}

// === Reads ===

// Courses returns the owner's courses, populating the cache first if needed.
func (c *Cache) Courses(ctx context.Context, owner domain.OwnerKey) ([]domain.Course, error) {
	owner = owner.Normalize()
	if courses, ok := c.store.Courses(owner); ok {
		return courses, nil
	}
	if err := c.ensurePopulated(ctx, owner); err != nil {
		return nil, err
	}
	courses, _ := c.store.Courses(owner)
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}

// Divisions returns a course's divisions in backend order.
// A course the backend does not know yields an empty list, not an error.
func (c *Cache) Divisions(ctx context.Context, owner domain.OwnerKey, courseID int64) ([]domain.Division, error) {
	owner = owner.Normalize()
	return readThrough(ctx, c, owner,
		func() ([]domain.Division, bool) { return c.store.Divisions(owner, courseID) },
		fmt.Sprintf("%s/divisions/%d", owner, courseID),
		func(ctx context.Context, gen uint64) error {
			divs, err := c.repo.ListDivisions(ctx, courseID)
			if err != nil {
				return fmt.Errorf("list divisions of course %d: %w", courseID, err)
			}
			c.store.ReplaceDivisions(owner, gen, courseID, divs)
			c.logger.Debug("refilled divisions", "owner", owner, "courseID", courseID, "count", len(divs))
			return nil
		},
	)
}

// Contents returns a division's contents in backend order.
// A division the backend does not know yields an empty list, not an error.
func (c *Cache) Contents(ctx context.Context, owner domain.OwnerKey, divisionID int64) ([]domain.Content, error) {
	owner = owner.Normalize()
	return readThrough(ctx, c, owner,
		func() ([]domain.Content, bool) { return c.store.Contents(owner, divisionID) },
		fmt.Sprintf("%s/contents/%d", owner, divisionID),
		func(ctx context.Context, gen uint64) error {
			contents, err := c.repo.ListContents(ctx, divisionID)
			if err != nil {
				return fmt.Errorf("list contents of division %d: %w", divisionID, err)
			}
			c.store.ReplaceContents(owner, gen, divisionID, contents)
			c.logger.Debug("refilled contents", "owner", owner, "divisionID", divisionID, "count", len(contents))
			return nil
		},
	)
}

// readThrough serves a sub-collection from the store. An unpopulated owner
// gets a full population; a populated owner missing just this entry gets a
// single refetch of it, even when its parent was dropped with it.
func readThrough[T any](
	ctx context.Context,
	c *Cache,
	owner domain.OwnerKey,
	read func() ([]T, bool),
	refillKey string,
	refill func(ctx context.Context, gen uint64) error,
) ([]T, error) {
	if items, ok := read(); ok {
		return items, nil
	}

	for range maxSupersededRestarts {
		if !c.store.Populated(owner) || c.populating(owner) {
			if err := c.ensurePopulated(ctx, owner); err != nil {
				return nil, err
			}
		}
		if items, ok := read(); ok {
			return items, nil
		}

		gen, ok := c.store.Generation(owner)
		if !ok {
			// signed out or invalidated wholesale while we waited
			continue
		}
		err := c.coord.Refill(ctx, fmt.Sprintf("%s#%d", refillKey, gen), func(ctx context.Context) error {
			return refill(ctx, gen)
		})
		if errors.Is(err, domain.ErrCourseNotFound) || errors.Is(err, domain.ErrDivisionNotFound) {
			return []T{}, nil
		}
		if err != nil {
			c.logger.Error("refill failed", "key", refillKey, "error", err)
			return nil, err
		}
		if items, ok := read(); ok {
			return items, nil
		}
		c.logger.Debug("refill superseded, retrying", "key", refillKey, "gen", gen)
	}
	return nil, fmt.Errorf("%s: %w", refillKey, errSuperseded)
}

func (c *Cache) ensurePopulated(ctx context.Context, owner domain.OwnerKey) error {
	return c.coord.StartOrJoin(ctx, owner, c.populate)
}

func (c *Cache) populating(owner domain.OwnerKey) bool {
	snap, ok := c.store.Get(owner)
	return ok && snap.Populating
}

// === Writes ===

// Invalidate drops cached state for owner within scope.
// Invalidating something that is not cached is a no-op.
func (c *Cache) Invalidate(owner domain.OwnerKey, scope Scope) {
	owner = owner.Normalize()
	switch scope.Kind {
	case ScopeKindDivisions:
		// Content lists are keyed by division alone, so the ones that belonged
		// to this course cannot be picked out. Drop them all.
		c.store.DropDivisions(owner, scope.ID)
		c.store.DropAllContents(owner)
	case ScopeKindContents:
		c.store.DropContents(owner, scope.ID)
	default:
		c.store.Clear(owner)
	}
	c.logger.Info("invalidated catalog cache", "owner", owner, "scope", scope.String())
}

// InvalidateAll drops the whole owner record.
func (c *Cache) InvalidateAll(owner domain.OwnerKey) {
	c.Invalidate(owner, ScopeAll())
}

// UpsertCourse writes a course into the cache without a network round trip.
// An existing course keeps its position; a new one is appended.
func (c *Cache) UpsertCourse(owner domain.OwnerKey, course domain.Course) {
	owner = owner.Normalize()
	c.store.UpsertCourse(owner, course)
	c.logger.Debug("upserted course", "owner", owner, "courseID", course.ID)
}

// Warm starts population in the background. Failures are logged; the next
// read retries.
func (c *Cache) Warm(ctx context.Context, owner domain.OwnerKey) {
	owner = owner.Normalize()
	if !owner.Valid() || c.store.Populated(owner) {
		return
	}
	go func() {
		if err := c.ensurePopulated(context.WithoutCancel(ctx), owner); err != nil {
			c.logger.Warn("cache warm-up failed", "owner", owner, "error", err)
		}
	}()
}
