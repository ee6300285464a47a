package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/lectern/internal/domain"
)

// populate fetches courses, then divisions per course, then contents per
// division, writing each collection as soon as it arrives.
func (c *Cache) populate(ctx context.Context, owner domain.OwnerKey, gen uint64) (err error) {
	defer func() {
		c.notify(domain.PopulateProgress{Owner: owner, Done: true, Error: err})
	}()

	courses, err := c.repo.ListCourses(ctx, owner)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	c.store.ReplaceCourses(owner, gen, courses)
	c.notify(domain.PopulateProgress{Owner: owner, Stage: domain.StageCourses, Loaded: len(courses), Total: len(courses)})
	c.logger.Debug("fetched courses", "owner", owner, "count", len(courses))

	courseIDs := make([]int64, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}
	divisions, err := fetchEach(ctx, c.fetchConcurrency, courseIDs,
		func(ctx context.Context, courseID int64) ([]domain.Division, error) {
			divs, err := c.repo.ListDivisions(ctx, courseID)
			if err != nil {
				return nil, fmt.Errorf("list divisions of course %d: %w", courseID, err)
			}
			return divs, nil
		},
		func(i int, divs []domain.Division) {
			c.store.ReplaceDivisions(owner, gen, courseIDs[i], divs)
		},
		c.progress(owner, domain.StageDivisions, len(courseIDs)),
	)
	if err != nil {
		return err
	}

	var divisionIDs []int64
	for _, divs := range divisions {
		for _, div := range divs {
			divisionIDs = append(divisionIDs, div.ID)
		}
	}
	c.logger.Debug("fetched divisions", "owner", owner, "count", len(divisionIDs))

	_, err = fetchEach(ctx, c.fetchConcurrency, divisionIDs,
		func(ctx context.Context, divisionID int64) ([]domain.Content, error) {
			contents, err := c.repo.ListContents(ctx, divisionID)
			if err != nil {
				return nil, fmt.Errorf("list contents of division %d: %w", divisionID, err)
			}
			return contents, nil
		},
		func(i int, contents []domain.Content) {
			c.store.ReplaceContents(owner, gen, divisionIDs[i], contents)
		},
		c.progress(owner, domain.StageContents, len(divisionIDs)),
	)
	if err != nil {
		return err
	}
	c.logger.Debug("fetched contents", "owner", owner, "divisions", len(divisionIDs))
	return nil
}

// progress returns a counter that reports one fetched collection per call.
func (c *Cache) progress(owner domain.OwnerKey, stage domain.PopulateStage, total int) func(loaded int) {
	return func(loaded int) {
		c.notify(domain.PopulateProgress{Owner: owner, Stage: stage, Loaded: loaded, Total: total})
	}
}

// fetchEach calls fetch for every id and hands each result to store.
// With limit <= 1 ids are fetched one after another in order; otherwise up to
// limit fetches run at once and the first error cancels the rest.
// Results are returned in id order either way.
func fetchEach[T any](
	ctx context.Context,
	limit int,
	ids []int64,
	fetch func(ctx context.Context, id int64) ([]T, error),
	store func(i int, items []T),
	onLoaded func(loaded int),
) ([][]T, error) {
	results := make([][]T, len(ids))

	if limit <= 1 {
		for i, id := range ids {
			items, err := fetch(ctx, id)
			if err != nil {
				return nil, err
			}
			results[i] = items
			store(i, items)
			onLoaded(i + 1)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	loaded := make(chan struct{}, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			items, err := fetch(gctx, id)
			if err != nil {
				return err
			}
			results[i] = items
			store(i, items)
			loaded <- struct{}{}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	count := 0
	for {
		select {
		case <-loaded:
			count++
			onLoaded(count)
		case err := <-done:
			if err != nil {
				return nil, err
			}
			for ; count < len(ids); count++ {
				<-loaded
				onLoaded(count + 1)
			}
			return results, nil
		}
	}
}
