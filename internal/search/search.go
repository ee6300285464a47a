package search

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
)

// Location tells the browser where a hit lives in the catalog tree
type Location struct {
	CourseID   int64
	DivisionID int64 // zero for courses
}

// Result is one ranked hit
type Result struct {
	Item     domain.ListItem // domain.Course, domain.Division or domain.Content
	Title    string
	Location Location
	Distance int // lower is better
}

// Service runs fuzzy search over whatever the cache currently holds.
// It never fetches; an unpopulated owner simply has no results.
type Service struct {
	queries *catalog.Queries
	logger  *slog.Logger
}

// NewService creates a new search service
func NewService(queries *catalog.Queries, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{queries: queries, logger: logger}
}

// Search ranks the owner's cached courses, divisions and contents against
// query. Matching is case-insensitive and tolerates gaps between characters.
func (s *Service) Search(owner domain.OwnerKey, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	items := s.gather(owner)
	if len(items) == 0 {
		return nil
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	results := make([]Result, len(ranks))
	for i, r := range ranks {
		results[i] = items[r.OriginalIndex]
		results[i].Distance = r.Distance
	}
	s.logger.Debug("search complete", "owner", owner, "query", query, "results", len(results))
	return results
}

// gather walks the cached tree in browse order
func (s *Service) gather(owner domain.OwnerKey) []Result {
	snap, ok := s.queries.Snapshot(owner)
	if !ok {
		return nil
	}

	var items []Result
	for _, course := range snap.Courses {
		items = append(items, Result{
			Item:     course,
			Title:    course.Name,
			Location: Location{CourseID: course.ID},
		})
		for _, div := range snap.Divisions[course.ID] {
			items = append(items, Result{
				Item:     div,
				Title:    div.Title,
				Location: Location{CourseID: course.ID, DivisionID: div.ID},
			})
			for _, content := range snap.Contents[div.ID] {
				items = append(items, Result{
					Item:     content,
					Title:    content.Title,
					Location: Location{CourseID: course.ID, DivisionID: div.ID},
				})
			}
		}
	}
	return items
}
