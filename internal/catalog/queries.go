package catalog

import "github.com/mmcdole/lectern/internal/domain"

// Status summarizes one owner's cache record.
type Status struct {
	Owner      domain.OwnerKey
	Exists     bool
	Populated  bool
	Populating bool
	Courses    int
	Divisions  int
	Contents   int
	Generation uint64
}

// Queries provides synchronous, cache-only reads. Nothing here touches the
// network or starts a population cycle.
type Queries struct {
	store domain.CatalogStore
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.CatalogStore) *Queries {
	return &Queries{store: store}
}

func (q *Queries) CachedCourses(owner domain.OwnerKey) ([]domain.Course, bool) {
	return q.store.Courses(owner)
}

func (q *Queries) CachedDivisions(owner domain.OwnerKey, courseID int64) ([]domain.Division, bool) {
	return q.store.Divisions(owner, courseID)
}

func (q *Queries) CachedContents(owner domain.OwnerKey, divisionID int64) ([]domain.Content, bool) {
	return q.store.Contents(owner, divisionID)
}

// Snapshot returns a deep copy of the owner's record.
func (q *Queries) Snapshot(owner domain.OwnerKey) (domain.Snapshot, bool) {
	return q.store.Get(owner)
}

func (q *Queries) Status(owner domain.OwnerKey) Status {
	owner = owner.Normalize()
	snap, ok := q.store.Get(owner)
	if !ok {
		return Status{Owner: owner}
	}
	return Status{
		Owner:      owner,
		Exists:     true,
		Populated:  snap.Populated,
		Populating: snap.Populating,
		Courses:    len(snap.Courses),
		Divisions:  snap.DivisionCount(),
		Contents:   snap.ContentCount(),
		Generation: snap.Generation,
	}
}
