package domain

// CatalogStore holds per-owner catalog records in memory.
// It has no network awareness; the catalog package drives it.
type CatalogStore interface {
	// === Records ===
	Ensure(owner OwnerKey) Snapshot
	Get(owner OwnerKey) (Snapshot, bool)
	Owners() []OwnerKey

	// === Reads (copies, safe to hand to consumers) ===
	Courses(owner OwnerKey) ([]Course, bool)
	Divisions(owner OwnerKey, courseID int64) ([]Division, bool)
	Contents(owner OwnerKey, divisionID int64) ([]Content, bool)
	Populated(owner OwnerKey) bool
	Generation(owner OwnerKey) (uint64, bool)

	// === Writes (discarded when gen is no longer current) ===
	ReplaceCourses(owner OwnerKey, gen uint64, courses []Course) bool
	ReplaceDivisions(owner OwnerKey, gen uint64, courseID int64, divisions []Division) bool
	ReplaceContents(owner OwnerKey, gen uint64, divisionID int64, contents []Content) bool
	UpsertCourse(owner OwnerKey, course Course)

	// === Population slot ===
	BeginPopulation(owner OwnerKey) (gen uint64, alreadyRunning bool)
	EndPopulation(owner OwnerKey, gen uint64, err error)

	// === Invalidation ===
	Clear(owner OwnerKey)
	DropDivisions(owner OwnerKey, courseID int64)
	DropContents(owner OwnerKey, divisionID int64)
	DropAllContents(owner OwnerKey)
}

// Snapshot is a point-in-time copy of one owner's cache record.
type Snapshot struct {
	Owner      OwnerKey
	Courses    []Course
	Divisions  map[int64][]Division // keyed by course ID
	Contents   map[int64][]Content  // keyed by division ID
	Populated  bool                 // at least one successful write since creation
	Populating bool                 // a population cycle is in flight
	Generation uint64               // bumped by every invalidation
}

// DivisionCount returns the number of cached divisions across all courses
func (s Snapshot) DivisionCount() int {
	n := 0
	for _, divs := range s.Divisions {
		n += len(divs)
	}
	return n
}

// ContentCount returns the number of cached contents across all divisions
func (s Snapshot) ContentCount() int {
	n := 0
	for _, contents := range s.Contents {
		n += len(contents)
	}
	return n
}
