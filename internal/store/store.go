package store

import (
	"slices"
	"sort"
	"sync"

	"github.com/mmcdole/lectern/internal/domain"
)

// record is one owner's slice of the catalog.
// Divisions and contents are indexed by parent ID, never nested in their parents.
type record struct {
	courses   []domain.Course
	divisions map[int64][]domain.Division // courseID -> divisions
	contents  map[int64][]domain.Content  // divisionID -> contents

	populated  bool
	pending    uint64 // generation of the in-flight population, 0 when idle
	generation uint64
}

// MemoryStore implements domain.CatalogStore with per-owner in-memory records.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.OwnerKey]*record

	// lastGen is store-wide so a record recreated after Clear never reuses
	// a generation an older cycle may still be holding.
	lastGen uint64
}

// New creates an empty store.
func New() *MemoryStore {
	return &MemoryStore{records: make(map[domain.OwnerKey]*record)}
}

// === Generic helpers ===

func (s *MemoryStore) nextGen() uint64 {
	s.lastGen++
	return s.lastGen
}

// ensureLocked returns the owner's record, creating it if absent. Caller holds mu.
func (s *MemoryStore) ensureLocked(owner domain.OwnerKey) *record {
	rec, ok := s.records[owner]
	if !ok {
		rec = &record{
			divisions:  make(map[int64][]domain.Division),
			contents:   make(map[int64][]domain.Content),
			generation: s.nextGen(),
		}
		s.records[owner] = rec
	}
	return rec
}

// current returns the record only if gen is still its generation. Caller holds mu.
func (s *MemoryStore) current(owner domain.OwnerKey, gen uint64) (*record, bool) {
	rec, ok := s.records[owner]
	if !ok || rec.generation != gen {
		return nil, false
	}
	return rec, true
}

func (rec *record) snapshot(owner domain.OwnerKey) domain.Snapshot {
	snap := domain.Snapshot{
		Owner:      owner,
		Courses:    slices.Clone(rec.courses),
		Divisions:  make(map[int64][]domain.Division, len(rec.divisions)),
		Contents:   make(map[int64][]domain.Content, len(rec.contents)),
		Populated:  rec.populated,
		Populating: rec.pending != 0,
		Generation: rec.generation,
	}
	if snap.Courses == nil {
		snap.Courses = []domain.Course{}
	}
	for id, divs := range rec.divisions {
		snap.Divisions[id] = slices.Clone(divs)
	}
	for id, contents := range rec.contents {
		snap.Contents[id] = slices.Clone(contents)
	}
	return snap
}

// === Records ===

// Ensure creates a default-empty record for owner if none exists.
// Repeat calls return the existing record untouched.
func (s *MemoryStore) Ensure(owner domain.OwnerKey) domain.Snapshot {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(owner).snapshot(owner)
}

func (s *MemoryStore) Get(owner domain.OwnerKey) (domain.Snapshot, bool) {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok {
		return domain.Snapshot{}, false
	}
	return rec.snapshot(owner), true
}

// Owners returns every owner with a live record, sorted.
func (s *MemoryStore) Owners() []domain.OwnerKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]domain.OwnerKey, 0, len(s.records))
	for owner := range s.records {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// === Reads ===

// Courses returns the owner's courses; ok is false until the record is populated.
func (s *MemoryStore) Courses(owner domain.OwnerKey) ([]domain.Course, bool) {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok || !rec.populated {
		return nil, false
	}
	courses := slices.Clone(rec.courses)
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, true
}

// Divisions returns the divisions cached for a course; ok reports presence of the key.
func (s *MemoryStore) Divisions(owner domain.OwnerKey, courseID int64) ([]domain.Division, bool) {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok {
		return nil, false
	}
	divs, ok := rec.divisions[courseID]
	if !ok {
		return nil, false
	}
	return slices.Clone(divs), true
}

// Contents returns the contents cached for a division; ok reports presence of the key.
func (s *MemoryStore) Contents(owner domain.OwnerKey, divisionID int64) ([]domain.Content, bool) {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok {
		return nil, false
	}
	contents, ok := rec.contents[divisionID]
	if !ok {
		return nil, false
	}
	return slices.Clone(contents), true
}

func (s *MemoryStore) Populated(owner domain.OwnerKey) bool {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	return ok && rec.populated
}

func (s *MemoryStore) Generation(owner domain.OwnerKey) (uint64, bool) {
	owner = owner.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok {
		return 0, false
	}
	return rec.generation, true
}

// === Writes ===

// ReplaceCourses swaps the whole course list and marks the record populated.
// Returns false when gen was superseded by an invalidation.
func (s *MemoryStore) ReplaceCourses(owner domain.OwnerKey, gen uint64, courses []domain.Course) bool {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.current(owner, gen)
	if !ok {
		return false
	}
	rec.courses = slices.Clone(courses)
	rec.populated = true
	return true
}

// ReplaceDivisions swaps one course's division list. It also marks the record
// populated, even when courses were never written.
func (s *MemoryStore) ReplaceDivisions(owner domain.OwnerKey, gen uint64, courseID int64, divisions []domain.Division) bool {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.current(owner, gen)
	if !ok {
		return false
	}
	divs := slices.Clone(divisions)
	if divs == nil {
		divs = []domain.Division{}
	}
	rec.divisions[courseID] = divs
	rec.populated = true
	return true
}

// ReplaceContents swaps one division's content list and marks the record populated.
func (s *MemoryStore) ReplaceContents(owner domain.OwnerKey, gen uint64, divisionID int64, contents []domain.Content) bool {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.current(owner, gen)
	if !ok {
		return false
	}
	items := slices.Clone(contents)
	if items == nil {
		items = []domain.Content{}
	}
	rec.contents[divisionID] = items
	rec.populated = true
	return true
}

// UpsertCourse replaces the course with the same ID in place, or appends it.
// It does not mark the record populated.
func (s *MemoryStore) UpsertCourse(owner domain.OwnerKey, course domain.Course) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ensureLocked(owner)
	for i := range rec.courses {
		if rec.courses[i].ID == course.ID {
			rec.courses[i] = course
			return
		}
	}
	rec.courses = append(rec.courses, course)
}

// === Population slot ===

// BeginPopulation claims the population slot for the record's current
// generation. alreadyRunning is true when a cycle of that generation holds it.
func (s *MemoryStore) BeginPopulation(owner domain.OwnerKey) (uint64, bool) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ensureLocked(owner)
	if rec.pending == rec.generation {
		return rec.generation, true
	}
	rec.pending = rec.generation
	return rec.generation, false
}

// EndPopulation releases the slot if it is still held by gen. A failed cycle
// that was not superseded also rolls the record back to unpopulated, so the
// next read starts over instead of serving a half-written tree.
func (s *MemoryStore) EndPopulation(owner domain.OwnerKey, gen uint64, err error) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return
	}
	if rec.pending == gen {
		rec.pending = 0
	}
	if err != nil && rec.generation == gen {
		rec.courses = nil
		rec.divisions = make(map[int64][]domain.Division)
		rec.contents = make(map[int64][]domain.Content)
		rec.populated = false
	}
}

// === Invalidation ===

// Clear removes the owner's entire record.
func (s *MemoryStore) Clear(owner domain.OwnerKey) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, owner)
}

// DropDivisions removes one course's divisions. Missing keys are a no-op.
func (s *MemoryStore) DropDivisions(owner domain.OwnerKey, courseID int64) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return
	}
	delete(rec.divisions, courseID)
	s.supersedeLocked(rec)
}

// DropContents removes one division's contents. Missing keys are a no-op.
func (s *MemoryStore) DropContents(owner domain.OwnerKey, divisionID int64) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return
	}
	delete(rec.contents, divisionID)
	s.supersedeLocked(rec)
}

// DropAllContents empties the content index of the owner's record.
func (s *MemoryStore) DropAllContents(owner domain.OwnerKey) {
	owner = owner.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return
	}
	rec.contents = make(map[int64][]domain.Content)
	s.supersedeLocked(rec)
}

// supersedeLocked moves the record to a fresh generation so writes from
// cycles started before the invalidation are discarded.
func (s *MemoryStore) supersedeLocked(rec *record) {
	rec.generation = s.nextGen()
}
