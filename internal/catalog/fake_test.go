package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mmcdole/lectern/internal/domain"
)

// fakeRepo is an in-memory domain.CourseRepository that records calls.
type fakeRepo struct {
	mu        sync.Mutex
	courses   map[domain.OwnerKey][]domain.Course
	divisions map[int64][]domain.Division
	contents  map[int64][]domain.Content

	coursesErr   error
	divisionsErr map[int64]error
	contentsErr  map[int64]error

	// coursesGate, when set, blocks ListCourses after it has read its data
	// until the channel is closed. coursesStarted receives once per call.
	coursesGate    chan struct{}
	coursesStarted chan struct{}

	calls []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:      make(map[domain.OwnerKey][]domain.Course),
		divisions:    make(map[int64][]domain.Division),
		contents:     make(map[int64][]domain.Content),
		divisionsErr: make(map[int64]error),
		contentsErr:  make(map[int64]error),
	}
}

// scenarioRepo returns owner t1 with courses 1 and 2, division 10 under
// course 1 and content 100 under division 10.
func scenarioRepo() *fakeRepo {
	r := newFakeRepo()
	r.courses["t1"] = []domain.Course{
		{ID: 1, Name: "Go Fundamentals", Price: 29.99},
		{ID: 2, Name: "Distributed Systems", Price: 0},
	}
	r.divisions[1] = []domain.Division{{ID: 10, Title: "Getting Started", Order: 1}}
	r.divisions[2] = []domain.Division{}
	r.contents[10] = []domain.Content{{
		ID:       100,
		Title:    "Installing Go",
		Type:     domain.ContentTypeVideo,
		Category: domain.CategoryLectures,
		FileURL:  "https://cdn.example.com/100.mp4",
		Duration: 312,
	}}
	return r
}

func (r *fakeRepo) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *fakeRepo) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *fakeRepo) CallCount(call string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (r *fakeRepo) SetCourses(owner domain.OwnerKey, courses []domain.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[owner] = courses
}

func (r *fakeRepo) SetDivisions(courseID int64, divs []domain.Division) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.divisions[courseID] = divs
}

func (r *fakeRepo) SetDivisionsErr(courseID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.divisionsErr[courseID] = err
}

func (r *fakeRepo) SetContentsErr(divisionID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contentsErr[divisionID] = err
}

func (r *fakeRepo) SetCoursesErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coursesErr = err
}

func (r *fakeRepo) ListCourses(ctx context.Context, owner domain.OwnerKey) ([]domain.Course, error) {
	r.record(fmt.Sprintf("listCourses(%s)", owner))

	r.mu.Lock()
	courses := slices.Clone(r.courses[owner])
	err := r.coursesErr
	gate := r.coursesGate
	started := r.coursesStarted
	r.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *fakeRepo) ListDivisions(ctx context.Context, courseID int64) ([]domain.Division, error) {
	r.record(fmt.Sprintf("listDivisions(%d)", courseID))
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.divisionsErr[courseID]; err != nil {
		return nil, err
	}
	return slices.Clone(r.divisions[courseID]), nil
}

func (r *fakeRepo) ListContents(ctx context.Context, divisionID int64) ([]domain.Content, error) {
	r.record(fmt.Sprintf("listContents(%d)", divisionID))
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.contentsErr[divisionID]; err != nil {
		return nil, err
	}
	return slices.Clone(r.contents[divisionID]), nil
}

// recordingObserver collects progress updates.
type recordingObserver struct {
	mu      sync.Mutex
	updates []domain.PopulateProgress
}

func (o *recordingObserver) OnProgress(p domain.PopulateProgress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, p)
}

func (o *recordingObserver) Updates() []domain.PopulateProgress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.updates)
}
