package domain

// PopulateStage names the level of the catalog tree being fetched
type PopulateStage string

const (
	StageCourses   PopulateStage = "courses"
	StageDivisions PopulateStage = "divisions"
	StageContents  PopulateStage = "contents"
)

// PopulateProgress reports progress during a population cycle.
// Emitted once per fetched collection: (divisions, 1, 4), (divisions, 2, 4), ...
type PopulateProgress struct {
	Owner  OwnerKey
	Stage  PopulateStage
	Loaded int
	Total  int
	Done   bool  // whole cycle settled
	Error  error // set when the cycle failed
}

// PopulateObserver receives progress updates during population.
type PopulateObserver interface {
	OnProgress(progress PopulateProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(PopulateProgress) {}
