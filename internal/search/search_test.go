package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/lectern/internal/adapter"
	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/store"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	st := store.New()
	gen, _ := st.BeginPopulation("t1")
	require.True(t, st.ReplaceCourses("t1", gen, []domain.Course{
		{ID: 1, Name: "Go Fundamentals"},
		{ID: 2, Name: "Distributed Systems"},
	}))
	require.True(t, st.ReplaceDivisions("t1", gen, 1, []domain.Division{{ID: 10, Title: "Getting Started"}}))
	require.True(t, st.ReplaceContents("t1", gen, 10, []domain.Content{{ID: 100, Title: "Installing Go", Type: domain.ContentTypeVideo}}))
	st.EndPopulation("t1", gen, nil)

	return NewService(catalog.NewQueries(st), adapter.NullLogger())
}

func titles(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestSearch_MatchesAcrossLevels(t *testing.T) {
	svc := seeded(t)

	results := svc.Search("t1", "GO")
	assert.ElementsMatch(t, []string{"Go Fundamentals", "Installing Go"}, titles(results))
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}

	for _, r := range results {
		if content, ok := r.Item.(domain.Content); ok {
			assert.Equal(t, int64(100), content.ID)
			assert.Equal(t, Location{CourseID: 1, DivisionID: 10}, r.Location)
		}
	}
}

func TestSearch_GappedQuery(t *testing.T) {
	svc := seeded(t)

	results := svc.Search("t1", "dsys")
	require.Len(t, results, 1)
	assert.Equal(t, "Distributed Systems", results[0].Title)
	assert.Equal(t, Location{CourseID: 2}, results[0].Location)
}

func TestSearch_EmptyCases(t *testing.T) {
	svc := seeded(t)

	assert.Nil(t, svc.Search("t1", "   "))
	assert.Nil(t, svc.Search("nobody", "go"))
	assert.Empty(t, svc.Search("t1", "zzz"))
}
