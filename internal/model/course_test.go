package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    float64
	}{
		{name: "no reviews", ratings: nil, want: 0},
		{name: "single", ratings: []float64{4}, want: 4},
		{name: "mean", ratings: []float64{5, 4, 3}, want: 4},
		{name: "fractional", ratings: []float64{5, 4}, want: 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Course{Rating: 99} // stale value must be overwritten
			for _, r := range tt.ratings {
				c.Reviews = append(c.Reviews, Review{Rating: r})
			}
			c.RecomputeRating()
			assert.InDelta(t, tt.want, c.Rating, 1e-9)
		})
	}
}

func TestProjectedStripsHeavyFields(t *testing.T) {
	c := Course{
		Name: "Go from scratch",
		CourseData: []CourseData{{
			ID:         "cd-1",
			Title:      "Intro",
			VideoURL:   "https://videos.example/intro",
			Suggestion: "watch twice",
			Links:      []Link{{Title: "docs", URL: "https://go.dev"}},
			Questions:  []Question{{ID: "q-1", Text: "why?"}},
		}},
	}

	p := c.Projected()

	require.Len(t, p.CourseData, 1)
	got := p.CourseData[0]
	assert.Empty(t, got.VideoURL)
	assert.Empty(t, got.Suggestion)
	assert.Nil(t, got.Questions)
	assert.Nil(t, got.Links)
	assert.Equal(t, "Intro", got.Title)

	// The original aggregate is untouched.
	assert.Equal(t, "https://videos.example/intro", c.CourseData[0].VideoURL)
	assert.Len(t, c.CourseData[0].Questions, 1)
}

func TestNestedLookups(t *testing.T) {
	c := Course{
		CourseData: []CourseData{
			{ID: "cd-1", Questions: []Question{{ID: "q-1"}, {ID: "q-2"}}},
			{ID: "cd-2"},
		},
		Reviews: []Review{{ID: "r-1"}},
	}

	require.NotNil(t, c.Content("cd-2"))
	assert.Nil(t, c.Content("missing"))

	content := c.Content("cd-1")
	require.NotNil(t, content)
	assert.NotNil(t, content.Question("q-2"))
	assert.Nil(t, content.Question("missing"))

	assert.NotNil(t, c.Review("r-1"))
	assert.Nil(t, c.Review("missing"))
}

// Lookups must return addressable elements so appends through them
// mutate the aggregate.
func TestNestedLookupReturnsMutableElement(t *testing.T) {
	c := Course{CourseData: []CourseData{{ID: "cd-1"}}}
	c.Content("cd-1").Questions = append(c.Content("cd-1").Questions, Question{ID: "q-1"})
	require.Len(t, c.CourseData[0].Questions, 1)
}

func TestUserOwns(t *testing.T) {
	u := User{Courses: []string{"a", "b"}}
	assert.True(t, u.Owns("a"))
	assert.False(t, u.Owns("c"))

	var none User
	assert.False(t, none.Owns("a"))
}
