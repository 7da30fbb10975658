package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/store"
)

// chainCatalog has n grade 1 math lessons where lesson i teaches c<i> and
// requires c<i-1>.
func chainCatalog(n int) *curriculum.Catalog {
	c := curriculum.NewCatalog()
	for i := 0; i < n; i++ {
		l := curriculum.Lesson{
			ID:      fmt.Sprintf("l%d", i),
			Title:   fmt.Sprintf("Lesson %d", i),
			Grade:   1,
			Subject: "math",
			Teaches: []string{fmt.Sprintf("c%d", i)},
		}
		if i > 0 {
			l.Prerequisites = []string{fmt.Sprintf("c%d", i-1)}
		}
		c.AddLesson(l)
	}
	return c
}

func setMastery(t *testing.T, repo store.ProgressRepo, studentID, concept string, level float64) {
	t.Helper()
	ctx := context.Background()
	n, err := repo.GetOrCreateProgressNode(ctx, studentID, concept, "math")
	require.NoError(t, err)
	_, err = repo.UpdateProgress(ctx, n.ID, store.ProgressUpdate{MasteryLevel: level, DifficultyLevel: 0.5})
	require.NoError(t, err)
}

func slotIDs(p *Plan) []string {
	var out []string
	for _, s := range p.Slots {
		out = append(out, string(s.Category)+":"+s.Lesson.ID)
	}
	return out
}

func TestBuildPlan_NewStudent(t *testing.T) {
	st := openTestStore(t)
	student := seedStudent(t, st)
	p := NewPlanner(chainCatalog(4), st.ProgressRepo())

	plan, err := p.BuildPlan(context.Background(), student.ID, 1, "math")
	require.NoError(t, err)
	assert.Equal(t, []string{"frontier:l0"}, slotIDs(plan), "only lessons without unmet prerequisites")
}

func TestBuildPlan_MixesReviewAndBooster(t *testing.T) {
	st := openTestStore(t)
	student := seedStudent(t, st)
	repo := st.ProgressRepo()
	setMastery(t, repo, student.ID, "c0", 0.85)
	setMastery(t, repo, student.ID, "c1", 0.95)
	setMastery(t, repo, student.ID, "c2", 0.3)

	c := chainCatalog(4)
	c.AddLesson(curriculum.Lesson{ID: "side", Grade: 1, Subject: "math", Prerequisites: []string{"c0"}, Teaches: []string{"s0"}})
	p := NewPlanner(c, repo)

	plan, err := p.BuildPlan(context.Background(), student.ID, 1, "math")
	require.NoError(t, err)

	var frontier, review, booster []string
	for _, s := range plan.Slots {
		switch s.Category {
		case CategoryFrontier:
			frontier = append(frontier, s.Lesson.ID)
		case CategoryReview:
			review = append(review, s.Lesson.ID)
		case CategoryBooster:
			booster = append(booster, s.Lesson.ID)
		}
	}
	assert.ElementsMatch(t, []string{"l2", "side"}, frontier)
	require.Len(t, review, 1)
	require.Len(t, booster, 1)
	assert.NotEqual(t, review[0], booster[0])
	assert.Equal(t, "l1", booster[0], "highest mastery")
}

func TestBuildPlan_AllMasteredIsReview(t *testing.T) {
	st := openTestStore(t)
	student := seedStudent(t, st)
	repo := st.ProgressRepo()
	for _, c := range []string{"c0", "c1"} {
		setMastery(t, repo, student.ID, c, 1)
	}
	p := NewPlanner(chainCatalog(2), repo)

	plan, err := p.BuildPlan(context.Background(), student.ID, 1, "math")
	require.NoError(t, err)
	require.Len(t, plan.Slots, 2)
	for _, s := range plan.Slots {
		assert.Equal(t, CategoryReview, s.Category)
	}
}

func TestBuildPlan_OtherGradeIgnored(t *testing.T) {
	st := openTestStore(t)
	student := seedStudent(t, st)
	p := NewPlanner(chainCatalog(3), st.ProgressRepo())

	plan, err := p.BuildPlan(context.Background(), student.ID, 2, "math")
	require.NoError(t, err)
	assert.Empty(t, plan.Slots)
}

func TestProgressDelta_Apply(t *testing.T) {
	node := store.ProgressNode{TotalAttempts: 10, TotalCorrect: 5, DifficultyLevel: 0.5}

	t.Run("strong session", func(t *testing.T) {
		u := ProgressDelta{Attempts: 5, Correct: 5}.Apply(node)
		assert.Equal(t, 15, u.TotalAttempts)
		assert.Equal(t, 10, u.TotalCorrect)
		assert.InDelta(t, 10.0/15, u.MasteryLevel, 1e-9)
		assert.InDelta(t, 0.6, u.DifficultyLevel, 1e-9)
	})

	t.Run("weak session", func(t *testing.T) {
		u := ProgressDelta{Attempts: 5, Correct: 1}.Apply(node)
		assert.InDelta(t, 0.4, u.DifficultyLevel, 1e-9)
	})

	t.Run("middling session keeps difficulty", func(t *testing.T) {
		u := ProgressDelta{Attempts: 10, Correct: 7}.Apply(node)
		assert.InDelta(t, 0.5, u.DifficultyLevel, 1e-9)
	})

	t.Run("passing lifts mastery to threshold", func(t *testing.T) {
		u := ProgressDelta{Attempts: 2, Correct: 2, Passed: true, Threshold: 0.8}.Apply(node)
		assert.InDelta(t, 0.8, u.MasteryLevel, 1e-9)
	})

	t.Run("difficulty clamped", func(t *testing.T) {
		u := ProgressDelta{Attempts: 1, Correct: 1}.Apply(store.ProgressNode{DifficultyLevel: 1})
		assert.InDelta(t, 1.0, u.DifficultyLevel, 1e-9)
		u = ProgressDelta{Attempts: 1}.Apply(store.ProgressNode{DifficultyLevel: 0.1})
		assert.InDelta(t, 0.1, u.DifficultyLevel, 1e-9)
	})
}

func TestProgressUpdates_PerConcept(t *testing.T) {
	l := testLesson()
	l.Teaches = []string{"a", "b"}
	s, err := New(l, testGenerator())
	require.NoError(t, err)
	assert.Nil(t, s.ProgressUpdates(), "nothing answered")

	answerAll(t, s, true)
	ds := s.ProgressUpdates()
	require.Len(t, ds, 2)
	assert.Equal(t, "a", ds[0].Concept)
	assert.Equal(t, "math", ds[1].Subject)
	assert.Equal(t, 5, ds[1].Attempts)
	assert.True(t, ds[1].Passed)
}
