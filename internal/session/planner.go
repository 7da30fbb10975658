package session

import (
	"context"
	"sort"
	"time"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/store"
)

// PlanCategory represents the reason a lesson was included in the plan.
type PlanCategory string

const (
	CategoryFrontier PlanCategory = "frontier"
	CategoryReview   PlanCategory = "review"
	CategoryBooster  PlanCategory = "booster"
)

// PlanSlot is a single lesson in the plan.
type PlanSlot struct {
	Lesson   curriculum.Lesson
	Category PlanCategory
}

// Plan is the ordered list of lessons suggested for a student.
type Plan struct {
	Slots []PlanSlot
}

// DefaultTotalSlots is the default number of slots in a plan.
const DefaultTotalSlots = 5

// Planner suggests what a student should work on next.
type Planner struct {
	catalog   *curriculum.Catalog
	progress  store.ProgressRepo
	threshold float64
}

// NewPlanner creates a Planner. A concept counts as mastered at
// DefaultMasteryThreshold.
func NewPlanner(catalog *curriculum.Catalog, progress store.ProgressRepo) *Planner {
	return &Planner{catalog: catalog, progress: progress, threshold: DefaultMasteryThreshold}
}

// BuildPlan fills DefaultTotalSlots with a 60/30/10 mix: new lessons whose
// prerequisites are met, mastered lessons least recently practiced, and
// mastered lessons the student is strongest at. Unfilled review and booster
// slots go back to new lessons; with nothing new the plan is all review.
func (p *Planner) BuildPlan(ctx context.Context, studentID string, grade int, subject string) (*Plan, error) {
	nodes, err := p.progress.StudentProgress(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	byConcept := make(map[string]store.ProgressNode, len(nodes))
	var masteredIDs []string
	for _, n := range nodes {
		byConcept[n.Concept] = n
		if n.MasteryLevel >= p.threshold {
			masteredIDs = append(masteredIDs, n.Concept)
		}
	}
	mastered := curriculum.MasteredSet(masteredIDs...)

	frontierCount, reviewCount, boosterCount := 3, 1, 1
	frontier := p.catalog.Recommend(mastered, grade, subject)
	done := p.completedLessons(mastered, grade, subject)

	if len(done) == 0 {
		frontierCount, reviewCount, boosterCount = DefaultTotalSlots, 0, 0
	}
	if len(frontier) == 0 {
		reviewCount += frontierCount
		frontierCount = 0
	}

	var slots []PlanSlot
	for i := 0; i < min(frontierCount, len(frontier)); i++ {
		slots = append(slots, PlanSlot{Lesson: frontier[i], Category: CategoryFrontier})
	}

	review := selectReview(done, byConcept, reviewCount)
	for _, l := range review {
		slots = append(slots, PlanSlot{Lesson: l, Category: CategoryReview})
	}

	booster := selectBooster(done, byConcept, boosterCount, review)
	for _, l := range booster {
		slots = append(slots, PlanSlot{Lesson: l, Category: CategoryBooster})
	}

	// Redistribute unused review and booster slots to frontier.
	unused := reviewCount - len(review) + boosterCount - len(booster)
	for i := frontierCount; i < frontierCount+unused && i < len(frontier); i++ {
		slots = append(slots, PlanSlot{Lesson: frontier[i], Category: CategoryFrontier})
	}

	return &Plan{Slots: slots}, nil
}

// completedLessons are the grade and subject lessons whose concepts are all
// mastered.
func (p *Planner) completedLessons(mastered curriculum.ConceptSet, grade int, subject string) []curriculum.Lesson {
	var out []curriculum.Lesson
	for _, l := range p.catalog.Lessons() {
		if l.Grade != grade || l.Subject != subject || len(l.Teaches) == 0 {
			continue
		}
		all := true
		for _, c := range l.Teaches {
			if !mastered.Has(c) {
				all = false
				break
			}
		}
		if all {
			out = append(out, l)
		}
	}
	return out
}

// selectReview picks lessons least recently practiced.
func selectReview(done []curriculum.Lesson, nodes map[string]store.ProgressNode, count int) []curriculum.Lesson {
	type lessonTime struct {
		lesson curriculum.Lesson
		t      time.Time
	}
	candidates := make([]lessonTime, 0, len(done))
	for _, l := range done {
		var latest time.Time
		for _, c := range l.Teaches {
			if t := nodes[c].LastPracticed; t.After(latest) {
				latest = t
			}
		}
		candidates = append(candidates, lessonTime{lesson: l, t: latest})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].t.Before(candidates[j].t)
	})

	var out []curriculum.Lesson
	for i := 0; i < count && i < len(candidates); i++ {
		out = append(out, candidates[i].lesson)
	}
	return out
}

// selectBooster picks lessons with the highest mean mastery, skipping those
// already chosen for review.
func selectBooster(done []curriculum.Lesson, nodes map[string]store.ProgressNode, count int, skip []curriculum.Lesson) []curriculum.Lesson {
	type lessonAcc struct {
		lesson curriculum.Lesson
		acc    float64
	}
	taken := make(map[string]bool, len(skip))
	for _, l := range skip {
		taken[l.ID] = true
	}
	var candidates []lessonAcc
	for _, l := range done {
		if taken[l.ID] {
			continue
		}
		var sum float64
		for _, c := range l.Teaches {
			sum += nodes[c].MasteryLevel
		}
		candidates = append(candidates, lessonAcc{lesson: l, acc: sum / float64(len(l.Teaches))})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].acc != candidates[j].acc {
			return candidates[i].acc > candidates[j].acc
		}
		return candidates[i].lesson.ID < candidates[j].lesson.ID
	})

	var out []curriculum.Lesson
	for i := 0; i < count && i < len(candidates); i++ {
		out = append(out, candidates[i].lesson)
	}
	return out
}
