package curriculum

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog indexes lessons, units and curricula loaded from YAML files.
type Catalog struct {
	mu         sync.RWMutex
	lessons    map[string]Lesson
	units      map[string]Unit
	curricula  map[string]Curriculum
	duplicates []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		lessons:   make(map[string]Lesson),
		units:     make(map[string]Unit),
		curricula: make(map[string]Curriculum),
	}
}

// LoadCatalog walks root and loads every .yaml/.yml file, routing each by
// its top-level key. Files with an unrecognised top-level key are skipped.
// Parse failures from all files are reported together.
func LoadCatalog(root string) (*Catalog, error) {
	c := NewCatalog()
	var problems []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if err := c.loadFile(path); err != nil {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			problems = append(problems, fmt.Sprintf("%s: %v", rel, err))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading curriculum from %s: %w", root, err)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Kind: "catalog", Violations: problems}
	}
	return c, nil
}

func (c *Catalog) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var head map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("malformed YAML: %w", err)
	}

	switch {
	case has(head, "lesson"):
		l, err := ParseLesson(raw)
		if err != nil {
			return err
		}
		c.AddLesson(*l)
	case has(head, "unit"):
		u, err := ParseUnit(raw)
		if err != nil {
			return err
		}
		c.AddUnit(*u)
	case has(head, "curriculum"):
		cur, err := ParseCurriculum(raw)
		if err != nil {
			return err
		}
		c.AddCurriculum(*cur)
	}
	return nil
}

func has(m map[string]yaml.Node, key string) bool {
	_, ok := m[key]
	return ok
}

// AddLesson indexes a lesson. A repeated id replaces the earlier lesson and
// is reported by Validate.
func (c *Catalog) AddLesson(l Lesson) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lessons[l.ID]; ok {
		c.duplicates = append(c.duplicates, fmt.Sprintf("duplicate lesson id %q", l.ID))
	}
	c.lessons[l.ID] = l
}

// AddUnit indexes a unit.
func (c *Catalog) AddUnit(u Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.units[u.ID]; ok {
		c.duplicates = append(c.duplicates, fmt.Sprintf("duplicate unit id %q", u.ID))
	}
	c.units[u.ID] = u
}

// AddCurriculum indexes a curriculum.
func (c *Catalog) AddCurriculum(cur Curriculum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.curricula[cur.ID]; ok {
		c.duplicates = append(c.duplicates, fmt.Sprintf("duplicate curriculum id %q", cur.ID))
	}
	c.curricula[cur.ID] = cur
}

// Lesson returns a lesson by id.
func (c *Catalog) Lesson(id string) (Lesson, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lessons[id]
	return l, ok
}

// Unit returns a unit by id.
func (c *Catalog) Unit(id string) (Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.units[id]
	return u, ok
}

// Curriculum returns a curriculum by id.
func (c *Catalog) Curriculum(id string) (Curriculum, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cur, ok := c.curricula[id]
	return cur, ok
}

// Lessons returns every lesson ordered by grade, subject, unit and id.
func (c *Catalog) Lessons() []Lesson {
	c.mu.RLock()
	out := make([]Lesson, 0, len(c.lessons))
	for _, l := range c.lessons {
		out = append(out, l)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.ID < b.ID
	})
	return out
}

// UnitLessons returns the lessons of a unit in the unit's declared order.
// Unknown lesson ids are skipped.
func (c *Catalog) UnitLessons(unitID string) ([]Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.units[unitID]
	if !ok {
		return nil, fmt.Errorf("unit not found: %q", unitID)
	}
	out := make([]Lesson, 0, len(u.Lessons))
	for _, id := range u.Lessons {
		if l, ok := c.lessons[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// Recommend runs RecommendedLessons over the whole catalog.
func (c *Catalog) Recommend(mastered ConceptSet, grade int, subject string) []Lesson {
	return RecommendedLessons(c.Lessons(), mastered, grade, subject)
}

// Validate checks cross-document references and reports every problem at
// once: duplicate ids, dangling unit/lesson references and prerequisite
// cycles between lessons.
func (c *Catalog) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	errs := append([]string(nil), c.duplicates...)

	for _, u := range c.units {
		for _, id := range u.Lessons {
			if _, ok := c.lessons[id]; !ok {
				errs = append(errs, fmt.Sprintf("unit %q references unknown lesson %q", u.ID, id))
			}
		}
	}
	for _, cur := range c.curricula {
		for _, id := range cur.Units {
			if _, ok := c.units[id]; !ok {
				errs = append(errs, fmt.Sprintf("curriculum %q references unknown unit %q", cur.ID, id))
			}
		}
	}
	if len(c.units) > 0 {
		for _, l := range c.lessons {
			if _, ok := c.units[l.Unit]; !ok {
				errs = append(errs, fmt.Sprintf("lesson %q belongs to unknown unit %q", l.ID, l.Unit))
			}
		}
	}

	if cyclic := c.cyclicLessons(); len(cyclic) > 0 {
		errs = append(errs, fmt.Sprintf("prerequisite cycle among lessons: %s", strings.Join(cyclic, ", ")))
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Strings(errs)
	return &ValidationError{Kind: "catalog", Violations: errs}
}

// cyclicLessons runs Kahn's algorithm over the lesson dependency graph, in
// which a lesson depends on every other lesson that teaches one of its
// prerequisites. Lessons left with unmet dependencies sit on or behind a cycle.
func (c *Catalog) cyclicLessons() []string {
	taughtBy := make(map[string][]string)
	for _, l := range c.lessons {
		for _, concept := range l.Teaches {
			taughtBy[concept] = append(taughtBy[concept], l.ID)
		}
	}

	inDegree := make(map[string]int, len(c.lessons))
	dependents := make(map[string][]string)
	for _, l := range c.lessons {
		seen := make(map[string]bool)
		for _, p := range l.Prerequisites {
			for _, t := range taughtBy[p] {
				if t == l.ID || seen[t] {
					continue
				}
				seen[t] = true
				inDegree[l.ID]++
				dependents[t] = append(dependents[t], l.ID)
			}
		}
	}

	var queue []string
	for id := range c.lessons {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited == len(c.lessons) {
		return nil
	}

	var cyclic []string
	for id, deg := range inDegree {
		if deg > 0 {
			cyclic = append(cyclic, id)
		}
	}
	sort.Strings(cyclic)
	return cyclic
}
