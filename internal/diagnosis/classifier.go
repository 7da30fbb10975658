package diagnosis

// Classifier is a rule over a wrong answer. It returns a category and
// confidence (0.0-1.0), or ("", 0) if the rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(input *Input) (Category, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// A fast wrong answer is more likely a rush than a slip, even for accurate
// students, so speed-rush runs first.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SpeedRushClassifier{},
		&StuckClassifier{},
		&CarelessClassifier{},
	}
}

// Run executes classifiers in order and returns the first match. When no
// rule applies the result is CategoryUnclassified with zero confidence.
func Run(classifiers []Classifier, input *Input) Result {
	for _, c := range classifiers {
		cat, conf := c.Classify(input)
		if cat != "" {
			return Result{Category: cat, Confidence: conf, Classifier: c.Name()}
		}
	}
	return Result{Category: CategoryUnclassified}
}

// Classify runs the default classifiers.
func Classify(input *Input) Result {
	return Run(DefaultClassifiers(), input)
}

// Nudge is a short student-facing suggestion for a category. It is empty
// for unclassified answers.
func Nudge(c Category) string {
	switch c {
	case CategorySpeedRush:
		return "Take your time and read the problem again."
	case CategoryCareless:
		return "You know this one! Double-check your work."
	case CategoryStuck:
		return "This one is tricky. A hint might help."
	default:
		return ""
	}
}
