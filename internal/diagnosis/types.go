// Package diagnosis labels wrong answers with a likely cause so feedback can
// address it.
package diagnosis

import (
	"time"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// Category classifies a wrong answer.
type Category string

const (
	CategoryCareless     Category = "careless"
	CategorySpeedRush    Category = "speed-rush"
	CategoryStuck        Category = "stuck"
	CategoryUnclassified Category = "unclassified"
)

// Input holds what is known about a wrong answer.
type Input struct {
	Problem *curriculum.Problem
	Answer  string
	// ResponseTime is zero when the caller did not time the answer.
	ResponseTime time.Duration
	// Accuracy is the student's accuracy on the lesson so far (0.0-1.0),
	// counting first attempts only.
	Accuracy float64
	// Attempt is 1 for the first answer to the problem.
	Attempt   int
	HintsUsed int
}

// Result is the label given to a wrong answer.
type Result struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Classifier string   `json:"classifier,omitempty"`
}
