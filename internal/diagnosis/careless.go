package diagnosis

import (
	"math"
	"strconv"
	"strings"
)

// CarelessAccuracyThreshold is the lesson accuracy a student must exceed
// for a wrong first attempt to count as a slip.
const CarelessAccuracyThreshold = 0.80

// CarelessClassifier flags wrong first attempts from accurate students.
// When both answers are numbers the wrong one must also be close: within
// 10% of the correct answer, or off by one.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(input *Input) (Category, float64) {
	if input.Attempt > 1 || input.Accuracy <= CarelessAccuracyThreshold {
		return "", 0
	}
	if input.Problem != nil && !nearMiss(input.Problem.CorrectAnswer, input.Answer) {
		return "", 0
	}
	return CategoryCareless, 0.8
}

func nearMiss(correct, answer string) bool {
	want, err1 := strconv.ParseFloat(strings.TrimSpace(correct), 64)
	got, err2 := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err1 != nil || err2 != nil {
		return true
	}
	return math.Abs(want-got) <= math.Max(1, math.Abs(want)*0.1)
}
