package diagnosis

// StuckAttempts is the number of wrong attempts on one problem after which
// the student is considered stuck.
const StuckAttempts = 3

// StuckClassifier flags repeated wrong answers to the same problem.
type StuckClassifier struct{}

func (c *StuckClassifier) Name() string { return "stuck" }

func (c *StuckClassifier) Classify(input *Input) (Category, float64) {
	if input.Attempt >= StuckAttempts {
		return CategoryStuck, 0.7
	}
	return "", 0
}
