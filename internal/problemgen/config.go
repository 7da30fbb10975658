package problemgen

// Config tunes the LLM generator. Zero fields fall back to the defaults
// returned by DefaultConfig.
type Config struct {
	// Validators run in order on every generated problem; the first
	// failure rejects it.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps how many already-asked questions are listed
	// in the prompt.
	MaxPriorQuestions int
}

const (
	defaultGenMaxTokens      = 512
	defaultGenTemperature    = 0.7
	defaultMaxPriorQuestions = 8
)

// DefaultConfig returns the structural, answer-format and math-check
// validator chain with the default token and temperature settings.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Validators == nil {
		c.Validators = []Validator{&StructuralValidator{}, &AnswerFormatValidator{}, &MathCheckValidator{}}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultGenMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultGenTemperature
	}
	if c.MaxPriorQuestions <= 0 {
		c.MaxPriorQuestions = defaultMaxPriorQuestions
	}
	return c
}
