package problemgen

// ProblemType names a procedural problem family.
type ProblemType string

const (
	TypeAddition       ProblemType = "addition"
	TypeSubtraction    ProblemType = "subtraction"
	TypeMultiplication ProblemType = "multiplication"
	TypeDivision       ProblemType = "division"
	TypeFractions      ProblemType = "fractions"
)

// idPrefix is the problem id prefix for each supported type.
var idPrefix = map[ProblemType]string{
	TypeAddition:       "add",
	TypeSubtraction:    "sub",
	TypeMultiplication: "mul",
	TypeDivision:       "div",
	TypeFractions:      "frac",
}

// Types returns the supported problem types in a stable order.
func Types() []ProblemType {
	return []ProblemType{
		TypeAddition,
		TypeSubtraction,
		TypeMultiplication,
		TypeDivision,
		TypeFractions,
	}
}

// GenerateInput holds the context for an LLM-generated problem.
type GenerateInput struct {
	// Topic is the subject of the problem, e.g. "telling time".
	Topic string

	// Grade is the student's grade level (0-12).
	Grade int

	// Difficulty in [0,1].
	Difficulty float64

	// PriorQuestions contains the question text already asked in this
	// session. Used for deduplication in the prompt.
	PriorQuestions []string
}
