package problemgen

import (
	"strings"
	"testing"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

func validProblem() *curriculum.Problem {
	return &curriculum.Problem{
		ID:            "ai-1",
		Type:          "ai-addition",
		Question:      "What is 345 + 278?",
		Options:       []string{"623", "613", "633", "523"},
		CorrectAnswer: "623",
		Explanation:   "345 + 278 = 623",
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Validator: "test-validator",
		Message:   "something went wrong",
		Retryable: true,
	}
	expected := `validator "test-validator": something went wrong`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestUnknownTypeError_Error(t *testing.T) {
	err := &UnknownTypeError{Type: "geometry"}
	if err.Error() != "unknown problem type: geometry" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Validators) != 3 {
		t.Fatalf("expected 3 validators, got %d", len(cfg.Validators))
	}
	names := []string{"structural", "answer-format", "math-check"}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
	if cfg.MaxTokens != 512 || cfg.Temperature != 0.7 || cfg.MaxPriorQuestions != 8 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *curriculum.Problem)
		ok     bool
	}{
		{"valid", func(p *curriculum.Problem) {}, true},
		{"empty question", func(p *curriculum.Problem) { p.Question = "" }, false},
		{"long question", func(p *curriculum.Problem) { p.Question = strings.Repeat("a", 501) }, false},
		{"empty explanation", func(p *curriculum.Problem) { p.Explanation = "" }, false},
		{"long explanation", func(p *curriculum.Problem) { p.Explanation = strings.Repeat("a", 1001) }, false},
		{"empty answer", func(p *curriculum.Problem) { p.CorrectAnswer = "" }, false},
		{"three options", func(p *curriculum.Problem) { p.Options = p.Options[:3] }, false},
		{"answer not in options", func(p *curriculum.Problem) { p.CorrectAnswer = "700" }, false},
		{"answer differs in case", func(p *curriculum.Problem) {
			p.Options = []string{"Red", "Blue", "Green", "Yellow"}
			p.CorrectAnswer = "blue"
		}, true},
	}
	v := &StructuralValidator{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validProblem()
			tc.mutate(p)
			err := v.Validate(p, GenerateInput{})
			if tc.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected failure")
				}
				if err.Validator != "structural" || !err.Retryable {
					t.Errorf("unexpected error shape: %+v", err)
				}
			}
		})
	}
}

func TestAnswerFormat(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		options []string
		ok      bool
	}{
		{"integer", "623", []string{"623", "613", "633", "523"}, true},
		{"leading zeros", "0623", []string{"0623", "613", "633", "523"}, false},
		{"decimal", "3.5", []string{"3.5", "3.6", "4", "2"}, true},
		{"trailing zero", "3.50", []string{"3.50", "3.6", "4", "2"}, false},
		{"fraction", "3/4", []string{"3/4", "1/2", "2/3", "1/4"}, true},
		{"unreduced fraction", "6/8", []string{"6/8", "1/2", "2/3", "1/4"}, false},
		{"whole fraction", "4/2", []string{"4/2", "1/2", "2/3", "1/4"}, false},
		{"decimal that is whole", "3.0", []string{"3.0", "3.5", "4", "2"}, false},
		{"zero denominator is text", "1/0", []string{"1/0", "1/2", "2/3", "1/4"}, true},
		{"text", "Blue Whale", []string{"Blue Whale", "Shark", "Orca", "Tuna"}, true},
		{"duplicate options", "4", []string{"4", " 4", "5", "6"}, false},
		{"empty option", "4", []string{"4", "", "5", "6"}, false},
	}
	v := &AnswerFormatValidator{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validProblem()
			p.CorrectAnswer = tc.answer
			p.Options = tc.options
			err := v.Validate(p, GenerateInput{})
			if tc.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected failure")
			}
		})
	}
}

func TestMathCheck(t *testing.T) {
	tests := []struct {
		question string
		answer   string
		ok       bool
	}{
		{"What is 345 + 278?", "623", true},
		{"What is 345 + 278?", "612", false},
		{"567 - 289 = ?", "278", true},
		{"What is 23 * 45?", "1035", true},
		{"What is 7 × 8?", "54", false},
		{"What is 144 ÷ 12?", "12", true},
		{"What is 1/2 + 1/4?", "3/4", true},
		{"What is 1/2 + 1/4?", "2/3", false},
		{"What is 1.5 + 2.25?", "3.75", true},
		{"What is 17 ÷ 5?", "3", false},
		{"What is 2 + 3 × 4?", "14", true},
		{"What is 9 / 0?", "0", true},
		{"Which animal is the largest?", "Blue whale", true},
		{"Sam has some apples and eats a few. How many are left?", "3", true},
	}
	v := &MathCheckValidator{}
	for _, tc := range tests {
		p := validProblem()
		p.Question = tc.question
		p.CorrectAnswer = tc.answer
		err := v.Validate(p, GenerateInput{})
		if tc.ok && err != nil {
			t.Errorf("%q / %q: expected pass, got %v", tc.question, tc.answer, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q / %q: expected failure", tc.question, tc.answer)
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	tests := []struct {
		input, correct string
		want           bool
	}{
		{"42", "42", true},
		{" 042 ", "42", true},
		{"43", "42", false},
		{"", "42", false},
		{"3.50", "3.5", true},
		{"2/4", "1/2", true},
		{"3/4", "1/2", false},
		{"BLUE  whale", "blue whale", true},
		{"0.5", "1/2", true},
		{"-3", "-3", true},
		{"half", "1/2", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(tc.input, tc.correct); got != tc.want {
			t.Errorf("CheckAnswer(%q, %q) = %v, want %v", tc.input, tc.correct, got, tc.want)
		}
	}
}
