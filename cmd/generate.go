package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/problemgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate practice problems (no database)",
	Long: `Generate problems procedurally by --type, or with the configured LLM by --topic.

With --interactive each problem is asked on the terminal and checked. This is a
stateless tool: nothing is recorded.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("type", string(problemgen.TypeAddition), "Problem type: addition, subtraction, multiplication, division, fractions")
	generateCmd.Flags().String("topic", "", "Free-form topic for LLM generation (overrides --type)")
	generateCmd.Flags().Float64("difficulty", 0.5, "Difficulty in [0,1]")
	generateCmd.Flags().Int("grade", 1, "Grade level")
	generateCmd.Flags().IntP("count", "n", 5, "Number of problems")
	generateCmd.Flags().BoolP("interactive", "i", false, "Answer each problem on the terminal")
	generateCmd.Flags().Bool("json", false, "Print problems as JSON")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	typ, _ := cmd.Flags().GetString("type")
	topic, _ := cmd.Flags().GetString("topic")
	difficulty, _ := cmd.Flags().GetFloat64("difficulty")
	grade, _ := cmd.Flags().GetInt("grade")
	count, _ := cmd.Flags().GetInt("count")
	interactive, _ := cmd.Flags().GetBool("interactive")
	asJSON, _ := cmd.Flags().GetBool("json")

	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	next, closeFn, err := problemSource(cmd, typ, topic, difficulty, grade)
	if err != nil {
		return err
	}
	defer closeFn()

	if !interactive {
		var problems []curriculum.Problem
		for i := 0; i < count; i++ {
			p, err := next()
			if err != nil {
				return err
			}
			problems = append(problems, *p)
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(problems)
		}
		for i, p := range problems {
			fmt.Printf("%2d. %-40s  %s\n", i+1, p.Question, p.CorrectAnswer)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	var correct int
	for i := 1; i <= count; i++ {
		p, err := next()
		if err != nil {
			fmt.Printf("Problem %d: generation failed: %v\n\n", i, err)
			continue
		}

		fmt.Printf("── Problem %d/%d ──\n", i, count)
		fmt.Println(p.Question)
		for j, o := range p.Options {
			fmt.Printf("  %d) %s\n", j+1, o)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := optionByNumber(*p, strings.TrimSpace(scanner.Text()))
		if answer == "" {
			fmt.Println("(skipped)")
			fmt.Println()
			continue
		}

		if problemgen.CheckAnswer(answer, p.CorrectAnswer) {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Not quite.\033[0m Answer: %s\n", p.CorrectAnswer)
		}
		if p.Explanation != "" {
			fmt.Printf("Explanation: %s\n", p.Explanation)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, count)
	return nil
}

// problemSource returns a function yielding one problem per call, either
// procedural or from the LLM generator with dedup against earlier questions.
func problemSource(cmd *cobra.Command, typ, topic string, difficulty float64, grade int) (func() (*curriculum.Problem, error), func(), error) {
	if topic == "" {
		gen := problemgen.NewGenerator(nil)
		next := func() (*curriculum.Problem, error) {
			return gen.GenerateMathProblem(problemgen.ProblemType(typ), difficulty, grade)
		}
		return next, func() {}, nil
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	gen, err := e.llmGenerator(cmd.Context())
	if err != nil {
		e.Close()
		return nil, nil, fmt.Errorf("LLM provider: %w", err)
	}

	var prior []string
	next := func() (*curriculum.Problem, error) {
		p, err := gen.Generate(cmd.Context(), problemgen.GenerateInput{
			Topic:          topic,
			Grade:          grade,
			Difficulty:     difficulty,
			PriorQuestions: prior,
		})
		if err != nil {
			return nil, err
		}
		prior = append(prior, p.Question)
		return p, nil
	}
	return next, e.Close, nil
}

// optionByNumber lets "2" select the second option of a multiple-choice
// problem.
func optionByNumber(p curriculum.Problem, answer string) string {
	if len(p.Options) == 0 {
		return answer
	}
	var n int
	if _, err := fmt.Sscanf(answer, "%d", &n); err == nil && n >= 1 && n <= len(p.Options) && !p.HasOption(answer) {
		return p.Options[n-1]
	}
	return answer
}
