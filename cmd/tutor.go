package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Ask the AI tutor for hints, feedback and explanations",
}

var tutorHintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Get a Socratic hint for a problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		return withTutor(cmd, func(t tutor.Tutor, tc tutor.Context) error {
			h, err := t.GenerateHint(cmd.Context(), tc, level)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", tutor.HintLabel(h.Level), h.Text)
			return nil
		})
	},
}

var tutorAssessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Check an answer and get feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("answer")
		return withTutor(cmd, func(t tutor.Tutor, tc tutor.Context) error {
			fb, err := t.AssessAnswer(cmd.Context(), tc, answer)
			if err != nil {
				return err
			}
			mark := "✗"
			if fb.IsCorrect {
				mark = "✓"
			}
			fmt.Printf("%s %s\n%s\nnext: %s\n", mark, fb.Encouragement, fb.Text, fb.NextAction)
			return nil
		})
	},
}

var tutorExplainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the concept behind a problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTutor(cmd, func(t tutor.Tutor, tc tutor.Context) error {
			text, err := t.ExplainConcept(cmd.Context(), tc.Problem, tc.StudentAge)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		})
	},
}

var tutorInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show which tutor backend is in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.tutor(cmd.Context())
		if err != nil {
			return err
		}
		info := t.ModelInfo()
		fmt.Printf("Type:   %s\n", info.ModelType)
		fmt.Printf("Model:  %s\n", info.ModelName)
		if info.ModelSize != "" {
			fmt.Printf("Size:   %s\n", info.ModelSize)
		}
		fmt.Printf("Speed:  %s\n", info.EstimatedSpeed)
		return nil
	},
}

// withTutor builds the tutor and the problem context from flags and runs fn.
func withTutor(cmd *cobra.Command, fn func(tutor.Tutor, tutor.Context) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	tc, err := tutorContextFromFlags(cmd)
	if err != nil {
		return err
	}
	t, err := e.tutor(cmd.Context())
	if err != nil {
		return err
	}
	return fn(t, tc)
}

func tutorContextFromFlags(cmd *cobra.Command) (tutor.Context, error) {
	question, _ := cmd.Flags().GetString("question")
	correct, _ := cmd.Flags().GetString("correct")
	typ, _ := cmd.Flags().GetString("type")
	options, _ := cmd.Flags().GetStringSlice("options")
	attempts, _ := cmd.Flags().GetStringSlice("attempt")
	age, _ := cmd.Flags().GetInt("age")
	grade, _ := cmd.Flags().GetInt("grade")
	topic, _ := cmd.Flags().GetString("topic")

	if question == "" {
		return tutor.Context{}, fmt.Errorf("--question is required")
	}

	p := curriculum.Problem{
		ID:            "cli-" + uuid.NewString(),
		Type:          typ,
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
	}
	var prev []curriculum.Answer
	for _, a := range attempts {
		prev = append(prev, curriculum.NewAnswer(p, a, time.Duration(0), 0))
	}
	return tutor.Context{
		Problem:          p,
		PreviousAttempts: prev,
		StudentAge:       age,
		StudentGrade:     grade,
		Topic:            topic,
	}, nil
}

func addProblemFlags(c *cobra.Command) {
	c.Flags().String("question", "", "Problem text (required)")
	c.Flags().String("correct", "", "Correct answer")
	c.Flags().String("type", "", "Problem type, e.g. addition")
	c.Flags().StringSlice("options", nil, "Multiple-choice options")
	c.Flags().StringSlice("attempt", nil, "Previous wrong attempts")
	c.Flags().Int("age", 0, "Student age")
	c.Flags().Int("grade", 0, "Student grade")
	c.Flags().String("topic", "", "Lesson topic")
}

func init() {
	for _, c := range []*cobra.Command{tutorHintCmd, tutorAssessCmd, tutorExplainCmd} {
		addProblemFlags(c)
	}
	tutorHintCmd.Flags().Int("level", 1, "Hint level 1-3")
	tutorAssessCmd.Flags().String("answer", "", "Student answer")

	tutorCmd.AddCommand(tutorHintCmd)
	tutorCmd.AddCommand(tutorAssessCmd)
	tutorCmd.AddCommand(tutorExplainCmd)
	tutorCmd.AddCommand(tutorInfoCmd)
}
