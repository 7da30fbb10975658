package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/session"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect concept mastery",
}

var progressShowCmd = &cobra.Command{
	Use:   "show <student-id>",
	Short: "Show a student's mastery per concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		st, err := e.store.StudentRepo().GetStudent(ctx, args[0])
		if err != nil {
			return err
		}
		nodes, err := e.store.ProgressRepo().StudentProgress(ctx, st.ID, subject)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Printf("%s has not practiced anything yet.\n", st.FirstName)
			return nil
		}

		fmt.Printf("%s, grade %d\n\n", st.FirstName, st.GradeLevel)
		fmt.Printf("%-28s  %-10s  %-12s  %9s  %5s  %s\n",
			"Concept", "Subject", "Mastery", "Correct", "Diff", "Last practiced")
		fmt.Println(strings.Repeat("─", 90))
		for _, n := range nodes {
			mark := " "
			if n.MasteryLevel >= session.DefaultMasteryThreshold {
				mark = "★"
			}
			fmt.Printf("%-28s  %-10s  %s %s  %4d/%-4d  %5.1f  %s\n",
				truncate(n.Concept, 28), truncate(n.Subject, 10),
				masteryBar(n.MasteryLevel), mark,
				n.TotalCorrect, n.TotalAttempts, n.DifficultyLevel,
				n.LastPracticed.Local().Format("2006-01-02"))
		}
		return nil
	},
}

// masteryBar renders level in [0,1] as ten cells.
func masteryBar(level float64) string {
	filled := int(level*10 + 0.5)
	filled = max(0, min(filled, 10))
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func init() {
	progressShowCmd.Flags().String("subject", "", "Only show one subject")

	progressCmd.AddCommand(progressShowCmd)
}
