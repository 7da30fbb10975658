package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record learning sessions done away from the app",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Open a learning session for a student and lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		lessonID, _ := cmd.Flags().GetString("lesson")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		c, err := e.catalog()
		if err != nil {
			return err
		}
		l, ok := c.Lesson(lessonID)
		if !ok {
			return fmt.Errorf("lesson %q not found", lessonID)
		}

		ctx := cmd.Context()
		if _, err := e.store.StudentRepo().GetStudent(ctx, studentID); err != nil {
			return err
		}
		row := &store.LearningSession{
			StudentID: studentID,
			LessonID:  l.ID,
			Subject:   l.Subject,
			Topic:     l.Title,
		}
		if err := e.store.SessionRepo().CreateSession(ctx, row); err != nil {
			return err
		}
		fmt.Println(row.ID)
		return nil
	},
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete <session-id>",
	Short: "Close a session with its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attempted, _ := cmd.Flags().GetInt("attempted")
		correct, _ := cmd.Flags().GetInt("correct")
		hints, _ := cmd.Flags().GetInt("hints")
		minutes, _ := cmd.Flags().GetInt("minutes")

		if correct > attempted {
			return fmt.Errorf("--correct (%d) cannot exceed --attempted (%d)", correct, attempted)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		repo := e.store.SessionRepo()
		open, err := repo.GetSession(ctx, args[0])
		if err != nil {
			return err
		}
		if open.CompletedAt != nil {
			return fmt.Errorf("session %s already completed", open.ID)
		}

		spent := time.Duration(minutes) * time.Minute
		if !cmd.Flags().Changed("minutes") {
			spent = time.Since(open.StartedAt)
		}
		row, err := repo.CompleteSession(ctx, open.ID, session.NewResult(attempted, correct, hints, spent))
		if err != nil {
			return err
		}
		printSession(*row)
		return nil
	},
}

var sessionRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List a student's most recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rows, err := e.store.SessionRepo().RecentSessions(cmd.Context(), studentID, limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-24s  %-10s  %5s  %5s  %6s  %s\n",
			"Started", "Lesson", "Subject", "Score", "Hints", "Min", "Flag")
		fmt.Println(strings.Repeat("─", 90))
		for _, r := range rows {
			flag := ""
			switch {
			case r.CompletedAt == nil:
				flag = "open"
			case r.StruggleDetected:
				flag = "struggle"
			}
			fmt.Printf("%-19s  %-24s  %-10s  %4.0f%%  %5d  %6d  %s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(r.LessonID, 24), truncate(r.Subject, 10),
				r.Accuracy*100, r.AIHintsUsed, (r.TimeSpentSeconds+59)/60, flag)
		}
		return nil
	},
}

func printSession(r store.LearningSession) {
	fmt.Printf("Session:   %s\n", r.ID)
	fmt.Printf("Lesson:    %s (%s)\n", r.LessonID, r.Subject)
	fmt.Printf("Problems:  %d/%d correct (%.0f%%)\n", r.ProblemsCorrect, r.ProblemsAttempted, r.Accuracy*100)
	fmt.Printf("Hints:     %d\n", r.AIHintsUsed)
	fmt.Printf("Time:      %s\n", (time.Duration(r.TimeSpentSeconds) * time.Second).String())
	if r.StruggleDetected {
		fmt.Println("Struggle:  yes, consider reviewing prerequisites")
	}
}

func init() {
	sessionStartCmd.Flags().String("student", "", "Student ID (required)")
	sessionStartCmd.Flags().String("lesson", "", "Lesson ID (required)")
	_ = sessionStartCmd.MarkFlagRequired("student")
	_ = sessionStartCmd.MarkFlagRequired("lesson")

	sessionCompleteCmd.Flags().Int("attempted", 0, "Problems attempted")
	sessionCompleteCmd.Flags().Int("correct", 0, "Problems answered correctly")
	sessionCompleteCmd.Flags().Int("hints", 0, "Hints used")
	sessionCompleteCmd.Flags().Int("minutes", 0, "Minutes spent (default: time since start)")

	sessionRecentCmd.Flags().String("student", "", "Student ID (required)")
	sessionRecentCmd.Flags().IntP("limit", "n", 10, "Number of sessions to show")
	_ = sessionRecentCmd.MarkFlagRequired("student")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionCompleteCmd)
	sessionCmd.AddCommand(sessionRecentCmd)
}
