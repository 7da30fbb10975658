package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/app"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/session"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		subject, _ := cmd.Flags().GetString("subject")
		skipWelcome, _ := cmd.Flags().GetBool("skip-welcome")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		catalog, err := e.catalog()
		if err != nil {
			return err
		}
		student, err := e.store.StudentRepo().GetStudent(ctx, studentID)
		if err != nil {
			return err
		}

		opts := app.Options{
			Student:     *student,
			Subject:     subject,
			Planner:     session.NewPlanner(catalog, e.store.ProgressRepo()),
			Progress:    e.store.ProgressRepo(),
			Sessions:    e.store.SessionRepo(),
			Recorder:    session.NewRecorder(e.store.SessionRepo(), e.store.ProgressRepo(), e.store.ComplianceRepo(), e.log),
			Generator:   problemgen.NewGenerator(nil),
			Logger:      e.log,
			SkipWelcome: skipWelcome,
		}

		// Lessons still run without AI; hints fall back to canned text.
		if t, err := e.tutor(ctx); err != nil {
			e.log.Warn("tutor unavailable", "error", err)
		} else {
			opts.Tutor = t
		}

		return app.Run(ctx, opts)
	},
}

func init() {
	practiceCmd.Flags().String("student", "", "Student ID")
	practiceCmd.Flags().String("subject", "", "Limit lessons to one subject")
	practiceCmd.Flags().Bool("skip-welcome", false, "Go straight to the lesson list")
	_ = practiceCmd.MarkFlagRequired("student")
}
