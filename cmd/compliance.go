package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/store"
)

const dateFlagLayout = "2006-01-02"

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Daily instruction logs for state reporting",
}

var complianceLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Record (or replace) a day of instruction",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		minutes, _ := cmd.Flags().GetInt("minutes")
		subjects, _ := cmd.Flags().GetStringSlice("subjects")
		notes, _ := cmd.Flags().GetString("notes")
		dateVal, _ := cmd.Flags().GetString("date")

		day := time.Now()
		if dateVal != "" {
			var err error
			if day, err = time.Parse(dateFlagLayout, dateVal); err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateVal, err)
			}
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		l := &store.ComplianceLog{
			StudentID:       studentID,
			LogDate:         day,
			SubjectsStudied: subjects,
			TotalMinutes:    minutes,
			Notes:           notes,
		}
		if err := e.store.ComplianceRepo().LogDailyCompliance(cmd.Context(), l); err != nil {
			return err
		}
		fmt.Printf("Logged %d minutes on %s\n", l.TotalMinutes, l.LogDate.Format(dateFlagLayout))
		return nil
	},
}

var complianceSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize instruction days and minutes over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		fromVal, _ := cmd.Flags().GetString("from")
		toVal, _ := cmd.Flags().GetString("to")

		to := time.Now()
		from := to.AddDate(0, 0, -29)
		var err error
		if toVal != "" {
			if to, err = time.Parse(dateFlagLayout, toVal); err != nil {
				return fmt.Errorf("invalid --to %q: %w", toVal, err)
			}
		}
		if fromVal != "" {
			if from, err = time.Parse(dateFlagLayout, fromVal); err != nil {
				return fmt.Errorf("invalid --from %q: %w", fromVal, err)
			}
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sum, err := e.store.ComplianceRepo().ComplianceSummary(cmd.Context(), studentID, from, to)
		if err != nil {
			return err
		}

		fmt.Printf("%s to %s\n", sum.From.Format(dateFlagLayout), sum.To.Format(dateFlagLayout))
		fmt.Println(strings.Repeat("─", 72))
		for _, l := range sum.Logs {
			fmt.Printf("%s  %4d min  %-30s  %s\n",
				l.LogDate.Format(dateFlagLayout), l.TotalMinutes,
				truncate(strings.Join(l.SubjectsStudied, ", "), 30), l.Notes)
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("Days:         %d\n", sum.Days)
		fmt.Printf("Total:        %d min (%.1f h)\n", sum.TotalMinutes, float64(sum.TotalMinutes)/60)
		fmt.Printf("Per day:      %.1f min\n", sum.MinutesPerDay)
		fmt.Printf("Subjects:     %s\n", strings.Join(sum.Subjects, ", "))
		return nil
	},
}

func init() {
	complianceLogCmd.Flags().String("student", "", "Student ID (required)")
	complianceLogCmd.Flags().Int("minutes", 0, "Minutes of instruction")
	complianceLogCmd.Flags().StringSlice("subjects", nil, "Subjects studied")
	complianceLogCmd.Flags().String("notes", "", "Free-form notes")
	complianceLogCmd.Flags().String("date", "", "Day to log, YYYY-MM-DD (default: today)")
	_ = complianceLogCmd.MarkFlagRequired("student")

	complianceSummaryCmd.Flags().String("student", "", "Student ID (required)")
	complianceSummaryCmd.Flags().String("from", "", "First day, YYYY-MM-DD (default: 30 days ago)")
	complianceSummaryCmd.Flags().String("to", "", "Last day, YYYY-MM-DD (default: today)")
	_ = complianceSummaryCmd.MarkFlagRequired("student")

	complianceCmd.AddCommand(complianceLogCmd)
	complianceCmd.AddCommand(complianceSummaryCmd)
}
