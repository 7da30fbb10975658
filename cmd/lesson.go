package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/session"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Validate and browse curriculum lessons",
}

var lessonValidateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Validate curriculum YAML files or directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			args = []string{e.cfg.Curriculum.Dir}
		}

		var failed int
		for _, path := range args {
			c, err := curriculum.LoadCatalog(path)
			if err == nil {
				err = c.Validate()
			}
			if err != nil {
				failed++
				fmt.Printf("✗ %s\n  %s\n", path, strings.ReplaceAll(err.Error(), "\n", "\n  "))
				continue
			}
			fmt.Printf("✓ %s (%d lessons)\n", path, len(c.Lessons()))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d paths failed validation", failed, len(args))
		}
		return nil
	},
}

var lessonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lessons (optionally filtered by grade or subject)",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		subject, _ := cmd.Flags().GetString("subject")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		c, err := e.catalog()
		if err != nil {
			return err
		}

		var lessons []curriculum.Lesson
		for _, l := range c.Lessons() {
			if cmd.Flags().Changed("grade") && l.Grade != grade {
				continue
			}
			if subject != "" && !strings.EqualFold(l.Subject, subject) {
				continue
			}
			lessons = append(lessons, l)
		}
		printLessons(lessons)
		return nil
	},
}

var lessonRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "List lessons whose prerequisites are mastered",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		subject, _ := cmd.Flags().GetString("subject")
		studentID, _ := cmd.Flags().GetString("student")
		masteredFlag, _ := cmd.Flags().GetStringSlice("mastered")

		var e *env
		var err error
		if studentID != "" {
			e, err = openEnv(cmd)
		} else {
			e, err = loadEnv(cmd)
		}
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.catalog()
		if err != nil {
			return err
		}

		mastered := curriculum.MasteredSet(masteredFlag...)
		if studentID != "" {
			ctx := cmd.Context()
			st, err := e.store.StudentRepo().GetStudent(ctx, studentID)
			if err != nil {
				return fmt.Errorf("get student: %w", err)
			}
			if !cmd.Flags().Changed("grade") {
				grade = st.GradeLevel
			}
			concepts, err := e.store.ProgressRepo().MasteredConcepts(ctx, studentID, session.DefaultMasteryThreshold)
			if err != nil {
				return fmt.Errorf("mastered concepts: %w", err)
			}
			for _, cpt := range concepts {
				mastered[cpt] = true
			}
		}

		lessons := c.Recommend(mastered, grade, subject)
		if len(lessons) == 0 {
			fmt.Println("No lessons available. Master some prerequisites first.")
			return nil
		}
		printLessons(lessons)
		return nil
	},
}

var lessonPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Suggest a mix of new, review and booster lessons for a student",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		subject, _ := cmd.Flags().GetString("subject")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		c, err := e.catalog()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := e.store.StudentRepo().GetStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}

		plan, err := session.NewPlanner(c, e.store.ProgressRepo()).BuildPlan(ctx, st.ID, st.GradeLevel, subject)
		if err != nil {
			return fmt.Errorf("build plan: %w", err)
		}
		if len(plan.Slots) == 0 {
			fmt.Println("Nothing to plan yet.")
			return nil
		}

		fmt.Printf("%-3s  %-10s  %-28s  %s\n", "#", "Category", "Lesson", "Title")
		fmt.Println(strings.Repeat("─", 80))
		for i, slot := range plan.Slots {
			fmt.Printf("%-3d  %-10s  %-28s  %s\n", i+1, slot.Category, truncate(slot.Lesson.ID, 28), slot.Lesson.Title)
		}
		return nil
	},
}

var lessonDifficultyCmd = &cobra.Command{
	Use:   "difficulty <lesson-id>",
	Short: "Show a lesson's difficulty score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		c, err := e.catalog()
		if err != nil {
			return err
		}

		l, ok := c.Lesson(args[0])
		if !ok {
			return fmt.Errorf("lesson %q not found", args[0])
		}
		fmt.Printf("%s  %.2f  (%d prerequisites, teaches %d)\n",
			l.ID, curriculum.CalculateLessonDifficulty(l), len(l.Prerequisites), len(l.Teaches))
		return nil
	},
}

func printLessons(lessons []curriculum.Lesson) {
	fmt.Printf("%-28s  %-32s  %5s  %-12s  %s\n", "ID", "Title", "Grade", "Subject", "Difficulty")
	fmt.Println(strings.Repeat("─", 96))
	for _, l := range lessons {
		fmt.Printf("%-28s  %-32s  %5d  %-12s  %.2f\n",
			truncate(l.ID, 28), truncate(l.Title, 32), l.Grade, l.Subject, curriculum.CalculateLessonDifficulty(l))
	}
	fmt.Printf("\n%d lessons\n", len(lessons))
}

func init() {
	lessonListCmd.Flags().Int("grade", 0, "Filter by grade level (0 = kindergarten)")
	lessonListCmd.Flags().String("subject", "", "Filter by subject")

	lessonRecommendCmd.Flags().Int("grade", 0, "Grade level (defaults to the student's grade)")
	lessonRecommendCmd.Flags().String("subject", "", "Subject (required)")
	lessonRecommendCmd.Flags().String("student", "", "Student ID whose mastered concepts count")
	lessonRecommendCmd.Flags().StringSlice("mastered", nil, "Additional mastered concepts")
	_ = lessonRecommendCmd.MarkFlagRequired("subject")

	lessonPlanCmd.Flags().String("student", "", "Student ID (required)")
	lessonPlanCmd.Flags().String("subject", "", "Subject (required)")
	_ = lessonPlanCmd.MarkFlagRequired("student")
	_ = lessonPlanCmd.MarkFlagRequired("subject")

	lessonCmd.AddCommand(lessonValidateCmd)
	lessonCmd.AddCommand(lessonListCmd)
	lessonCmd.AddCommand(lessonRecommendCmd)
	lessonCmd.AddCommand(lessonPlanCmd)
	lessonCmd.AddCommand(lessonDifficultyCmd)
}
