package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/store"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage students",
}

var studentAddCmd = &cobra.Command{
	Use:   "add <first-name>",
	Short: "Add a student to a family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		familyID, _ := cmd.Flags().GetString("family")
		age, _ := cmd.Flags().GetInt("age")
		grade, _ := cmd.Flags().GetInt("grade")
		color, _ := cmd.Flags().GetString("color")
		prefs, _ := cmd.Flags().GetStringSlice("prefers")

		var lp store.LearningPreferences
		for _, p := range prefs {
			switch strings.ToLower(p) {
			case "visual":
				lp.Visual = true
			case "audio":
				lp.Audio = true
			case "text":
				lp.Text = true
			default:
				return fmt.Errorf("unknown learning preference %q: use visual, audio or text", p)
			}
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if _, err := e.store.FamilyRepo().GetFamily(ctx, familyID); err != nil {
			return err
		}
		s := &store.Student{
			FamilyID:            familyID,
			FirstName:           args[0],
			Age:                 age,
			GradeLevel:          grade,
			LearningPreferences: lp,
			AvatarColor:         color,
		}
		if err := e.store.StudentRepo().CreateStudent(ctx, s); err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a family's students by grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		familyID, _ := cmd.Flags().GetString("family")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		students, err := e.store.StudentRepo().StudentsByFamily(cmd.Context(), familyID)
		if err != nil {
			return err
		}
		if len(students) == 0 {
			fmt.Println("No students in this family.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %3s  %5s  %s\n", "ID", "Name", "Age", "Grade", "Prefers")
		fmt.Println(strings.Repeat("─", 80))
		for _, s := range students {
			fmt.Printf("%-36s  %-16s  %3d  %5d  %s\n",
				s.ID, truncate(s.FirstName, 16), s.Age, s.GradeLevel, preferenceList(s.LearningPreferences))
		}
		return nil
	},
}

func preferenceList(p store.LearningPreferences) string {
	var out []string
	if p.Visual {
		out = append(out, "visual")
	}
	if p.Audio {
		out = append(out, "audio")
	}
	if p.Text {
		out = append(out, "text")
	}
	return strings.Join(out, ",")
}

func init() {
	studentAddCmd.Flags().String("family", "", "Family ID (required)")
	studentAddCmd.Flags().Int("age", 0, "Age in years")
	studentAddCmd.Flags().Int("grade", 0, "Grade level 0-12 (0 = kindergarten)")
	studentAddCmd.Flags().String("color", "", "Avatar color")
	studentAddCmd.Flags().StringSlice("prefers", nil, "Learning preferences: visual, audio, text")
	_ = studentAddCmd.MarkFlagRequired("family")

	studentListCmd.Flags().String("family", "", "Family ID (required)")
	_ = studentListCmd.MarkFlagRequired("family")

	studentCmd.AddCommand(studentAddCmd)
	studentCmd.AddCommand(studentListCmd)
}
