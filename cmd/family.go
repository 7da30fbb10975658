package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/store"
)

var familyCmd = &cobra.Command{
	Use:   "family",
	Short: "Manage family accounts",
}

var familyAddCmd = &cobra.Command{
	Use:   "add <parent-email>",
	Short: "Create a family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, _ := cmd.Flags().GetString("tier")
		state, _ := cmd.Flags().GetString("state")
		privacy, _ := cmd.Flags().GetString("privacy")

		switch tier {
		case store.TierFree, store.TierFamily, store.TierCoop:
		default:
			return fmt.Errorf("invalid tier %q: must be free, family or coop", tier)
		}
		switch privacy {
		case store.PrivacyLocalOnly, store.PrivacyCloudSync:
		default:
			return fmt.Errorf("invalid privacy mode %q: must be local_only or cloud_sync", privacy)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f := &store.Family{
			ParentEmail:      args[0],
			SubscriptionTier: tier,
			State:            strings.ToUpper(state),
			PrivacyMode:      privacy,
		}
		if err := e.store.FamilyRepo().CreateFamily(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Println(f.ID)
		return nil
	},
}

var familyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List families and their students",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		families, err := e.store.FamilyRepo().ListFamilies(ctx)
		if err != nil {
			return err
		}
		if len(families) == 0 {
			fmt.Println("No families yet. Create one with: homeschool family add <email>")
			return nil
		}

		fmt.Printf("%-36s  %-28s  %-7s  %-5s  %-10s  %s\n", "ID", "Parent", "Tier", "State", "Privacy", "Students")
		fmt.Println(strings.Repeat("─", 104))
		for _, f := range families {
			students, err := e.store.StudentRepo().StudentsByFamily(ctx, f.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%-36s  %-28s  %-7s  %-5s  %-10s  %d\n",
				f.ID, truncate(f.ParentEmail, 28), f.SubscriptionTier, f.State, f.PrivacyMode, len(students))
		}
		return nil
	},
}

func init() {
	familyAddCmd.Flags().String("tier", store.TierFree, "Subscription tier: free, family or coop")
	familyAddCmd.Flags().String("state", "", "Two-letter state code for compliance reporting")
	familyAddCmd.Flags().String("privacy", store.PrivacyLocalOnly, "Privacy mode: local_only or cloud_sync")

	familyCmd.AddCommand(familyAddCmd)
	familyCmd.AddCommand(familyListCmd)
}
