package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "homeschool",
	Short: "Adaptive homeschool learning core",
	Long: "homeschool loads YAML curricula, generates practice problems and drives an AI tutor\n" +
		"(local Ollama model or hosted provider) for family learning sessions.",
	SilenceUsage: true,
}

// Execute runs the CLI. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides HOMESCHOOL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to homeschool.yaml (default: ./homeschool.yaml, then $XDG_CONFIG_HOME/homeschool)")
	rootCmd.PersistentFlags().String("curriculum", "", "Curriculum directory (overrides curriculum.dir)")

	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(familyCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(complianceCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(versionCmd)
}
