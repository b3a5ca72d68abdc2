package cmd

import (
	"github.com/spf13/cobra"

	"github.com/efuentes/sophia/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "sophia",
	Short: "AI lesson tutor",
	Long:  "Sophia — an AI tutor that guides a learner through structured lessons, turn by turn, with rubric-grounded mastery tracking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SOPHIA_DB env var)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then SOPHIA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
