package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		views, err := s.SessionOverviews(context.Background())
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(views) == 0 {
			fmt.Println("No sessions yet. Start one with `sophia chat`.")
			return nil
		}

		fmt.Printf("%-10s  %-7s  %-7s  %-8s  %-8s  %-7s  %s\n",
			"User", "Lesson", "Moment", "Answers", "Correct", "Mastery", "Done")
		fmt.Println(strings.Repeat("─", 66))
		for _, v := range views {
			done := ""
			if v.IsCompleted {
				done = "✓"
			}
			fmt.Printf("%-10s  %-7d  %-7d  %-8d  %-8d  %5.0f%%  %s\n",
				v.UserID, v.LessonID, v.CurrentMomentID, v.Evaluations,
				v.CorrectAnswers, v.AggregateMastery*100, done)
		}
		return nil
	},
}
