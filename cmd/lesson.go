package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/efuentes/sophia/internal/lesson"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson [id]",
	Short: "Preview lesson structure",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, l := range lesson.All() {
				fmt.Printf("%d  %s (%d moments, %d targets)\n",
					l.ID, l.Title, l.MomentCount(), len(l.Targets))
			}
			return nil
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid lesson id %q", args[0])
		}
		l, err := lesson.Get(id)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n%s\n\n", l.Title, l.Description)
		fmt.Println("Targets:")
		for _, t := range l.Targets {
			fmt.Printf("  %d  %s (min mastery %.2f, weight %.1f)\n",
				t.ID, t.Title, t.MinMastery, t.EffectiveWeight())
		}
		fmt.Println("\nMoments:")
		for _, m := range l.Moments {
			fmt.Printf("  %d  %s → target %d\n      %s\n", m.ID, m.Title, m.PrimaryTargetID, m.Goal)
		}
		return nil
	},
}
