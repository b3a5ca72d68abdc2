package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/llm"
	"github.com/efuentes/sophia/internal/tutor"
	"github.com/efuentes/sophia/internal/turn"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume a lesson conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		lessonID, _ := cmd.Flags().GetInt("lesson")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		provider, err := llm.NewProviderFromEnv(ctx, s.Events())
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		svc := tutor.NewService(s, provider, tutor.DefaultConfig())
		sess, created, err := svc.OpenSession(ctx, user, lessonID)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}

		l, err := lesson.Get(lessonID)
		if err != nil {
			return err
		}
		fmt.Printf("── %s ──\n", l.Title)
		if created {
			fmt.Println(sess.State.LastQuestionShown)
		} else {
			fmt.Printf("Resuming at moment %d/%d, mastery %.0f%%.\n",
				sess.State.CurrentMomentID+1, l.MomentCount(), sess.State.AggregateMastery*100)
			fmt.Println(sess.State.LastQuestionShown)
		}

		return chatLoop(ctx, svc, sess.ID)
	},
}

func init() {
	chatCmd.Flags().String("user", defaultUser(), "Learner identifier")
	chatCmd.Flags().Int("lesson", 1, "Lesson ID")
}

func chatLoop(ctx context.Context, svc *tutor.Service, sessionID string) error {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !in.Scan() {
			return in.Err()
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			fmt.Println("See you next time.")
			return nil
		}

		res, err := svc.ProcessTurn(ctx, tutor.Input{SessionID: sessionID, StudentAnswer: text})
		if errors.Is(err, tutor.ErrSessionCompleted) {
			fmt.Println("This lesson is already completed. Run `sophia stats` to see your results.")
			return nil
		}
		if err != nil {
			// Provider failures are recoverable: the answer was not
			// consumed and can be resubmitted.
			fmt.Fprintf(os.Stderr, "error: %v (your answer was not evaluated, try again)\n", err)
			continue
		}

		fmt.Println("\n" + res.Message)
		for _, h := range res.Hints {
			fmt.Println("  hint: " + h)
		}
		if res.Intent == turn.IntentAnswer {
			fmt.Printf("  [%s · mastery %.0f%%]\n", res.Evaluation, res.State.AggregateMastery*100)
		}
		if res.State.IsCompleted {
			return nil
		}
	}
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "learner"
}
