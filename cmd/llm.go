package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efuentes/sophia/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM provider configuration and usage",
}

var llmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active provider configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			if discovered, ok := llm.DiscoverConfig(); ok {
				cfg = discovered
			} else {
				return fmt.Errorf("no usable provider: %w", err)
			}
		}
		fmt.Printf("provider: %s\n", cfg.Provider)
		switch cfg.Provider {
		case "openai":
			fmt.Printf("model: %s\n", cfg.OpenAI.Model)
		case "anthropic":
			fmt.Printf("model: %s\n", cfg.Anthropic.Model)
		case "gemini":
			fmt.Printf("model: %s\n", cfg.Gemini.Model)
		}
		fmt.Printf("timeout: %s, retries: %d\n", cfg.Timeout, cfg.Retry.MaxAttempts)
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded model usage per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		usage, err := s.LLMUsageByModel(context.Background())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-28s  %-6s  %-6s  %-9s  %-9s  %s\n",
			"Model", "Reqs", "Fail", "TokIn", "TokOut", "AvgMs")
		fmt.Println(strings.Repeat("─", 72))
		for _, u := range usage {
			model := u.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-28s  %-6d  %-6d  %-9d  %-9d  %d\n",
				model, u.Requests, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmStatusCmd)
	llmCmd.AddCommand(llmUsageCmd)
}
