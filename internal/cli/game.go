package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameActionCmd("ask", "question", "Ask a yes/no question about the secret word"))
	cmd.AddCommand(newGameActionCmd("guess", "guess", "Guess the secret word"))
	cmd.AddCommand(newGameHintCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a game on today's word",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "ai" && mode != "friend" {
				return fmt.Errorf("--mode must be ai or friend")
			}

			var result Game
			if err := client.Post(cmd.Context(), "/api/v1/games", map[string]string{"mode": mode}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "ai", "Opponent: ai or friend")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a friend's game by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(cmd.Context(), "/api/v1/games/join", map[string]string{"code": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get(cmd.Context(), "/api/v1/games/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// submitAction posts an action; version < 0 means no expected version
func submitAction(ctx context.Context, gameID, actionType, content string, version int64) error {
	req := map[string]any{"type": actionType}
	if content != "" {
		req["content"] = content
	}
	if version >= 0 {
		req["expected_version"] = version
	}

	var result ActionResult
	if err := client.Post(ctx, "/api/v1/games/"+gameID+"/actions", req, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}

func newGameActionCmd(use, actionType, short string) *cobra.Command {
	var version int64

	cmd := &cobra.Command{
		Use:   use + " <game-id> <text...>",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitAction(cmd.Context(), args[0], actionType, strings.Join(args[1:], " "), version)
		},
	}

	cmd.Flags().Int64Var(&version, "expect-version", -1, "Reject the action if the game has moved past this version")

	return cmd
}

func newGameHintCmd() *cobra.Command {
	var version int64

	cmd := &cobra.Command{
		Use:   "hint <game-id>",
		Short: "Spend your turn on a suggested question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitAction(cmd.Context(), args[0], "hint", "", version)
		},
	}

	cmd.Flags().Int64Var(&version, "expect-version", -1, "Reject the action if the game has moved past this version")

	return cmd
}

func newGameWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Poll a game and print new messages until it ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchGame(cmd.Context(), args[0], interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", cfg.PollInterval, "Polling interval")

	return cmd
}

func watchGame(ctx context.Context, gameID string, interval time.Duration) error {
	out := NewOutput(cfg.Output)
	seen := map[string]string{}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var g Game
		if err := client.Get(ctx, "/api/v1/games/"+gameID, &g); err != nil {
			return err
		}

		for _, m := range g.Messages {
			resp := ""
			if m.Response != nil {
				resp = *m.Response
			}
			// Print again once a pending message gets its response
			if prev, ok := seen[m.ID]; ok && prev == resp {
				continue
			}
			seen[m.ID] = resp
			out.Print(m)
		}

		if g.Status == "completed" {
			out.PrintMessage(gameOverLine(g))
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func gameOverLine(g Game) string {
	if g.WinnerID == nil {
		return fmt.Sprintf("Game over. The word was %q", g.SecretWord)
	}
	return fmt.Sprintf("Game over. %s won, the word was %q", *g.WinnerID, g.SecretWord)
}
