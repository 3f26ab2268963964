package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameBotCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGamePositionsCmd())
	cmd.AddCommand(newGameFireCmd())
	cmd.AddCommand(newGameMessageCmd())

	return cmd
}

func gamePath(suffix string) string {
	return "/api/v1/games/" + cfg.GameID + suffix
}

func saveCredentials(creds response.Credentials) error {
	if err := cfg.SaveCredentials(Credentials(creds)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	client.SetCredentials(creds.PlayerID, creds.Token)
	return nil
}

func newGameCreateCmd() *cobra.Command {
	var name, opponent string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and an invite for your opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"player1_name": name,
				"player2_name": opponent,
			}
			var result response.CreateGameResponse

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			if err := saveCredentials(result.Player); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (required)")
	cmd.Flags().StringVar(&opponent, "opponent", "", "Opponent's name (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("opponent")

	return cmd
}

func newGameBotCmd() *cobra.Command {
	var name, strategy string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Create a game against a bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"player_name": name,
				"strategy":    strategy,
			}
			var result response.CreateBotGameResponse

			if err := client.Post("/api/v1/games/bot", req, &result); err != nil {
				return err
			}

			if err := saveCredentials(result.Player); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (required)")
	cmd.Flags().StringVar(&strategy, "strategy", "random", "Bot strategy: random, hunt")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your view of the game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireGame(); err != nil {
				return err
			}

			var result response.Projection

			if err := client.Get(gamePath(""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGamePositionsCmd() *cobra.Command {
	var randomFleet bool
	var file string

	cmd := &cobra.Command{
		Use:   "positions [kind=x,y,h|v ...]",
		Short: "Place your fleet",
		Long: `Place your fleet. Give one placement per ship, for example

  bsgame game positions carrier=0,0,h battleship=2,0,h cruiser=4,0,h \
    submarine=6,0,h destroyer=8,0,h

x is the row and y the column of the bow; h runs along the row and v down the
column. Ships may not touch, not even diagonally.

Alternatively use --random, or --file with a JSON object mapping each ship to
its cells.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireGame(); err != nil {
				return err
			}

			positions, err := chooseFleet(randomFleet, file, args)
			if err != nil {
				return err
			}

			req := map[string]any{"positions": positions}
			if err := client.Put(gamePath("/positions"), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Fleet placed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&randomFleet, "random", false, "Place a random legal fleet")
	cmd.Flags().StringVar(&file, "file", "", "Read the fleet from a JSON file")

	return cmd
}

func newGameFireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fire <x> <y>",
		Short: "Fire a shot at the opponent's board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireGame(); err != nil {
				return err
			}

			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}

			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}

			req := map[string]int{"x": x, "y": y}
			var result response.MoveResponse

			if err := client.Post(gamePath("/moves"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <text>",
		Short: "Post the winner's message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireGame(); err != nil {
				return err
			}

			req := map[string]string{"message": strings.Join(args, " ")}
			if err := client.Post(gamePath("/winner-message"), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Message posted")
			return nil
		},
	}
}
