package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bsgame",
		Short: "CLI tool for the battleship game API",
		Long: `bsgame is a CLI tool for interacting with the battleship game JSON API.

It covers creating games (against a friend or a bot), accepting invites,
placing a fleet, firing shots and streaming live game updates over SSE.

Credentials returned when a game is created or an invite accepted are saved
to the credentials file and used by every later command.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Fill credentials from file if not provided via flag/env
			if err := cfg.LoadCredentials(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.PlayerID, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BSGAME_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.CredentialsFile, "credentials-file", cfg.CredentialsFile, "Credentials file path (env: BSGAME_CREDENTIALS_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.GameID, "game", cfg.GameID, "Game ID (env: BSGAME_GAME)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Player ID (env: BSGAME_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Player token (env: BSGAME_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newInviteCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
