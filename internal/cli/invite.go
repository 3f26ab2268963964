package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go/internal/api/response"
)

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite commands",
	}

	cmd.AddCommand(newInviteAcceptCmd())

	return cmd
}

func newInviteAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <invite-id>",
		Short: "Accept an invite and join the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.AcceptInviteResponse

			if err := client.Post("/api/v1/invites/"+args[0]+"/accept", nil, &result); err != nil {
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
}
