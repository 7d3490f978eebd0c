package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rolelink/rolelink/internal/directory/httpdir"
	"github.com/rolelink/rolelink/internal/model"
)

// newLookupCmd queries the directory for a player's linked identity
func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <player-id>",
		Short: "Look up the linked identity for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[0])
			}

			client := httpdir.New(cfg.Directory.URL, cfg.Directory.Token)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			tag, err := client.Lookup(ctx, model.PlayerID(id))
			if errors.Is(err, model.ErrLinkNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "player %d is not linked\n", id)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "player %d is linked to %s\n", id, tag)
			return nil
		},
	}
}

// newLinkCmd seeds a link record directly, for migrations and support cases
func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <player-id> <identity-tag>",
		Short: "Record a link between a player and an identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[0])
			}

			client := httpdir.New(cfg.Directory.URL, cfg.Directory.Token)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := client.Store(ctx, model.PlayerID(id), model.IdentityTag(args[1])); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "linked player %d to %s\n", id, args[1])
			return nil
		},
	}
}
