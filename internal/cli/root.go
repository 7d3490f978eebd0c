// Package cli implements the rolelinkd command tree: the directory service
// plus admin commands for querying and seeding it. The link core itself is
// a library embedded by the game-server host, not a standalone process.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rolelink/rolelink/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rolelinkd",
		Short: "Identity-directory service and admin tools for rolelink",
		Long: `rolelinkd runs the companion identity-directory service that durably
records which game accounts are linked to which Discord identities, and
provides admin commands for querying and seeding it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			if cfgPath == "" {
				cfg = config.Default()
				return nil
			}
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML config file")

	rootCmd.AddCommand(newDirectoryCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newHashTokenCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
