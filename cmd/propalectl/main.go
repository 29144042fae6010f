// Command propalectl runs maintenance tasks against a Propale deployment:
// schema migrations, first-run seeding and queue inspection.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/propale/propale/pkg/config"
	"github.com/propale/propale/pkg/util"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is filled before any subcommand runs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "propalectl",
		Short:         "Propale maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			e.cfg = cfg
			e.logger = util.NewLogger(cfg.Server.Env)
			return nil
		},
	}

	cmd.AddCommand(migrateCmd(e))
	cmd.AddCommand(seedCmd(e))
	cmd.AddCommand(queueCmd(e))

	return cmd
}
