package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Load the configuration given with --config, apply defaults, validate every
section and register the protocols with their options.

Examples:
  dissector validate -c /etc/dissector/config.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(g.cfg)
			if err != nil {
				return err
			}
			cfg := g.cfg
			fmt.Fprintf(cmd.OutOrStdout(), "VALID: source=%s workers=%d console=%t kafka=%t protocols=%d\n",
				cfg.Capture.Source,
				cfg.Pipeline.Workers,
				cfg.Reporters.Console.Enabled,
				cfg.Reporters.Kafka.Enabled,
				len(engine.Registry().Protocols()),
			)
			return nil
		},
	}
}
