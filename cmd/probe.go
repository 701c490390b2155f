package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/core"
)

func newProbeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe HEX",
		Short: "Report which protocol's heuristic claims a packet",
		Long: `Run the registered heuristics over a packet given as hex and print the
first protocol that claims it. Exits non-zero when none does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHex(args[0])
			if err != nil {
				return err
			}
			engine, err := newEngine(g.cfg)
			if err != nil {
				return err
			}
			name, ok := engine.Probe(data)
			if !ok {
				return fmt.Errorf("no heuristic claims the %d-byte packet: %w", len(data), core.ErrProtocolNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
