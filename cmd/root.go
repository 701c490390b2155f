// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/log"
	"firestige.xyz/dissector/internal/protocols"
)

// globalOptions is shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string
	cfg        *config.GlobalConfig
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "dissector",
		Short: "Binary packet dissector for Art-Net, RDM and DMX512",
		Long: `dissector decodes entertainment-lighting control traffic into field trees.

It reads capture files or live interfaces, strips Ethernet/IP/UDP, dissects
Art-Net (with embedded RDM and DMX512) and prints or publishes the result
as text, JSON or YAML.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configFile)
			if err != nil {
				return err
			}
			if g.logLevel != "" {
				cfg.Log.Level = g.logLevel
			}
			if err := log.Init(cfg.Log); err != nil {
				return err
			}
			g.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "",
		"config file path (built-in defaults when empty)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"override log.level: debug, info, warn or error")

	root.AddCommand(
		newDissectCmd(g),
		newCaptureCmd(g),
		newProtocolsCmd(g),
		newProbeCmd(g),
		newValidateCmd(g),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// newEngine builds an engine holding the built-in protocols configured by
// cfg.
func newEngine(cfg *config.GlobalConfig) (*decoder.Engine, error) {
	reg, err := protocols.NewRegistry(protocols.Options(cfg.Protocols))
	if err != nil {
		return nil, fmt.Errorf("register protocols: %w", err)
	}
	return decoder.New(reg, decoder.Options{
		MaxDepth:     cfg.Engine.MaxDepth,
		AuditUnknown: cfg.Engine.AuditUnknown,
	}), nil
}
