package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProtocolsCmd(g *globalOptions) *cobra.Command {
	var opcodes bool
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "List the registered protocols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(g.cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tPORTS\tHEURISTIC\tOPCODES")
			for _, p := range engine.Registry().Protocols() {
				ports := make([]string, len(p.Ports))
				for i, port := range p.Ports {
					ports[i] = strconv.Itoa(int(port))
				}
				portList := strings.Join(ports, ",")
				if portList == "" {
					portList = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\n", p.Name, p.Title, portList, p.Probe != nil, len(p.Opcodes))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !opcodes {
				return nil
			}
			for _, p := range engine.Registry().Protocols() {
				if len(p.Opcodes) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s opcodes:\n", p.Title)
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, op := range p.Opcodes {
					fmt.Fprintf(w, "  %#06x\t%s\n", op.Code, op.Name)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opcodes, "opcodes", false, "also print each protocol's opcode table")
	return cmd
}
