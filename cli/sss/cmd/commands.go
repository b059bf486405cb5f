package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sss-org/sss-engine/keyvaluedb/memorydb"
	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem/stablecoin"
	"github.com/sss-org/sss-engine/types"
)

func newCommandsCmd(baseConfig *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Lists the command types and their multisig governance policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := state.NewStore(memorydb.New())
			if err != nil {
				return err
			}
			sys, err := stablecoin.NewTxSystem(store, baseConfig.observe)
			if err != nil {
				return err
			}
			cmds := sys.Commands()
			names := make([]string, 0, len(cmds))
			for name := range cmds {
				names = append(names, name)
			}
			slices.Sort(names)
			out := cmd.OutOrStdout()
			for _, name := range names {
				attrs := "-"
				if attr := types.AttributesFor(name); attr != nil {
					attrs = fmt.Sprintf("%T", attr)
				}
				fmt.Fprintf(out, "%-24s %-9s %s\n", name, cmds[name], attrs)
			}
			return nil
		},
	}
}
