package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sss-org/sss-engine/rpc"
)

func newExecCmd(baseConfig *baseConfiguration) *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "exec [command-file]",
		Short: "Executes command against the local state database",
		Long: `Executes JSON encoded command against the local state database and prints the receipt.
The command is read from the file given as argument, or from stdin when the argument is missing or "-":

  {"type": "mint", "mint": "<id>", "caller": "<id>", "attributes": {"recipient": "<id>", "amount": 1000}}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCommand(cmd, baseConfig, flags, args)
		},
	}
	flags.addFlags(cmd)
	return cmd
}

func execCommand(cmd *cobra.Command, base *baseConfiguration, flags *engineFlags, args []string) (rErr error) {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening command file: %w", err)
		}
		defer f.Close()
		in = f
	}
	command, err := rpc.DecodeCommand(in)
	if err != nil {
		return err
	}

	eng, err := openEngine(base, flags)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, eng.Close()) }()

	rcpt, err := eng.sys.Execute(cmd.Context(), command)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rpc.NewCommandResponse(rcpt))
}
