package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sss-org/sss-engine/keyvaluedb/boltdb"
	"github.com/sss-org/sss-engine/txsystem/stablecoin"
	"github.com/sss-org/sss-engine/types"
)

type queryFlags struct {
	engineFlags
	Mint identityFlag
}

func newQueryCmd(baseConfig *baseConfiguration) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Reads stablecoin state from the local state database",
	}
	cmd.PersistentFlags().StringVar(&flags.DBFile, "db", "", "state database file, relative path is relative from $SSS_HOME (default "+defaultStateDBFile+")")
	cmd.PersistentFlags().Var(&flags.Mint, "mint", "identity of the stablecoin mint")
	if err := cmd.MarkPersistentFlagRequired("mint"); err != nil {
		panic(err)
	}

	mintQuery := func(use, short string, f func(sys *stablecoin.TxSystem, mint types.Identity) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runQuery(cmd, baseConfig, flags, func(sys *stablecoin.TxSystem) (any, error) {
					return f(sys, flags.Mint.id)
				})
			},
		}
	}
	addressQuery := func(use, short string, f func(sys *stablecoin.TxSystem, mint, address types.Identity) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				address, err := types.ParseIdentity(args[0])
				if err != nil {
					return err
				}
				return runQuery(cmd, baseConfig, flags, func(sys *stablecoin.TxSystem) (any, error) {
					return f(sys, flags.Mint.id, address)
				})
			},
		}
	}

	cmd.AddCommand(
		mintQuery("mint", "Prints the stablecoin configuration and supply", func(sys *stablecoin.TxSystem, mint types.Identity) (any, error) {
			return sys.Stablecoin(mint)
		}),
		mintQuery("hook", "Prints the transfer hook configuration", func(sys *stablecoin.TxSystem, mint types.Identity) (any, error) {
			return sys.HookConfig(mint)
		}),
		mintQuery("multisig", "Prints the multisig configuration", func(sys *stablecoin.TxSystem, mint types.Identity) (any, error) {
			return sys.MultisigConfig(mint)
		}),
		mintQuery("proposals", "Prints all proposals of the mint", func(sys *stablecoin.TxSystem, mint types.Identity) (any, error) {
			return sys.Proposals(mint)
		}),
		addressQuery("roles <owner>", "Prints the roles granted to the owner", func(sys *stablecoin.TxSystem, mint, owner types.Identity) (any, error) {
			return sys.Roles(mint, owner)
		}),
		addressQuery("account <owner>", "Prints the token account of the owner", func(sys *stablecoin.TxSystem, mint, owner types.Identity) (any, error) {
			return sys.TokenAccount(mint, owner)
		}),
		addressQuery("minter <minter>", "Prints the quota of the minter", func(sys *stablecoin.TxSystem, mint, minter types.Identity) (any, error) {
			return sys.Minter(mint, minter)
		}),
		addressQuery("blacklist <address>", "Prints the blacklist entry of the address", func(sys *stablecoin.TxSystem, mint, address types.Identity) (any, error) {
			return sys.BlacklistEntry(mint, address)
		}),
		addressQuery("whitelist <address>", "Prints the whitelist entry of the address", func(sys *stablecoin.TxSystem, mint, address types.Identity) (any, error) {
			return sys.WhitelistEntry(mint, address)
		}),
		addressQuery("proposal <id>", "Prints the proposal and its approval status", func(sys *stablecoin.TxSystem, mint, id types.Identity) (any, error) {
			return sys.Proposal(mint, id)
		}),
	)
	return cmd
}

func runQuery(cmd *cobra.Command, base *baseConfiguration, flags *queryFlags, q func(sys *stablecoin.TxSystem) (any, error)) (rErr error) {
	eng, err := openEngine(base, &flags.engineFlags, boltdb.ReadOnly())
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, eng.Close()) }()

	v, err := q(eng.sys)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}
