package multisig

import (
	"fmt"
	"slices"

	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeInitializeMultisig(cmd *types.Command, attr *types.MultisigAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	if _, err := accounts.Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	_, found, err := accounts.MultisigConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: multisig of %s", types.ErrAlreadyInitialized, cmd.Mint)
	}

	cfg := &types.MultisigConfig{
		Mint:      cmd.Mint,
		Threshold: attr.Threshold,
		Signers:   slices.Clone(attr.Signers),
	}
	if err := accounts.PutMultisigConfig(cfg); err != nil {
		return err
	}
	exeCtx.Emit(&types.ConfigUpdated{
		Mint:      cmd.Mint,
		Field:     "multisig",
		NewValue:  configString(cfg),
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

/*
executeUpdateMultisig replaces the signer set and threshold. Allowed only as
an instruction of an executed proposal. Approvals of pending proposals given
by removed signers stop counting.
*/
func (m *Module) executeUpdateMultisig(cmd *types.Command, attr *types.MultisigAttributes, exeCtx txsystem.ExecutionContext) error {
	if !exeCtx.Governed() {
		return fmt.Errorf("%w: multisig can be updated only through a proposal", types.ErrUnauthorized)
	}
	accounts := exeCtx.Accounts()
	cfg, err := config(accounts, cmd.Mint)
	if err != nil {
		return err
	}
	old := configString(cfg)
	cfg.Threshold = attr.Threshold
	cfg.Signers = slices.Clone(attr.Signers)
	if err := accounts.PutMultisigConfig(cfg); err != nil {
		return err
	}
	exeCtx.Emit(&types.ConfigUpdated{
		Mint:      cmd.Mint,
		Field:     "multisig",
		OldValue:  old,
		NewValue:  configString(cfg),
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}
