package token

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeInitialize(cmd *types.Command, attr *types.InitializeAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	exists, err := accounts.HasStablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: stablecoin %s", types.ErrAlreadyInitialized, cmd.Mint)
	}

	now := exeCtx.Now()
	sc := &types.StablecoinState{
		Mint:              cmd.Mint,
		Authority:         cmd.Caller,
		Name:              attr.Name,
		Symbol:            attr.Symbol,
		Decimals:          attr.Decimals,
		Features:          attr.Features,
		SupplyCap:         attr.SupplyCap,
		EpochQuota:        attr.EpochQuota,
		CurrentEpochStart: now,
		CreatedAt:         now,
	}
	hc := &types.HookConfig{
		Mint:                   cmd.Mint,
		Authority:              cmd.Caller,
		TransferFeeBasisPoints: attr.Hook.FeeBasisPoints,
		MaxTransferFee:         attr.Hook.MaxTransferFee,
		MinTransferAmount:      attr.Hook.MinTransferAmount,
		BlacklistEnabled:       attr.Hook.BlacklistEnabled,
		FeeCollector:           cmd.Caller,
	}
	if attr.Hook.FeeCollector != nil && !attr.Hook.FeeCollector.IsZero() {
		hc.FeeCollector = *attr.Hook.FeeCollector
	}
	if attr.PermanentDelegate != nil && !attr.PermanentDelegate.IsZero() {
		hc.PermanentDelegate = types.IdentityPtr(*attr.PermanentDelegate)
	}

	var roles types.Role
	err = accounts.Apply(
		func(a *state.Accounts) error { return a.PutStablecoin(sc) },
		func(a *state.Accounts) error { return a.PutHookConfig(hc) },
		state.UpdateRoles(cmd.Mint, cmd.Caller, func(ra *types.RoleAccount) error {
			ra.Roles = ra.Roles.Grant(types.RoleMaster)
			roles = ra.Roles
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("creating stablecoin state: %w", err)
	}

	exeCtx.Emit(
		&types.StablecoinInitialized{
			Mint:      cmd.Mint,
			Authority: cmd.Caller,
			Name:      sc.Name,
			Symbol:    sc.Symbol,
			Decimals:  sc.Decimals,
			Features:  sc.Features,
			Timestamp: now,
		},
		&types.RolesUpdated{
			Mint:      cmd.Mint,
			Target:    cmd.Caller,
			Roles:     roles,
			Granted:   types.RoleMaster,
			UpdatedBy: cmd.Caller,
			Timestamp: now,
		},
	)
	return nil
}
