package token

import (
	"fmt"
	"strconv"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeUpdateFeatures(cmd *types.Command, attr *types.UpdateFeaturesAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	hc, err := accounts.HookConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	if !attr.Features.Has(types.FeaturePermanentDelegate) && hc.PermanentDelegate != nil {
		return fmt.Errorf("%w: permanent delegate feature can't be disabled while delegate %s is set", types.ErrInvalidConfig, hc.PermanentDelegate)
	}

	var old types.Features
	err = accounts.Apply(state.UpdateStablecoin(cmd.Mint, func(sc *types.StablecoinState) error {
		old = sc.Features
		sc.Features = attr.Features
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(configUpdated(cmd, exeCtx, "features", featuresString(old), featuresString(attr.Features)))
	return nil
}

func (m *Module) executeSetSupplyCap(cmd *types.Command, attr *types.SetSupplyCapAttributes, exeCtx txsystem.ExecutionContext) error {
	if _, err := exeCtx.Accounts().Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}

	var old uint64
	err := exeCtx.Accounts().Apply(state.UpdateStablecoin(cmd.Mint, func(sc *types.StablecoinState) error {
		if attr.SupplyCap != 0 {
			if attr.SupplyCap < sc.TotalSupply {
				return fmt.Errorf("%w: supply cap %d is less than total supply %d", types.ErrSupplyCapExceeded, attr.SupplyCap, sc.TotalSupply)
			}
			if sc.EpochQuota > attr.SupplyCap {
				return fmt.Errorf("%w: epoch quota %d exceeds supply cap %d", types.ErrInvalidConfig, sc.EpochQuota, attr.SupplyCap)
			}
		}
		old = sc.SupplyCap
		sc.SupplyCap = attr.SupplyCap
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(configUpdated(cmd, exeCtx, "supply_cap", strconv.FormatUint(old, 10), strconv.FormatUint(attr.SupplyCap, 10)))
	return nil
}

/*
executeTransferAuthority makes the new authority the owner of the mint: the
MASTER role is moved from the current authority to the new one.
*/
func (m *Module) executeTransferAuthority(cmd *types.Command, attr *types.TransferAuthorityAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	sc, err := accounts.Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	old := sc.Authority
	if old == attr.NewAuthority {
		return fmt.Errorf("%w: %s is already the authority", types.ErrInvalidInstruction, old)
	}

	now := exeCtx.Now()
	revoked := &types.RolesUpdated{Mint: cmd.Mint, Target: old, Revoked: types.RoleMaster, UpdatedBy: cmd.Caller, Timestamp: now}
	granted := &types.RolesUpdated{Mint: cmd.Mint, Target: attr.NewAuthority, Granted: types.RoleMaster, UpdatedBy: cmd.Caller, Timestamp: now}
	sc.Authority = attr.NewAuthority
	err = accounts.Apply(
		func(a *state.Accounts) error { return a.PutStablecoin(sc) },
		state.UpdateHookConfig(cmd.Mint, func(hc *types.HookConfig) error {
			hc.Authority = attr.NewAuthority
			return nil
		}),
		state.UpdateRoles(cmd.Mint, old, func(ra *types.RoleAccount) error {
			ra.Roles = ra.Roles.Revoke(types.RoleMaster)
			revoked.Roles = ra.Roles
			return nil
		}),
		state.UpdateRoles(cmd.Mint, attr.NewAuthority, func(ra *types.RoleAccount) error {
			ra.Roles = ra.Roles.Grant(types.RoleMaster)
			granted.Roles = ra.Roles
			return nil
		}),
	)
	if err != nil {
		return err
	}
	exeCtx.Emit(
		configUpdated(cmd, exeCtx, "authority", old.String(), attr.NewAuthority.String()),
		revoked,
		granted,
	)
	return nil
}

func configUpdated(cmd *types.Command, exeCtx txsystem.ExecutionContext, field, oldValue, newValue string) *types.ConfigUpdated {
	return &types.ConfigUpdated{
		Mint:      cmd.Mint,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	}
}

func featuresString(f types.Features) string {
	return strconv.FormatUint(uint64(f), 10)
}
