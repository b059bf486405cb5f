package token

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeFreeze(cmd *types.Command, attr *types.FreezeAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.setFrozen(cmd, attr, exeCtx, true)
}

func (m *Module) executeThaw(cmd *types.Command, attr *types.FreezeAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.setFrozen(cmd, attr, exeCtx, false)
}

func (m *Module) setFrozen(cmd *types.Command, attr *types.FreezeAttributes, exeCtx txsystem.ExecutionContext, frozen bool) error {
	accounts := exeCtx.Accounts()
	sc, err := accounts.Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if sc.IsPaused {
		return fmt.Errorf("%w: stablecoin %s is paused", types.ErrContractPaused, cmd.Mint)
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RolePauser|types.RoleMaster); err != nil {
		return err
	}

	// missing account is created, frozen when the mint has frozen accounts by default
	createFrozen := sc.Features.Has(types.FeatureDefaultFrozenAccounts)
	err = accounts.Apply(state.UpdateTokenAccount(cmd.Mint, attr.Account, createFrozen, func(acc *types.TokenAccount) error {
		switch {
		case frozen && acc.IsFrozen:
			return fmt.Errorf("%w: already frozen", types.ErrAccountFrozen)
		case !frozen && !acc.IsFrozen:
			return fmt.Errorf("%w: account is not frozen", types.ErrInvalidInstruction)
		}
		acc.IsFrozen = frozen
		return nil
	}))
	if err != nil {
		return err
	}

	if frozen {
		exeCtx.Emit(&types.AccountFrozen{Mint: cmd.Mint, Account: attr.Account, By: cmd.Caller, Timestamp: exeCtx.Now()})
	} else {
		exeCtx.Emit(&types.AccountThawed{Mint: cmd.Mint, Account: attr.Account, By: cmd.Caller, Timestamp: exeCtx.Now()})
	}
	return nil
}

func (m *Module) executePause(cmd *types.Command, _ *types.PauseAttributes, exeCtx txsystem.ExecutionContext) error {
	if err := m.setPaused(cmd, exeCtx, true); err != nil {
		return err
	}
	exeCtx.Emit(&types.StablecoinPaused{Mint: cmd.Mint, By: cmd.Caller, Timestamp: exeCtx.Now()})
	return nil
}

func (m *Module) executeUnpause(cmd *types.Command, _ *types.PauseAttributes, exeCtx txsystem.ExecutionContext) error {
	if err := m.setPaused(cmd, exeCtx, false); err != nil {
		return err
	}
	exeCtx.Emit(&types.StablecoinUnpaused{Mint: cmd.Mint, By: cmd.Caller, Timestamp: exeCtx.Now()})
	return nil
}

func (m *Module) setPaused(cmd *types.Command, exeCtx txsystem.ExecutionContext, paused bool) error {
	if _, err := exeCtx.Accounts().Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RolePauser|types.RoleMaster); err != nil {
		return err
	}
	return exeCtx.Accounts().Apply(state.UpdateStablecoin(cmd.Mint, func(sc *types.StablecoinState) error {
		switch {
		case paused && sc.IsPaused:
			return fmt.Errorf("%w: stablecoin %s is already paused", types.ErrContractPaused, cmd.Mint)
		case !paused && !sc.IsPaused:
			return fmt.Errorf("%w: stablecoin %s is not paused", types.ErrInvalidInstruction, cmd.Mint)
		}
		sc.IsPaused = paused
		return nil
	}))
}
