package token

import (
	"fmt"
	"math/bits"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/quota"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeMint(cmd *types.Command, attr *types.MintAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.mint(cmd, []types.MintAttributes{*attr}, exeCtx)
}

func (m *Module) executeBatchMint(cmd *types.Command, attr *types.BatchMintAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.mint(cmd, attr.Entries, exeCtx)
}

/*
mint credits the entries in order. Minter and epoch quotas and the supply cap
are checked per entry against the running totals so a batch fails as a whole
when any prefix of it would violate a limit.
*/
func (m *Module) mint(cmd *types.Command, entries []types.MintAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	sc, err := accounts.Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if sc.IsPaused {
		return fmt.Errorf("%w: stablecoin %s is paused", types.ErrContractPaused, cmd.Mint)
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMinter|types.RoleMaster); err != nil {
		return err
	}

	now := exeCtx.Now()
	createFrozen := sc.Features.Has(types.FeatureDefaultFrozenAccounts)
	events := make([]types.Event, 0, len(entries))
	for i, e := range entries {
		if err := quota.CheckAndConsume(accounts, cmd.Mint, cmd.Caller, e.Amount); err != nil {
			return entryErr(len(entries), i, err)
		}
		if err := quota.ConsumeEpoch(sc, e.Amount, now, exeCtx.EpochDuration()); err != nil {
			return entryErr(len(entries), i, err)
		}
		supply, carry := bits.Add64(sc.TotalSupply, e.Amount, 0)
		if carry != 0 {
			return entryErr(len(entries), i, fmt.Errorf("%w: total supply %d + %d", types.ErrMathOverflow, sc.TotalSupply, e.Amount))
		}
		if sc.SupplyCap != 0 && supply > sc.SupplyCap {
			return entryErr(len(entries), i, fmt.Errorf("%w: supply cap %d, total supply %d, requested %d", types.ErrSupplyCapExceeded, sc.SupplyCap, sc.TotalSupply, e.Amount))
		}
		sc.TotalSupply = supply

		err := accounts.Apply(state.UpdateTokenAccount(cmd.Mint, e.Recipient, createFrozen, func(acc *types.TokenAccount) error {
			if acc.IsFrozen {
				return types.ErrAccountFrozen
			}
			balance, carry := bits.Add64(acc.Balance, e.Amount, 0)
			if carry != 0 {
				return fmt.Errorf("%w: balance %d + %d", types.ErrMathOverflow, acc.Balance, e.Amount)
			}
			acc.Balance = balance
			return nil
		}))
		if err != nil {
			return entryErr(len(entries), i, err)
		}
		events = append(events, &types.TokensMinted{
			Mint:        cmd.Mint,
			Minter:      cmd.Caller,
			Recipient:   e.Recipient,
			Amount:      e.Amount,
			TotalSupply: supply,
			Timestamp:   now,
		})
	}
	if err := accounts.PutStablecoin(sc); err != nil {
		return err
	}
	exeCtx.Emit(events...)
	return nil
}

func entryErr(n, i int, err error) error {
	if n == 1 {
		return err
	}
	return fmt.Errorf("entry %d: %w", i, err)
}

func (m *Module) executeBurn(cmd *types.Command, attr *types.BurnAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	sc, err := accounts.Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if sc.IsPaused {
		return fmt.Errorf("%w: stablecoin %s is paused", types.ErrContractPaused, cmd.Mint)
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleBurner|types.RoleMaster); err != nil {
		return err
	}
	acc, found, err := accounts.TokenAccount(cmd.Mint, attr.Account)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: account %s doesn't exist", types.ErrInsufficientBalance, attr.Account)
	}
	if acc.IsFrozen {
		return fmt.Errorf("%w: %s", types.ErrAccountFrozen, attr.Account)
	}
	if acc.Balance < attr.Amount {
		return fmt.Errorf("%w: balance %d, burn amount %d", types.ErrInsufficientBalance, acc.Balance, attr.Amount)
	}
	if sc.TotalSupply < attr.Amount {
		// balances sum up to the total supply, can't happen unless the state is corrupt
		return fmt.Errorf("total supply %d is less than burn amount %d", sc.TotalSupply, attr.Amount)
	}

	acc.Balance -= attr.Amount
	sc.TotalSupply -= attr.Amount
	err = accounts.Apply(
		func(a *state.Accounts) error { return a.PutTokenAccount(acc) },
		func(a *state.Accounts) error { return a.PutStablecoin(sc) },
	)
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.TokensBurned{
		Mint:        cmd.Mint,
		Burner:      cmd.Caller,
		Account:     attr.Account,
		Amount:      attr.Amount,
		TotalSupply: sc.TotalSupply,
		Timestamp:   exeCtx.Now(),
	})
	return nil
}
