package seizure

import (
	"fmt"
	"math/bits"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

var _ txsystem.Module = (*Module)(nil)

/*
Module implements forced transfer of tokens by the permanent delegate of the
mint. Seizure bypasses the compliance checks, the pause flag and frozen state
of the accounts, total supply is not affected.
*/
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdSeize: txsystem.NewTxHandler[types.SeizeAttributes](txsystem.GovernanceNone, m.executeSeize),
	}
}

func (m *Module) executeSeize(cmd *types.Command, attr *types.SeizeAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	hc, err := accounts.HookConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if !hc.IsDelegate(cmd.Caller) {
		return fmt.Errorf("%w: %s is not the permanent delegate", types.ErrUnauthorized, cmd.Caller)
	}
	if attr.Source == attr.Treasury {
		return fmt.Errorf("%w: treasury %s is the seized account", types.ErrSelfSeizure, attr.Treasury)
	}

	src, found, err := accounts.TokenAccount(cmd.Mint, attr.Source)
	if err != nil {
		return err
	}
	var balance uint64
	if found {
		balance = src.Balance
	}
	amount := balance
	if attr.Amount != nil {
		amount = *attr.Amount
	}
	switch {
	case amount == 0:
		return fmt.Errorf("%w: account %s has nothing to seize", types.ErrInvalidAmount, attr.Source)
	case amount > balance:
		return fmt.Errorf("%w: balance %d, seize amount %d", types.ErrInsufficientBalance, balance, amount)
	}

	src.Balance -= amount
	err = accounts.Apply(
		func(a *state.Accounts) error { return a.PutTokenAccount(src) },
		state.UpdateTokenAccount(cmd.Mint, attr.Treasury, false, func(acc *types.TokenAccount) error {
			b, carry := bits.Add64(acc.Balance, amount, 0)
			if carry != 0 {
				return fmt.Errorf("%w: treasury balance %d + %d", types.ErrMathOverflow, acc.Balance, amount)
			}
			acc.Balance = b
			return nil
		}),
	)
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.TokensSeized{
		Mint:      cmd.Mint,
		Source:    attr.Source,
		Treasury:  attr.Treasury,
		Amount:    amount,
		Reason:    attr.Reason,
		Seizer:    cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}
