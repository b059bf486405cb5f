package compliance

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/types"
)

var _ txsystem.Module = (*Module)(nil)

/*
Module implements the transfer hook: compliance checked transfers, blacklist
and whitelist administration and the hook configuration.
*/
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdTransfer:             txsystem.NewTxHandler[types.TransferAttributes](txsystem.GovernanceNone, m.executeTransfer),
		types.CmdAddBlacklist:         txsystem.NewTxHandler[types.AddBlacklistAttributes](txsystem.GovernanceOptional, m.executeAddBlacklist),
		types.CmdRemoveBlacklist:      txsystem.NewTxHandler[types.RemoveBlacklistAttributes](txsystem.GovernanceOptional, m.executeRemoveBlacklist),
		types.CmdBatchBlacklist:       txsystem.NewTxHandler[types.BatchBlacklistAttributes](txsystem.GovernanceOptional, m.executeBatchBlacklist),
		types.CmdAddWhitelist:         txsystem.NewTxHandler[types.AddWhitelistAttributes](txsystem.GovernanceOptional, m.executeAddWhitelist),
		types.CmdRemoveWhitelist:      txsystem.NewTxHandler[types.RemoveWhitelistAttributes](txsystem.GovernanceOptional, m.executeRemoveWhitelist),
		types.CmdUpdateHookConfig:     txsystem.NewTxHandler[types.UpdateHookConfigAttributes](txsystem.GovernanceRequired, m.executeUpdateHookConfig),
		types.CmdSetPermanentDelegate: txsystem.NewTxHandler[types.SetPermanentDelegateAttributes](txsystem.GovernanceRequired, m.executeSetPermanentDelegate),
	}
}

func (m *Module) executeTransfer(cmd *types.Command, attr *types.TransferAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	sc, err := accounts.Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	hc, err := accounts.HookConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if cmd.Caller != attr.Source && !hc.IsDelegate(cmd.Caller) {
		return fmt.Errorf("%w: %s is not the owner of the source account", types.ErrUnauthorized, cmd.Caller)
	}

	verdict, err := CheckTransfer(accounts, exeCtx.Now(), TransferRequest{
		Mint:        cmd.Mint,
		Caller:      cmd.Caller,
		Source:      attr.Source,
		Destination: attr.Destination,
		Amount:      attr.Amount,
	})
	if err != nil {
		return fmt.Errorf("checking transfer compliance: %w", err)
	}
	if err := verdict.Err(); err != nil {
		return err
	}

	createFrozen := sc.Features.Has(types.FeatureDefaultFrozenAccounts)
	actions := []state.Action{
		state.UpdateTokenAccount(cmd.Mint, attr.Source, createFrozen, func(acc *types.TokenAccount) error {
			if acc.IsFrozen {
				return types.ErrAccountFrozen
			}
			if acc.Balance < attr.Amount {
				return fmt.Errorf("%w: balance %d, transfer amount %d", types.ErrInsufficientBalance, acc.Balance, attr.Amount)
			}
			acc.Balance -= attr.Amount
			return nil
		}),
		state.UpdateTokenAccount(cmd.Mint, attr.Destination, createFrozen, credit(verdict.NetAmount, true)),
	}
	if verdict.Fee > 0 {
		actions = append(actions,
			state.UpdateTokenAccount(cmd.Mint, hc.FeeCollector, false, credit(verdict.Fee, false)),
			state.UpdateHookConfig(cmd.Mint, func(hc *types.HookConfig) error {
				total, carry := bits.Add64(hc.TotalFeesCollected, verdict.Fee, 0)
				if carry != 0 {
					return fmt.Errorf("%w: total fees collected", types.ErrMathOverflow)
				}
				hc.TotalFeesCollected = total
				return nil
			}),
		)
	}
	if err := accounts.Apply(actions...); err != nil {
		return err
	}

	exeCtx.Emit(&types.TransferExecuted{
		Mint:          cmd.Mint,
		Source:        attr.Source,
		Destination:   attr.Destination,
		Amount:        attr.Amount,
		Fee:           verdict.Fee,
		NetAmount:     verdict.NetAmount,
		IsWhitelisted: verdict.IsWhitelisted,
		IsDelegate:    verdict.IsDelegate,
		Timestamp:     exeCtx.Now(),
	})
	return nil
}

// credit returns update func adding "amount" to the balance of the account.
func credit(amount uint64, checkFrozen bool) state.UpdateFunc[types.TokenAccount] {
	return func(acc *types.TokenAccount) error {
		if checkFrozen && acc.IsFrozen {
			return types.ErrAccountFrozen
		}
		balance, carry := bits.Add64(acc.Balance, amount, 0)
		if carry != 0 {
			return fmt.Errorf("%w: balance %d + %d", types.ErrMathOverflow, acc.Balance, amount)
		}
		acc.Balance = balance
		return nil
	}
}

func (m *Module) executeAddBlacklist(cmd *types.Command, attr *types.AddBlacklistAttributes, exeCtx txsystem.ExecutionContext) error {
	if err := m.authorizeBlacklister(cmd, exeCtx); err != nil {
		return err
	}
	return m.addBlacklist(cmd, attr, exeCtx)
}

func (m *Module) executeBatchBlacklist(cmd *types.Command, attr *types.BatchBlacklistAttributes, exeCtx txsystem.ExecutionContext) error {
	if err := m.authorizeBlacklister(cmd, exeCtx); err != nil {
		return err
	}
	for i := range attr.Entries {
		if err := m.addBlacklist(cmd, &attr.Entries[i], exeCtx); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func (m *Module) authorizeBlacklister(cmd *types.Command, exeCtx txsystem.ExecutionContext) error {
	hc, err := exeCtx.Accounts().HookConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleBlacklister|types.RoleMaster); err != nil {
		return err
	}
	if !hc.BlacklistEnabled {
		return fmt.Errorf("%w: blacklist is not enabled for %s", types.ErrComplianceNotEnabled, cmd.Mint)
	}
	return nil
}

func (m *Module) addBlacklist(cmd *types.Command, attr *types.AddBlacklistAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	listed, err := accounts.IsBlacklisted(cmd.Mint, attr.Address)
	if err != nil {
		return err
	}
	if listed {
		return fmt.Errorf("%w: %s", types.ErrAlreadyBlacklisted, attr.Address)
	}
	err = accounts.PutBlacklistEntry(&types.BlacklistEntry{
		Mint:          cmd.Mint,
		Address:       attr.Address,
		Reason:        attr.Reason,
		BlacklistedBy: cmd.Caller,
		CreatedAt:     exeCtx.Now(),
		IsActive:      true,
	})
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.BlacklistAdded{
		Mint:      cmd.Mint,
		Address:   attr.Address,
		Reason:    attr.Reason,
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

func (m *Module) executeRemoveBlacklist(cmd *types.Command, attr *types.RemoveBlacklistAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	if _, err := accounts.HookConfig(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleBlacklister|types.RoleMaster); err != nil {
		return err
	}
	entry, found, err := accounts.BlacklistEntry(cmd.Mint, attr.Address)
	if err != nil {
		return err
	}
	if !found || !entry.IsActive {
		return fmt.Errorf("%w: %s", types.ErrBlacklistNotFound, attr.Address)
	}
	// entries are kept for audit trail
	entry.IsActive = false
	entry.RemovedBy = cmd.Caller
	entry.RemovedAt = exeCtx.Now()
	if err := accounts.PutBlacklistEntry(entry); err != nil {
		return err
	}
	exeCtx.Emit(&types.BlacklistRemoved{
		Mint:      cmd.Mint,
		Address:   attr.Address,
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

func (m *Module) executeAddWhitelist(cmd *types.Command, attr *types.AddWhitelistAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	if _, err := accounts.HookConfig(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	now := exeCtx.Now()
	if attr.Expiry != 0 && attr.Expiry <= now {
		return fmt.Errorf("%w: whitelist expiry %d is not in the future", types.ErrInvalidInstruction, attr.Expiry)
	}
	listed, err := accounts.IsWhitelisted(cmd.Mint, attr.Address, now)
	if err != nil {
		return err
	}
	if listed {
		return fmt.Errorf("%w: %s", types.ErrAlreadyWhitelisted, attr.Address)
	}
	err = accounts.PutWhitelistEntry(&types.WhitelistEntry{
		Mint:      cmd.Mint,
		Address:   attr.Address,
		AddedBy:   cmd.Caller,
		CreatedAt: now,
		Expiry:    attr.Expiry,
		IsActive:  true,
	})
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.WhitelistAdded{
		Mint:      cmd.Mint,
		Address:   attr.Address,
		Expiry:    attr.Expiry,
		By:        cmd.Caller,
		Timestamp: now,
	})
	return nil
}

func (m *Module) executeRemoveWhitelist(cmd *types.Command, attr *types.RemoveWhitelistAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	if _, err := accounts.HookConfig(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	entry, found, err := accounts.WhitelistEntry(cmd.Mint, attr.Address)
	if err != nil {
		return err
	}
	if !found || !entry.IsActive {
		return fmt.Errorf("%w: %s", types.ErrWhitelistNotFound, attr.Address)
	}
	entry.IsActive = false
	entry.RemovedBy = cmd.Caller
	entry.RemovedAt = exeCtx.Now()
	if err := accounts.PutWhitelistEntry(entry); err != nil {
		return err
	}
	exeCtx.Emit(&types.WhitelistRemoved{
		Mint:      cmd.Mint,
		Address:   attr.Address,
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

func (m *Module) executeUpdateHookConfig(cmd *types.Command, attr *types.UpdateHookConfigAttributes, exeCtx txsystem.ExecutionContext) error {
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	var changes []*types.ConfigUpdated
	changed := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, &types.ConfigUpdated{
				Mint:      cmd.Mint,
				Field:     field,
				OldValue:  oldValue,
				NewValue:  newValue,
				By:        cmd.Caller,
				Timestamp: exeCtx.Now(),
			})
		}
	}
	err := exeCtx.Accounts().Apply(state.UpdateHookConfig(cmd.Mint, func(hc *types.HookConfig) error {
		if attr.FeeBasisPoints != nil {
			changed("transfer_fee_basis_points", strconv.FormatUint(uint64(hc.TransferFeeBasisPoints), 10), strconv.FormatUint(uint64(*attr.FeeBasisPoints), 10))
			hc.TransferFeeBasisPoints = *attr.FeeBasisPoints
		}
		if attr.MaxTransferFee != nil {
			changed("max_transfer_fee", strconv.FormatUint(hc.MaxTransferFee, 10), strconv.FormatUint(*attr.MaxTransferFee, 10))
			hc.MaxTransferFee = *attr.MaxTransferFee
		}
		if attr.MinTransferAmount != nil {
			changed("min_transfer_amount", strconv.FormatUint(hc.MinTransferAmount, 10), strconv.FormatUint(*attr.MinTransferAmount, 10))
			hc.MinTransferAmount = *attr.MinTransferAmount
		}
		if attr.IsPaused != nil {
			changed("is_paused", strconv.FormatBool(hc.IsPaused), strconv.FormatBool(*attr.IsPaused))
			hc.IsPaused = *attr.IsPaused
		}
		if attr.BlacklistEnabled != nil {
			changed("blacklist_enabled", strconv.FormatBool(hc.BlacklistEnabled), strconv.FormatBool(*attr.BlacklistEnabled))
			hc.BlacklistEnabled = *attr.BlacklistEnabled
		}
		if attr.FeeCollector != nil {
			changed("fee_collector", hc.FeeCollector.String(), attr.FeeCollector.String())
			hc.FeeCollector = *attr.FeeCollector
		}
		return nil
	}))
	if err != nil {
		return err
	}
	for _, c := range changes {
		exeCtx.Emit(c)
	}
	return nil
}

func (m *Module) executeSetPermanentDelegate(cmd *types.Command, attr *types.SetPermanentDelegateAttributes, exeCtx txsystem.ExecutionContext) error {
	sc, err := exeCtx.Accounts().Stablecoin(cmd.Mint)
	if err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	if attr.Delegate != nil && !sc.Features.Has(types.FeaturePermanentDelegate) {
		return fmt.Errorf("%w: permanent delegate feature is not enabled for %s", types.ErrFeatureNotEnabled, cmd.Mint)
	}
	if attr.Delegate != nil && attr.Delegate.IsZero() {
		attr.Delegate = nil
	}

	var old string
	err = exeCtx.Accounts().Apply(state.UpdateHookConfig(cmd.Mint, func(hc *types.HookConfig) error {
		old = delegateString(hc.PermanentDelegate)
		hc.PermanentDelegate = attr.Delegate
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.ConfigUpdated{
		Mint:      cmd.Mint,
		Field:     "permanent_delegate",
		OldValue:  old,
		NewValue:  delegateString(attr.Delegate),
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

func delegateString(id *types.Identity) string {
	if id == nil {
		return ""
	}
	return id.String()
}
