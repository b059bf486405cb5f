package quota

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

// Module implements administration of the per minter and per epoch mint quotas.
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdSetMinterQuota: txsystem.NewTxHandler[types.SetMinterQuotaAttributes](txsystem.GovernanceOptional, m.executeSetMinterQuota),
		types.CmdSetEpochQuota:  txsystem.NewTxHandler[types.SetEpochQuotaAttributes](txsystem.GovernanceRequired, m.executeSetEpochQuota),
	}
}

/*
CheckAndConsume adds "amount" to the minted total of the minter, fails with
QuotaExceeded when the minter has quota and it would be exceeded. The change
is written into the same transaction as the mint so it is rolled back when
the mint fails.
*/
func CheckAndConsume(a *state.Accounts, mint, minter types.Identity, amount uint64) error {
	return a.Apply(state.UpdateMinter(mint, minter, func(mi *types.MinterInfo) error {
		minted, carry := bits.Add64(mi.Minted, amount, 0)
		if carry != 0 {
			return fmt.Errorf("%w: minted amount of %s", types.ErrMathOverflow, minter)
		}
		if mi.Quota != 0 && minted > mi.Quota {
			return fmt.Errorf("%w: minter %s has quota %d, minted %d, requested %d", types.ErrQuotaExceeded, minter, mi.Quota, mi.Minted, amount)
		}
		mi.Minted = minted
		return nil
	}))
}

/*
ConsumeEpoch updates the epoch window counters of the mint for minting
"amount" at "now". Window which has lasted for "epochDuration" seconds is
reset before the check. No-op when the mint has no epoch quota.
*/
func ConsumeEpoch(sc *types.StablecoinState, amount, now, epochDuration uint64) error {
	if sc.EpochQuota == 0 {
		return nil
	}
	// clock going backwards stays in the current window
	if now >= sc.CurrentEpochStart && now-sc.CurrentEpochStart >= epochDuration {
		sc.CurrentEpochMinted = 0
		sc.CurrentEpochStart = now
	}
	minted, carry := bits.Add64(sc.CurrentEpochMinted, amount, 0)
	if carry != 0 || minted > sc.EpochQuota {
		return fmt.Errorf("%w: epoch quota %d, minted in current epoch %d, requested %d", types.ErrEpochQuotaExceeded, sc.EpochQuota, sc.CurrentEpochMinted, amount)
	}
	sc.CurrentEpochMinted = minted
	return nil
}

func (m *Module) executeSetMinterQuota(cmd *types.Command, attr *types.SetMinterQuotaAttributes, exeCtx txsystem.ExecutionContext) error {
	if _, err := exeCtx.Accounts().Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	err := exeCtx.Accounts().Apply(state.UpdateMinter(cmd.Mint, attr.Minter, func(mi *types.MinterInfo) error {
		if attr.Quota != 0 && attr.Quota < mi.Minted {
			return fmt.Errorf("%w: quota %d is less than already minted %d", types.ErrQuotaExceeded, attr.Quota, mi.Minted)
		}
		mi.Quota = attr.Quota
		return nil
	}))
	if err != nil {
		return fmt.Errorf("setting quota of %s: %w", attr.Minter, err)
	}
	exeCtx.Emit(&types.MinterQuotaUpdated{
		Mint:      cmd.Mint,
		Minter:    attr.Minter,
		Quota:     attr.Quota,
		UpdatedBy: cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}

func (m *Module) executeSetEpochQuota(cmd *types.Command, attr *types.SetEpochQuotaAttributes, exeCtx txsystem.ExecutionContext) error {
	if _, err := exeCtx.Accounts().Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := rbac.RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}
	var old uint64
	err := exeCtx.Accounts().Apply(state.UpdateStablecoin(cmd.Mint, func(sc *types.StablecoinState) error {
		if sc.SupplyCap != 0 && attr.EpochQuota > sc.SupplyCap {
			return fmt.Errorf("%w: epoch quota %d exceeds supply cap %d", types.ErrInvalidConfig, attr.EpochQuota, sc.SupplyCap)
		}
		old = sc.EpochQuota
		sc.EpochQuota = attr.EpochQuota
		if old == 0 {
			// start new window
			sc.CurrentEpochMinted = 0
			sc.CurrentEpochStart = exeCtx.Now()
		}
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.ConfigUpdated{
		Mint:      cmd.Mint,
		Field:     "epoch_quota",
		OldValue:  strconv.FormatUint(old, 10),
		NewValue:  strconv.FormatUint(attr.EpochQuota, 10),
		By:        cmd.Caller,
		Timestamp: exeCtx.Now(),
	})
	return nil
}
