package multisig

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

var _ txsystem.Module = (*Module)(nil)

/*
Module implements the multisig governor of the mint. Administrative commands
are wrapped into proposals, a proposal approved by "threshold" signers may be
executed before it expires. Executed proposal runs its instruction as the
multisig authority of the mint (see types.MultisigAuthority).
*/
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdInitializeMultisig: txsystem.NewTxHandler[types.MultisigAttributes](txsystem.GovernanceNone, m.executeInitializeMultisig),
		types.CmdCreateProposal:     txsystem.NewTxHandler[types.CreateProposalAttributes](txsystem.GovernanceNone, m.executeCreateProposal),
		types.CmdApproveProposal:    txsystem.NewTxHandler[types.ProposalAttributes](txsystem.GovernanceNone, m.executeApproveProposal),
		types.CmdExecuteProposal:    txsystem.NewTxHandler[types.ProposalAttributes](txsystem.GovernanceNone, m.executeExecuteProposal),
		types.CmdCancelProposal:     txsystem.NewTxHandler[types.ProposalAttributes](txsystem.GovernanceNone, m.executeCancelProposal),
		types.CmdUpdateMultisig:     txsystem.NewTxHandler[types.MultisigAttributes](txsystem.GovernanceRequired, m.executeUpdateMultisig),
	}
}

// config returns multisig config of the mint, error of kind NotInitialized when the mint has none.
func config(a *state.Accounts, mint types.Identity) (*types.MultisigConfig, error) {
	cfg, found, err := a.MultisigConfig(mint)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: multisig is not configured for %s", types.ErrNotInitialized, mint)
	}
	return cfg, nil
}

func configString(cfg *types.MultisigConfig) string {
	if cfg == nil {
		return ""
	}
	return fmt.Sprintf("%d of %d", cfg.Threshold, len(cfg.Signers))
}
