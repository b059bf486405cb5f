package token

import (
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

var _ txsystem.Module = (*Module)(nil)

/*
Module implements the lifecycle of the token: initialization, supply changes
(mint and burn), freezing of accounts, pausing and the mint level configuration.
*/
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdInitialize:        txsystem.NewTxHandler[types.InitializeAttributes](txsystem.GovernanceNone, m.executeInitialize),
		types.CmdMint:              txsystem.NewTxHandler[types.MintAttributes](txsystem.GovernanceNone, m.executeMint),
		types.CmdBatchMint:         txsystem.NewTxHandler[types.BatchMintAttributes](txsystem.GovernanceNone, m.executeBatchMint),
		types.CmdBurn:              txsystem.NewTxHandler[types.BurnAttributes](txsystem.GovernanceNone, m.executeBurn),
		types.CmdFreeze:            txsystem.NewTxHandler[types.FreezeAttributes](txsystem.GovernanceOptional, m.executeFreeze),
		types.CmdThaw:              txsystem.NewTxHandler[types.FreezeAttributes](txsystem.GovernanceOptional, m.executeThaw),
		types.CmdPause:             txsystem.NewTxHandler[types.PauseAttributes](txsystem.GovernanceOptional, m.executePause),
		types.CmdUnpause:           txsystem.NewTxHandler[types.PauseAttributes](txsystem.GovernanceOptional, m.executeUnpause),
		types.CmdUpdateFeatures:    txsystem.NewTxHandler[types.UpdateFeaturesAttributes](txsystem.GovernanceRequired, m.executeUpdateFeatures),
		types.CmdSetSupplyCap:      txsystem.NewTxHandler[types.SetSupplyCapAttributes](txsystem.GovernanceRequired, m.executeSetSupplyCap),
		types.CmdTransferAuthority: txsystem.NewTxHandler[types.TransferAuthorityAttributes](txsystem.GovernanceRequired, m.executeTransferAuthority),
	}
}
