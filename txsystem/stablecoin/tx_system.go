package stablecoin

import (
	"context"
	"errors"
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/compliance"
	"github.com/sss-org/sss-engine/txsystem/multisig"
	"github.com/sss-org/sss-engine/txsystem/quota"
	"github.com/sss-org/sss-engine/txsystem/rbac"
	"github.com/sss-org/sss-engine/txsystem/seizure"
	"github.com/sss-org/sss-engine/txsystem/token"
	"github.com/sss-org/sss-engine/types"
)

/*
TxSystem is the stablecoin engine: all the command modules registered into
single txsystem.Engine plus read-only queries of the committed state.
*/
type TxSystem struct {
	engine *txsystem.Engine
	store  *state.Store
}

func NewTxSystem(store *state.Store, observe txsystem.Observability, opts ...txsystem.Option) (*TxSystem, error) {
	if store == nil {
		return nil, errors.New("state store is nil")
	}
	modules := []txsystem.Module{
		token.NewModule(),
		rbac.NewModule(),
		quota.NewModule(),
		compliance.NewModule(),
		seizure.NewModule(),
		multisig.NewModule(),
	}
	engine, err := txsystem.NewEngine(store, modules, observe, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating stablecoin engine: %w", err)
	}
	return &TxSystem{engine: engine, store: store}, nil
}

// Execute executes the command, see txsystem.Engine.Execute.
func (s *TxSystem) Execute(ctx context.Context, cmd *types.Command) (*types.Receipt, error) {
	return s.engine.Execute(ctx, cmd)
}

// Commands returns supported command types and their governance policy.
func (s *TxSystem) Commands() map[string]txsystem.Governance {
	return s.engine.Commands()
}
