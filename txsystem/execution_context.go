package txsystem

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/types"
)

var _ ExecutionContext = (*cmdExecutionContext)(nil)

type cmdExecutionContext struct {
	engine   *Engine
	accounts *state.Accounts
	now      uint64
	governed bool
	events   *[]types.Event
}

func (ec *cmdExecutionContext) Accounts() *state.Accounts { return ec.accounts }

func (ec *cmdExecutionContext) Now() uint64 { return ec.now }

func (ec *cmdExecutionContext) EpochDuration() uint64 { return ec.engine.epochDuration }

func (ec *cmdExecutionContext) Governed() bool { return ec.governed }

func (ec *cmdExecutionContext) Emit(events ...types.Event) {
	*ec.events = append(*ec.events, events...)
}

func (ec *cmdExecutionContext) ValidateInstruction(ins types.Instruction) error {
	handler, err := ec.engine.executors.Get(ins.Type)
	if err != nil {
		return err
	}
	if handler.GovernancePolicy() == GovernanceNone {
		return fmt.Errorf("%w: command %q can't be executed through a proposal", types.ErrInvalidInstruction, ins.Type)
	}
	if _, err := handler.DecodeAttributes(&types.Command{Type: ins.Type, Attributes: ins.Attributes}); err != nil {
		return fmt.Errorf("invalid proposal instruction: %w", err)
	}
	return nil
}

func (ec *cmdExecutionContext) ExecuteGoverned(mint types.Identity, ins types.Instruction) error {
	if ec.governed {
		return fmt.Errorf("%w: nested governed execution of %q", types.ErrInvalidInstruction, ins.Type)
	}
	if err := ec.ValidateInstruction(ins); err != nil {
		return err
	}
	cmd := ins.Command(mint, types.MultisigAuthority(mint))
	handler, err := ec.engine.executors.Get(cmd.Type)
	if err != nil {
		return err
	}
	attr, err := handler.DecodeAttributes(cmd)
	if err != nil {
		return err
	}
	govCtx := &cmdExecutionContext{
		engine:   ec.engine,
		accounts: ec.accounts,
		now:      ec.now,
		governed: true,
		events:   ec.events,
	}
	if err := handler.ExecuteWithAttr(cmd, attr, govCtx); err != nil {
		return fmt.Errorf("'%s' execution failed: %w", cmd.Type, err)
	}
	return nil
}
