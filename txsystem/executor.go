package txsystem

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/types"
)

/*
Governance describes how the command relates to the multisig governor of the mint.
*/
type Governance uint8

const (
	// GovernanceNone - command can't be proposed, it is executed only directly.
	GovernanceNone Governance = iota
	// GovernanceOptional - command may be executed directly or through a proposal.
	GovernanceOptional
	// GovernanceRequired - when the mint has multisig configured the command
	// must be executed through a proposal.
	GovernanceRequired
)

func (g Governance) String() string {
	switch g {
	case GovernanceNone:
		return "none"
	case GovernanceOptional:
		return "optional"
	case GovernanceRequired:
		return "required"
	default:
		return fmt.Sprintf("Governance(%d)", uint8(g))
	}
}

type (
	Module interface {
		TxHandlers() map[string]TxExecutor
	}

	TxHandler[A any] struct {
		Execute    GenericExecuteFunc[A]
		Governance Governance
	}

	TxExecutor interface {
		// DecodeAttributes decodes attributes of the command and runs the
		// stateless validation of them (when attributes implement types.Validator).
		DecodeAttributes(cmd *types.Command) (any, error)
		ExecuteWithAttr(cmd *types.Command, attributes any, exeCtx ExecutionContext) error
		GovernancePolicy() Governance
	}

	TxExecutors map[string]TxExecutor

	GenericExecuteFunc[A any] func(cmd *types.Command, attributes *A, exeCtx ExecutionContext) error

	// ExecutionContext - provides access to the state and info for command execution.
	ExecutionContext interface {
		// Accounts gives access to the state inside the command's transaction.
		Accounts() *state.Accounts
		// Now is the command's timestamp, unix seconds.
		Now() uint64
		EpochDuration() uint64
		// Governed returns true when command is executed by the multisig governor,
		// ie as a result of an approved proposal.
		Governed() bool
		Emit(events ...types.Event)
		// ValidateInstruction checks that the instruction can be proposed and
		// that its attributes are valid.
		ValidateInstruction(ins types.Instruction) error
		// ExecuteGoverned executes the instruction on behalf of the multisig
		// authority of the mint, in the current transaction.
		ExecuteGoverned(mint types.Identity, ins types.Instruction) error
	}
)

func NewTxHandler[A any](governance Governance, e GenericExecuteFunc[A]) *TxHandler[A] {
	return &TxHandler[A]{Execute: e, Governance: governance}
}

func (t *TxHandler[A]) DecodeAttributes(cmd *types.Command) (any, error) {
	attr := new(A)
	if err := cmd.UnmarshalAttributes(attr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s attributes: %w", types.ErrInvalidInstruction, cmd.Type, err)
	}
	if v, ok := any(attr).(types.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return attr, nil
}

func (t *TxHandler[A]) ExecuteWithAttr(cmd *types.Command, attr any, exeCtx ExecutionContext) error {
	cmdAttr, ok := attr.(*A)
	if !ok {
		return fmt.Errorf("incorrect attribute type: %T for command %s", attr, cmd.Type)
	}
	return t.Execute(cmd, cmdAttr, exeCtx)
}

func (t *TxHandler[A]) GovernancePolicy() Governance {
	return t.Governance
}

func (h TxExecutors) Get(cmdType string) (TxExecutor, error) {
	handler, found := h[cmdType]
	if !found {
		return nil, fmt.Errorf("%w: unknown command type %q", types.ErrInvalidInstruction, cmdType)
	}
	return handler, nil
}

func (h TxExecutors) Add(src TxExecutors) error {
	for name, handler := range src {
		if name == "" {
			return fmt.Errorf("command executor must have non-empty command type name")
		}
		if handler == nil {
			return fmt.Errorf("command executor must not be nil (%s)", name)
		}
		if _, ok := h[name]; ok {
			return fmt.Errorf("command executor for %q is already registered", name)
		}
		h[name] = handler
	}
	return nil
}
