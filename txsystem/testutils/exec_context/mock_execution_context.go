package exec_context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sss-org/sss-engine/keyvaluedb/memorydb"
	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/types"
)

/*
MockExecContext is execution context for testing command handlers and
helpers without the engine. Changes are written directly into the DB.
*/
type MockExecContext struct {
	DB                   *memorydb.MemoryDB
	NowTime              uint64
	Epoch                uint64
	IsGoverned           bool
	Events               []types.Event
	GovernedInstructions []types.Instruction
	mockErr              error
	accounts             *state.Accounts
}

type TestOption func(*MockExecContext) error

func NewMockExecutionContext(t *testing.T, options ...TestOption) *MockExecContext {
	db := memorydb.New()
	m := &MockExecContext{
		DB:       db,
		NowTime:  1_700_000_000,
		Epoch:    types.DefaultEpochPeriod,
		accounts: state.NewAccounts(db, db),
	}
	for _, o := range options {
		require.NoError(t, o(m))
	}
	return m
}

func WithNow(now uint64) TestOption {
	return func(m *MockExecContext) error {
		m.NowTime = now
		return nil
	}
}

func WithGoverned() TestOption {
	return func(m *MockExecContext) error {
		m.IsGoverned = true
		return nil
	}
}

// WithErr makes ValidateInstruction and ExecuteGoverned to return err.
func WithErr(err error) TestOption {
	return func(m *MockExecContext) error {
		m.mockErr = err
		return nil
	}
}

// WithState applies actions to the DB of the context.
func WithState(actions ...state.Action) TestOption {
	return func(m *MockExecContext) error {
		return m.accounts.Apply(actions...)
	}
}

func (m *MockExecContext) Accounts() *state.Accounts { return m.accounts }

func (m *MockExecContext) Now() uint64 { return m.NowTime }

func (m *MockExecContext) EpochDuration() uint64 { return m.Epoch }

func (m *MockExecContext) Governed() bool { return m.IsGoverned }

func (m *MockExecContext) Emit(events ...types.Event) {
	m.Events = append(m.Events, events...)
}

func (m *MockExecContext) ValidateInstruction(ins types.Instruction) error {
	return m.mockErr
}

func (m *MockExecContext) ExecuteGoverned(mint types.Identity, ins types.Instruction) error {
	if m.mockErr != nil {
		return m.mockErr
	}
	m.GovernedInstructions = append(m.GovernedInstructions, ins)
	return nil
}
