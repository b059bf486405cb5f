package txsystem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	test "github.com/sss-org/sss-engine/internal/testutils"
	testobserve "github.com/sss-org/sss-engine/internal/testutils/observability"
	"github.com/sss-org/sss-engine/state"
	testcmd "github.com/sss-org/sss-engine/txsystem/testutils/command"
	testsc "github.com/sss-org/sss-engine/txsystem/testutils/stablecoin"
	"github.com/sss-org/sss-engine/types"
)

const (
	cmdSetCap   = "test_set_cap"
	cmdRequired = "test_required"
	cmdFee      = "test_fee"
	cmdPropose  = "test_propose"
	cmdNested   = "test_nested"
)

var errBoom = errors.New("boom")

type testAttr struct {
	Value uint64
}

/*
testModule sets the supply cap of the mint to the attribute value. Value 13
fails the command with InvalidAmount after the state was modified and value
666 fails it with an error which has no kind.
*/
type testModule struct {
	caller   types.Identity
	governed bool
}

func (m *testModule) TxHandlers() map[string]TxExecutor {
	return map[string]TxExecutor{
		cmdSetCap:   NewTxHandler[testAttr](GovernanceOptional, m.setCap),
		cmdRequired: NewTxHandler[testAttr](GovernanceRequired, m.setCap),
		cmdFee:      NewTxHandler[testAttr](GovernanceNone, m.fee),
		cmdPropose:  NewTxHandler[types.Instruction](GovernanceNone, m.propose),
		cmdNested:   NewTxHandler[types.Instruction](GovernanceOptional, m.propose),
	}
}

func (m *testModule) setCap(cmd *types.Command, attr *testAttr, exeCtx ExecutionContext) error {
	m.caller = cmd.Caller
	m.governed = exeCtx.Governed()
	err := exeCtx.Accounts().Apply(state.UpdateStablecoin(cmd.Mint, func(sc *types.StablecoinState) error {
		sc.SupplyCap = attr.Value
		return nil
	}))
	if err != nil {
		return err
	}
	switch attr.Value {
	case 13:
		return types.ErrInvalidAmount
	case 666:
		return errBoom
	}
	exeCtx.Emit(&types.ConfigUpdated{Mint: cmd.Mint, Field: "supply_cap", NewValue: "set", By: cmd.Caller, Timestamp: exeCtx.Now()})
	return nil
}

func (m *testModule) fee(cmd *types.Command, attr *testAttr, exeCtx ExecutionContext) error {
	exeCtx.Emit(&types.TransferExecuted{Mint: cmd.Mint, Source: cmd.Caller, Amount: 100, Fee: attr.Value, Timestamp: exeCtx.Now()})
	return nil
}

func (m *testModule) propose(cmd *types.Command, attr *types.Instruction, exeCtx ExecutionContext) error {
	return exeCtx.ExecuteGoverned(cmd.Mint, *attr)
}

type testSink struct {
	receipts []*types.Receipt
	err      error
}

func (s *testSink) Publish(ctx context.Context, rcpt *types.Receipt) error {
	s.receipts = append(s.receipts, rcpt)
	return s.err
}

type engineEnv struct {
	e         *Engine
	store     *state.Store
	module    *testModule
	sink      *testSink
	mint      types.Identity
	authority types.Identity
}

func newEngineEnv(t *testing.T, observe Observability, opts ...Option) *engineEnv {
	t.Helper()
	env := &engineEnv{
		store:     testsc.NewStore(t),
		module:    &testModule{},
		sink:      &testSink{},
		mint:      test.RandomIdentity(),
		authority: test.RandomIdentity(),
	}
	testsc.Seed(t, env.store, testsc.Initialized(env.mint, env.authority)...)
	opts = append([]Option{WithEventSink(env.sink), WithClock(testcmd.NewClock().Now)}, opts...)
	e, err := NewEngine(env.store, []Module{env.module}, observe, opts...)
	require.NoError(t, err)
	env.e = e
	return env
}

func (env *engineEnv) supplyCap(t *testing.T) uint64 {
	return testsc.GetStablecoin(t, env.store, env.mint).SupplyCap
}

func TestNewEngine(t *testing.T) {
	observe := testobserve.NOPObservability()

	t.Run("store is nil", func(t *testing.T) {
		e, err := NewEngine(nil, nil, observe)
		require.EqualError(t, err, "state store is nil")
		require.Nil(t, e)
	})

	t.Run("zero epoch duration", func(t *testing.T) {
		e, err := NewEngine(testsc.NewStore(t), nil, observe, WithEpochDuration(0))
		require.EqualError(t, err, "epoch duration must be greater than zero")
		require.Nil(t, e)
	})

	t.Run("duplicate command", func(t *testing.T) {
		e, err := NewEngine(testsc.NewStore(t), []Module{&testModule{}, &testModule{}}, observe)
		require.ErrorContains(t, err, "registering command executors: command executor for")
		require.Nil(t, e)
	})

	t.Run("success", func(t *testing.T) {
		now := time.Unix(1_800_000_000, 0)
		e, err := NewEngine(testsc.NewStore(t), []Module{&testModule{}}, observe, WithEpochDuration(3600), WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		require.EqualValues(t, 3600, e.EpochDuration())
		require.EqualValues(t, 1_800_000_000, e.Now())
		require.Equal(t, map[string]Governance{
			cmdSetCap:   GovernanceOptional,
			cmdRequired: GovernanceRequired,
			cmdFee:      GovernanceNone,
			cmdPropose:  GovernanceNone,
			cmdNested:   GovernanceOptional,
		}, e.Commands())
	})
}

func TestEngine_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		cmd := testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 500})
		rcpt, err := env.e.Execute(ctx, cmd)
		require.NoError(t, err)
		require.Equal(t, cmdSetCap, rcpt.Command)
		require.Equal(t, env.mint, rcpt.Mint)
		require.Equal(t, env.authority, rcpt.Caller)
		require.Equal(t, testcmd.DefaultTimestamp, rcpt.Timestamp)
		require.Len(t, rcpt.Events, 1)
		require.EqualValues(t, 500, env.supplyCap(t))
		require.Equal(t, env.authority, env.module.caller)
		require.False(t, env.module.governed)
		require.Equal(t, []*types.Receipt{rcpt}, env.sink.receipts)
	})

	t.Run("timestamp from engine clock", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t), WithClock(func() time.Time { return time.Unix(1_750_000_000, 0) }))
		cmd := testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 1})
		rcpt, err := env.e.Execute(ctx, cmd)
		require.NoError(t, err)
		require.EqualValues(t, 1_750_000_000, rcpt.Timestamp)
		require.EqualValues(t, 1_750_000_000, rcpt.Events[0].(*types.ConfigUpdated).Timestamp)
	})

	t.Run("invalid command", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		rcpt, err := env.e.Execute(ctx, nil)
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, "command is nil")
		require.Nil(t, rcpt)

		rcpt, err = env.e.Execute(ctx, &types.Command{Type: cmdSetCap, Mint: env.mint})
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, "caller is missing")
		require.Nil(t, rcpt)
		require.Empty(t, env.sink.receipts)
	})

	t.Run("unknown command", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		rcpt, err := env.e.Execute(ctx, testcmd.New(t, "no_such_command", env.mint, env.authority, &testAttr{}))
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.EqualError(t, err, `'no_such_command' execution failed: InvalidInstruction: unknown command type "no_such_command"`)
		require.Nil(t, rcpt)
	})

	t.Run("attributes can't be decoded", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		cmd := testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{}, testcmd.WithRawAttributes([]byte{0xff}))
		rcpt, err := env.e.Execute(ctx, cmd)
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, "failed to decode test_set_cap attributes")
		require.Nil(t, rcpt)
	})

	t.Run("context cancelled", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		rcpt, err := env.e.Execute(cctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 5}))
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, rcpt)
		require.Zero(t, env.supplyCap(t))
	})

	t.Run("failed command is rolled back", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		rcpt, err := env.e.Execute(ctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 13}))
		require.ErrorIs(t, err, types.ErrInvalidAmount)
		require.Equal(t, types.ErrInvalidAmount, types.KindOf(err))
		require.Nil(t, rcpt)
		require.Zero(t, env.supplyCap(t))
		require.Empty(t, env.sink.receipts)
	})

	t.Run("error without kind is internal", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 666}))
		require.ErrorIs(t, err, errBoom)
		require.Equal(t, types.ErrInternal, types.KindOf(err))
		require.Zero(t, env.supplyCap(t))
	})

	t.Run("sink error doesn't fail the command", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		env.sink.err = errors.New("sink is full")
		rcpt, err := env.e.Execute(ctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 7}))
		require.NoError(t, err)
		require.NotNil(t, rcpt)
		require.Len(t, env.sink.receipts, 1)
		require.EqualValues(t, 7, env.supplyCap(t))
	})
}

func TestEngine_governance(t *testing.T) {
	ctx := context.Background()

	t.Run("required command without multisig", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdRequired, env.mint, env.authority, &testAttr{Value: 10}))
		require.NoError(t, err)
		require.EqualValues(t, 10, env.supplyCap(t))
	})

	t.Run("required command with multisig", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		testsc.Seed(t, env.store, testsc.Multisig(env.mint, 1, env.authority))
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdRequired, env.mint, env.authority, &testAttr{Value: 10}))
		require.ErrorIs(t, err, types.ErrUnauthorized)
		require.ErrorContains(t, err, "must be executed through a multisig proposal")
		require.Zero(t, env.supplyCap(t))

		// optional command may still be executed directly
		_, err = env.e.Execute(ctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 11}))
		require.NoError(t, err)
		require.EqualValues(t, 11, env.supplyCap(t))
	})

	t.Run("governed execution", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		testsc.Seed(t, env.store, testsc.Multisig(env.mint, 1, env.authority))
		ins := testcmd.Instruction(t, cmdRequired, &testAttr{Value: 20})
		rcpt, err := env.e.Execute(ctx, testcmd.New(t, cmdPropose, env.mint, env.authority, &ins))
		require.NoError(t, err)
		require.Equal(t, cmdPropose, rcpt.Command)
		require.Len(t, rcpt.Events, 1)
		require.EqualValues(t, 20, env.supplyCap(t))
		require.Equal(t, types.MultisigAuthority(env.mint), env.module.caller)
		require.True(t, env.module.governed)
	})

	t.Run("governed execution fails", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		ins := testcmd.Instruction(t, cmdSetCap, &testAttr{Value: 13})
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdPropose, env.mint, env.authority, &ins))
		require.ErrorIs(t, err, types.ErrInvalidAmount)
		require.EqualError(t, err, "'test_propose' execution failed: 'test_set_cap' execution failed: InvalidAmount")
		require.Zero(t, env.supplyCap(t))
	})

	t.Run("command without governance can't be proposed", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		ins := testcmd.Instruction(t, cmdFee, &testAttr{Value: 1})
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdPropose, env.mint, env.authority, &ins))
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, `command "test_fee" can't be executed through a proposal`)
	})

	t.Run("unknown instruction", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		ins := testcmd.Instruction(t, "no_such_command", &testAttr{Value: 1})
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdPropose, env.mint, env.authority, &ins))
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, `unknown command type "no_such_command"`)
	})

	t.Run("nested governed execution", func(t *testing.T) {
		env := newEngineEnv(t, testobserve.Default(t))
		inner := testcmd.Instruction(t, cmdSetCap, &testAttr{Value: 30})
		ins := testcmd.Instruction(t, cmdNested, &inner)
		_, err := env.e.Execute(ctx, testcmd.New(t, cmdPropose, env.mint, env.authority, &ins))
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.ErrorContains(t, err, `nested governed execution of "test_set_cap"`)
		require.Zero(t, env.supplyCap(t))
	})
}

func TestEngine_metrics(t *testing.T) {
	ctx := context.Background()
	observe, reader := testobserve.WithMetrics(t)
	env := newEngineEnv(t, observe)

	_, err := env.e.Execute(ctx, testcmd.New(t, cmdFee, env.mint, env.authority, &testAttr{Value: 40}))
	require.NoError(t, err)
	_, err = env.e.Execute(ctx, testcmd.New(t, cmdFee, env.mint, env.authority, &testAttr{Value: 2}))
	require.NoError(t, err)
	_, err = env.e.Execute(ctx, testcmd.New(t, cmdSetCap, env.mint, env.authority, &testAttr{Value: 13}))
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.EqualValues(t, 3, sumInt64(t, rm, "command.count"))
	require.EqualValues(t, 42, sumInt64(t, rm, "fee.collected"))
}

func sumInt64(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "unexpected data type %T of metric %s", m.Data, name)
			var sum int64
			for _, dp := range data.DataPoints {
				sum += dp.Value
			}
			return sum
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
