package txsystem

import (
	"testing"

	"github.com/stretchr/testify/require"

	test "github.com/sss-org/sss-engine/internal/testutils"
	testcmd "github.com/sss-org/sss-engine/txsystem/testutils/command"
	"github.com/sss-org/sss-engine/types"
)

func TestGovernance_String(t *testing.T) {
	require.Equal(t, "none", GovernanceNone.String())
	require.Equal(t, "optional", GovernanceOptional.String())
	require.Equal(t, "required", GovernanceRequired.String())
	require.Equal(t, "Governance(7)", Governance(7).String())
}

func TestTxExecutors_Add(t *testing.T) {
	handler := NewTxHandler[testAttr](GovernanceNone, (&testModule{}).fee)

	t.Run("empty name", func(t *testing.T) {
		executors := make(TxExecutors)
		require.EqualError(t, executors.Add(TxExecutors{"": handler}), "command executor must have non-empty command type name")
	})

	t.Run("nil handler", func(t *testing.T) {
		executors := make(TxExecutors)
		require.EqualError(t, executors.Add(TxExecutors{"foo": nil}), "command executor must not be nil (foo)")
	})

	t.Run("already registered", func(t *testing.T) {
		executors := TxExecutors{"foo": handler}
		require.EqualError(t, executors.Add(TxExecutors{"foo": handler}), `command executor for "foo" is already registered`)
	})

	t.Run("success", func(t *testing.T) {
		executors := TxExecutors{"foo": handler}
		require.NoError(t, executors.Add(TxExecutors{"bar": handler}))
		h, err := executors.Get("bar")
		require.NoError(t, err)
		require.Equal(t, handler, h)

		h, err = executors.Get("baz")
		require.ErrorIs(t, err, types.ErrInvalidInstruction)
		require.Nil(t, h)
	})
}

func TestTxHandler_DecodeAttributes(t *testing.T) {
	mint, caller := test.RandomIdentity(), test.RandomIdentity()
	handler := NewTxHandler[types.MintAttributes](GovernanceNone, func(cmd *types.Command, attr *types.MintAttributes, exeCtx ExecutionContext) error {
		return nil
	})
	require.Equal(t, GovernanceNone, handler.GovernancePolicy())

	t.Run("validation is run", func(t *testing.T) {
		cmd := testcmd.New(t, types.CmdMint, mint, caller, &types.MintAttributes{Recipient: caller})
		attr, err := handler.DecodeAttributes(cmd)
		require.ErrorIs(t, err, types.ErrInvalidAmount)
		require.Nil(t, attr)
	})

	t.Run("success", func(t *testing.T) {
		cmd := testcmd.New(t, types.CmdMint, mint, caller, &types.MintAttributes{Recipient: caller, Amount: 5})
		attr, err := handler.DecodeAttributes(cmd)
		require.NoError(t, err)
		require.Equal(t, &types.MintAttributes{Recipient: caller, Amount: 5}, attr)
		require.NoError(t, handler.ExecuteWithAttr(cmd, attr, nil))
	})

	t.Run("wrong attribute type", func(t *testing.T) {
		cmd := testcmd.New(t, types.CmdMint, mint, caller, &types.MintAttributes{Recipient: caller, Amount: 5})
		err := handler.ExecuteWithAttr(cmd, &types.BurnAttributes{}, nil)
		require.EqualError(t, err, "incorrect attribute type: *types.BurnAttributes for command mint")
	})
}
