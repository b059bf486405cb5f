package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sss-org/sss-engine/types"
)

// DefaultTimestamp is the time of the Clock returned by NewClock.
const DefaultTimestamp uint64 = 1_700_000_000

type Option func(*types.Command)

// WithRawAttributes replaces the encoded attributes of the command.
func WithRawAttributes(b []byte) Option {
	return func(c *types.Command) {
		c.Attributes = b
	}
}

// New returns command with CBOR encoded attributes "attr".
func New(t testing.TB, cmdType string, mint, caller types.Identity, attr any, options ...Option) *types.Command {
	t.Helper()
	cmd, err := types.NewCommand(cmdType, mint, caller, attr)
	require.NoError(t, err)
	for _, o := range options {
		o(cmd)
	}
	return cmd
}

func Instruction(t testing.TB, cmdType string, attr any) types.Instruction {
	t.Helper()
	ins, err := types.NewInstruction(cmdType, attr)
	require.NoError(t, err)
	return ins
}
