package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommand_Attributes(t *testing.T) {
	mint := DeriveIdentity([]byte("mint"))
	caller := DeriveIdentity([]byte("caller"))
	recipient := DeriveIdentity([]byte("recipient"))

	cmd, err := NewCommand(CmdMint, mint, caller, &MintAttributes{Recipient: recipient, Amount: 42})
	require.NoError(t, err)
	require.NoError(t, cmd.IsValid())

	attr := &MintAttributes{}
	require.NoError(t, cmd.UnmarshalAttributes(attr))
	require.Equal(t, recipient, attr.Recipient)
	require.EqualValues(t, 42, attr.Amount)

	t.Run("unknown fields are rejected", func(t *testing.T) {
		cmd, err := NewCommand(CmdBurn, mint, caller, &TransferAttributes{Source: recipient, Destination: caller, Amount: 1})
		require.NoError(t, err)
		require.ErrorContains(t, cmd.UnmarshalAttributes(&BurnAttributes{}), "unknown field")
	})

	t.Run("empty attributes", func(t *testing.T) {
		cmd := &Command{Type: CmdPause, Mint: mint, Caller: caller}
		require.NoError(t, cmd.UnmarshalAttributes(&PauseAttributes{}))
	})

	t.Run("invalid command", func(t *testing.T) {
		var nilCmd *Command
		require.ErrorContains(t, nilCmd.IsValid(), "command is nil")
		require.ErrorContains(t, (&Command{Mint: mint, Caller: caller}).IsValid(), "command type is missing")
		require.ErrorContains(t, (&Command{Type: CmdMint, Caller: caller}).IsValid(), "mint is missing")
		require.ErrorContains(t, (&Command{Type: CmdMint, Mint: mint}).IsValid(), "caller is missing")
	})
}

func TestInstruction_Command(t *testing.T) {
	mint := DeriveIdentity([]byte("mint"))
	ins, err := NewInstruction(CmdSetSupplyCap, &SetSupplyCapAttributes{SupplyCap: 500})
	require.NoError(t, err)

	cmd := ins.Command(mint, MultisigAuthority(mint))
	require.Equal(t, CmdSetSupplyCap, cmd.Type)
	require.Equal(t, MultisigAuthority(mint), cmd.Caller)
	attr := &SetSupplyCapAttributes{}
	require.NoError(t, cmd.UnmarshalAttributes(attr))
	require.EqualValues(t, 500, attr.SupplyCap)
}

func TestEventRecord(t *testing.T) {
	mint := DeriveIdentity([]byte("mint"))
	rcpt := &Receipt{Command: CmdTransfer, Mint: mint, Timestamp: 100}
	ev := TransferExecuted{Mint: mint, Amount: 1_000_000, Fee: 10_000, NetAmount: 990_000, Timestamp: 100}

	rec, err := NewEventRecord(7, rcpt, ev)
	require.NoError(t, err)
	require.EqualValues(t, 7, rec.Seq)
	require.Equal(t, EventTransferExecuted, rec.Type)
	require.Equal(t, CmdTransfer, rec.Command)

	decoded, err := rec.Event()
	require.NoError(t, err)
	require.Equal(t, &ev, decoded)

	rec.Type = "Unknown"
	_, err = rec.Event()
	require.ErrorContains(t, err, `unknown event type "Unknown"`)
}
