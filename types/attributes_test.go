package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validInitialize() *InitializeAttributes {
	return &InitializeAttributes{
		Name:     "Regulated USD",
		Symbol:   "RUSD",
		Decimals: 6,
		Features: FeatureTransferHook | FeaturePermanentDelegate,
		Hook:     HookParams{FeeBasisPoints: 100, MaxTransferFee: 1_000_000, MinTransferAmount: 1_000},
	}
}

func TestInitializeAttributes_Validate(t *testing.T) {
	require.NoError(t, validInitialize().Validate())

	delegate := DeriveIdentity([]byte("delegate"))
	cases := []struct {
		name   string
		modify func(a *InitializeAttributes)
		errStr string
	}{
		{"empty name", func(a *InitializeAttributes) { a.Name = "" }, "name must be 1..32 characters"},
		{"long name", func(a *InitializeAttributes) { a.Name = strings.Repeat("x", 33) }, "name must be 1..32 characters"},
		{"empty symbol", func(a *InitializeAttributes) { a.Symbol = "" }, "symbol must be 1..10 characters"},
		{"long symbol", func(a *InitializeAttributes) { a.Symbol = "ABCDEFGHIJK" }, "symbol must be 1..10 characters"},
		{"lowercase symbol", func(a *InitializeAttributes) { a.Symbol = "Rusd" }, "only uppercase letters A-Z"},
		{"digit in symbol", func(a *InitializeAttributes) { a.Symbol = "USD1" }, "only uppercase letters A-Z"},
		{"decimals", func(a *InitializeAttributes) { a.Decimals = 10 }, "decimals must be 0..9"},
		{"features", func(a *InitializeAttributes) { a.Features = 0x80 }, "unknown feature flags"},
		{"fee bps", func(a *InitializeAttributes) { a.Hook.FeeBasisPoints = 10_001 }, "basis points must not exceed 10000"},
		{"epoch above cap", func(a *InitializeAttributes) { a.SupplyCap = 10; a.EpochQuota = 11 }, "epoch quota 11 exceeds supply cap 10"},
		{"delegate without feature", func(a *InitializeAttributes) {
			a.Features = FeatureTransferHook
			a.PermanentDelegate = &delegate
		}, "requires the permanent delegate feature"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attr := validInitialize()
			tc.modify(attr)
			err := attr.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.ErrorContains(t, err, tc.errStr)
		})
	}

	t.Run("max values", func(t *testing.T) {
		attr := validInitialize()
		attr.Name = strings.Repeat("€", 32)
		attr.Symbol = "ABCDEFGH12"
		attr.Decimals = 9
		attr.Hook.FeeBasisPoints = 10_000
		require.NoError(t, attr.Validate())
	})
}

func TestMintAttributes_Validate(t *testing.T) {
	recipient := DeriveIdentity([]byte("recipient"))
	require.NoError(t, (&MintAttributes{Recipient: recipient, Amount: 1}).Validate())
	require.ErrorIs(t, (&MintAttributes{Recipient: recipient}).Validate(), ErrInvalidAmount)
	require.ErrorIs(t, (&MintAttributes{Amount: 1}).Validate(), ErrInvalidInstruction)

	batch := &BatchMintAttributes{}
	require.ErrorIs(t, batch.Validate(), ErrInvalidInstruction)
	for i := 0; i < MaxBatchSize; i++ {
		batch.Entries = append(batch.Entries, MintAttributes{Recipient: recipient, Amount: 5})
	}
	require.NoError(t, batch.Validate())
	batch.Entries = append(batch.Entries, MintAttributes{Recipient: recipient, Amount: 5})
	require.ErrorContains(t, batch.Validate(), "batch must contain 1..10 entries, got 11")

	batch.Entries = batch.Entries[:2]
	batch.Entries[1].Amount = 0
	err := batch.Validate()
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.ErrorContains(t, err, "entry 1")
}

func TestBatchBlacklistAttributes_Validate(t *testing.T) {
	a := DeriveIdentity([]byte("a"))
	b := DeriveIdentity([]byte("b"))
	attr := &BatchBlacklistAttributes{Entries: []AddBlacklistAttributes{{Address: a, Reason: "sanctions"}, {Address: b, Reason: "fraud"}}}
	require.NoError(t, attr.Validate())

	attr.Entries[1].Address = a
	require.ErrorContains(t, attr.Validate(), "is listed more than once")

	attr.Entries[1] = AddBlacklistAttributes{Address: b, Reason: strings.Repeat("r", 129)}
	require.ErrorContains(t, attr.Validate(), "reason must be 1..128 characters")
}

func TestSeizeAttributes_Validate(t *testing.T) {
	src := DeriveIdentity([]byte("source"))
	treasury := DeriveIdentity([]byte("treasury"))
	zero := uint64(0)

	require.NoError(t, (&SeizeAttributes{Source: src, Treasury: treasury, Reason: "court order"}).Validate())
	// checked after the authority of the caller
	require.NoError(t, (&SeizeAttributes{Source: src, Treasury: src, Reason: "court order"}).Validate())
	require.ErrorIs(t, (&SeizeAttributes{Source: src, Treasury: treasury, Amount: &zero, Reason: "x"}).Validate(), ErrInvalidAmount)
	require.ErrorIs(t, (&SeizeAttributes{Source: src, Treasury: treasury}).Validate(), ErrInvalidInstruction)
}

func TestMultisigAttributes_Validate(t *testing.T) {
	signers := make([]Identity, 11)
	for i := range signers {
		signers[i] = DeriveIdentity([]byte{byte(i)})
	}
	cases := []struct {
		name string
		attr MultisigAttributes
		err  error
	}{
		{"ok", MultisigAttributes{Threshold: 2, Signers: signers[:3]}, nil},
		{"threshold equals signers", MultisigAttributes{Threshold: 10, Signers: signers[:10]}, nil},
		{"too many signers", MultisigAttributes{Threshold: 2, Signers: signers}, ErrTooManySigners},
		{"zero threshold", MultisigAttributes{Threshold: 0, Signers: signers[:3]}, ErrInvalidThreshold},
		{"threshold above signers", MultisigAttributes{Threshold: 4, Signers: signers[:3]}, ErrInvalidThreshold},
		{"no signers", MultisigAttributes{Threshold: 1}, ErrInvalidThreshold},
		{"duplicate signer", MultisigAttributes{Threshold: 1, Signers: []Identity{signers[0], signers[0]}}, ErrInvalidInstruction},
		{"zero signer", MultisigAttributes{Threshold: 1, Signers: []Identity{{}}}, ErrInvalidInstruction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.attr.Validate()
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestUpdateHookConfigAttributes_Validate(t *testing.T) {
	require.ErrorContains(t, (&UpdateHookConfigAttributes{}).Validate(), "nothing to update")
	bps := uint16(10_001)
	require.ErrorIs(t, (&UpdateHookConfigAttributes{FeeBasisPoints: &bps}).Validate(), ErrInvalidConfig)
	bps = 50
	require.NoError(t, (&UpdateHookConfigAttributes{FeeBasisPoints: &bps}).Validate())
	require.ErrorIs(t, (&UpdateHookConfigAttributes{FeeCollector: &Identity{}}).Validate(), ErrInvalidConfig)
}

func TestAttributesFor(t *testing.T) {
	for _, typ := range []string{
		CmdInitialize, CmdMint, CmdBatchMint, CmdBurn, CmdFreeze, CmdThaw, CmdPause, CmdUnpause,
		CmdUpdateFeatures, CmdSetSupplyCap, CmdSetEpochQuota, CmdTransferAuthority, CmdGrantRole,
		CmdRevokeRole, CmdSetMinterQuota, CmdTransfer, CmdAddBlacklist, CmdRemoveBlacklist,
		CmdBatchBlacklist, CmdAddWhitelist, CmdRemoveWhitelist, CmdUpdateHookConfig,
		CmdSetPermanentDelegate, CmdSeize, CmdInitializeMultisig, CmdCreateProposal,
		CmdApproveProposal, CmdExecuteProposal, CmdCancelProposal, CmdUpdateMultisig,
	} {
		require.NotNil(t, AttributesFor(typ), typ)
	}
	require.Nil(t, AttributesFor("close_mint"))
}
