package stablecoin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sss-org/sss-engine/keyvaluedb/memorydb"
	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/types"
)

func NewStore(t testing.TB) *state.Store {
	t.Helper()
	s, err := state.NewStore(memorydb.New())
	require.NoError(t, err)
	return s
}

// Seed applies actions to the store in single transaction.
func Seed(t testing.TB, s *state.Store, actions ...state.Action) {
	t.Helper()
	require.NoError(t, s.Update(func(a *state.Accounts) error { return a.Apply(actions...) }))
}

/*
Initialized returns actions creating state of an initialized mint with the
authority holding MASTER role. Modifiers are applied to the records before
they are stored.
*/
func Initialized(mint, authority types.Identity, modify ...func(*types.StablecoinState, *types.HookConfig)) []state.Action {
	sc := &types.StablecoinState{
		Mint:      mint,
		Authority: authority,
		Name:      "Test USD",
		Symbol:    "TUSD",
		Decimals:  6,
		Features:  types.FeatureTransferHook,
	}
	hc := &types.HookConfig{
		Mint:             mint,
		Authority:        authority,
		BlacklistEnabled: true,
		FeeCollector:     authority,
	}
	for _, f := range modify {
		f(sc, hc)
	}
	return []state.Action{
		func(a *state.Accounts) error { return a.PutStablecoin(sc) },
		func(a *state.Accounts) error { return a.PutHookConfig(hc) },
		GrantRoles(mint, authority, types.RoleMaster),
	}
}

func GrantRoles(mint, owner types.Identity, roles types.Role) state.Action {
	return state.UpdateRoles(mint, owner, func(ra *types.RoleAccount) error {
		ra.Roles = ra.Roles.Grant(roles)
		return nil
	})
}

func Balance(mint, owner types.Identity, balance uint64, frozen bool) state.Action {
	return func(a *state.Accounts) error {
		return a.PutTokenAccount(&types.TokenAccount{Mint: mint, Owner: owner, Balance: balance, IsFrozen: frozen})
	}
}

func Multisig(mint types.Identity, threshold uint8, signers ...types.Identity) state.Action {
	return func(a *state.Accounts) error {
		return a.PutMultisigConfig(&types.MultisigConfig{Mint: mint, Threshold: threshold, Signers: signers})
	}
}

// GetBalance returns balance of the account in committed state, 0 when account doesn't exist.
func GetBalance(t testing.TB, s *state.Store, mint, owner types.Identity) uint64 {
	t.Helper()
	var balance uint64
	require.NoError(t, s.View(func(a *state.Accounts) error {
		acc, found, err := a.TokenAccount(mint, owner)
		if found {
			balance = acc.Balance
		}
		return err
	}))
	return balance
}

func GetStablecoin(t testing.TB, s *state.Store, mint types.Identity) *types.StablecoinState {
	t.Helper()
	var sc *types.StablecoinState
	require.NoError(t, s.View(func(a *state.Accounts) (err error) {
		sc, err = a.Stablecoin(mint)
		return err
	}))
	return sc
}
