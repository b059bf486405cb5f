package state

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sss-org/sss-engine/keyvaluedb"
	"github.com/sss-org/sss-engine/keyvaluedb/boltdb"
	"github.com/sss-org/sss-engine/keyvaluedb/memorydb"
	"github.com/sss-org/sss-engine/types"
)

var (
	mint  = types.DeriveIdentity([]byte("mint"))
	alice = types.DeriveIdentity([]byte("alice"))
	bob   = types.DeriveIdentity([]byte("bob"))
)

func backends(t *testing.T) map[string]keyvaluedb.KeyValueDB {
	bdb, err := boltdb.New(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, bdb.Close()) })
	return map[string]keyvaluedb.KeyValueDB{
		"memorydb": memorydb.New(),
		"boltdb":   bdb,
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(nil)
	require.EqualError(t, err, "key-value db is nil")
	require.Nil(t, s)
}

func TestStore_UpdateCommitAndRollback(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := NewStore(db)
			require.NoError(t, err)

			require.NoError(t, s.Update(func(a *Accounts) error {
				return a.PutStablecoin(&types.StablecoinState{Mint: mint, Name: "USD", TotalSupply: 10})
			}))

			expErr := errors.New("validation failed")
			err = s.Update(func(a *Accounts) error {
				if err := a.Apply(
					UpdateStablecoin(mint, func(sc *types.StablecoinState) error {
						sc.TotalSupply += 5
						return nil
					}),
					UpdateTokenAccount(mint, alice, false, func(acc *types.TokenAccount) error {
						acc.Balance = 5
						return nil
					}),
				); err != nil {
					return err
				}
				return expErr
			})
			require.ErrorIs(t, err, expErr)

			require.NoError(t, s.View(func(a *Accounts) error {
				sc, err := a.Stablecoin(mint)
				require.NoError(t, err)
				require.EqualValues(t, 10, sc.TotalSupply)
				_, found, err := a.TokenAccount(mint, alice)
				require.NoError(t, err)
				require.False(t, found)
				return nil
			}))
		})
	}
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	s, err := NewStore(memorydb.New())
	require.NoError(t, err)
	err = s.View(func(a *Accounts) error {
		return a.PutRoles(&types.RoleAccount{Mint: mint, Owner: alice, Roles: types.RoleMaster})
	})
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestAccounts_Defaults(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := NewStore(db)
			require.NoError(t, err)
			require.NoError(t, s.View(func(a *Accounts) error {
				_, err := a.Stablecoin(mint)
				require.ErrorIs(t, err, types.ErrNotInitialized)
				_, err = a.HookConfig(mint)
				require.ErrorIs(t, err, types.ErrNotInitialized)
				_, err = a.Proposal(mint, alice)
				require.ErrorIs(t, err, types.ErrProposalNotFound)

				ra, err := a.Roles(mint, alice)
				require.NoError(t, err)
				require.Equal(t, &types.RoleAccount{Mint: mint, Owner: alice}, ra)

				ok, err := a.IsBlacklisted(mint, alice)
				require.NoError(t, err)
				require.False(t, ok)
				ok, err = a.IsWhitelisted(mint, alice, 1)
				require.NoError(t, err)
				require.False(t, ok)
				_, found, err := a.MultisigConfig(mint)
				require.NoError(t, err)
				require.False(t, found)
				return nil
			}))
		})
	}
}

func TestAccounts_RecordsRoundTrip(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := NewStore(db)
			require.NoError(t, err)
			delegate := bob
			hc := &types.HookConfig{Mint: mint, Authority: alice, TransferFeeBasisPoints: 100, PermanentDelegate: &delegate, FeeCollector: alice}
			ins, err := types.NewInstruction(types.CmdPause, &types.PauseAttributes{})
			require.NoError(t, err)
			prop := &types.Proposal{ID: bob, Mint: mint, Proposer: alice, Instruction: ins, Approvals: []types.Identity{alice}, CreatedAt: 1, ExpiresAt: 10}

			require.NoError(t, s.Update(func(a *Accounts) error {
				return errors.Join(
					a.PutHookConfig(hc),
					a.PutProposal(prop),
					a.PutBlacklistEntry(&types.BlacklistEntry{Mint: mint, Address: bob, Reason: "fraud", IsActive: true}),
					a.PutWhitelistEntry(&types.WhitelistEntry{Mint: mint, Address: alice, Expiry: 50, IsActive: true}),
				)
			}))

			require.NoError(t, s.View(func(a *Accounts) error {
				got, err := a.HookConfig(mint)
				require.NoError(t, err)
				require.Equal(t, hc, got)
				gotProp, err := a.Proposal(mint, bob)
				require.NoError(t, err)
				require.Equal(t, prop.Approvals, gotProp.Approvals)
				require.Equal(t, ins.Type, gotProp.Instruction.Type)
				require.EqualValues(t, ins.Attributes, gotProp.Instruction.Attributes)

				ok, err := a.IsBlacklisted(mint, bob)
				require.NoError(t, err)
				require.True(t, ok)
				ok, err = a.IsWhitelisted(mint, alice, 49)
				require.NoError(t, err)
				require.True(t, ok)
				ok, err = a.IsWhitelisted(mint, alice, 50)
				require.NoError(t, err)
				require.False(t, ok)
				return nil
			}))
		})
	}
}

func TestActions(t *testing.T) {
	s, err := NewStore(memorydb.New())
	require.NoError(t, err)

	t.Run("token account is created frozen", func(t *testing.T) {
		require.NoError(t, s.Update(func(a *Accounts) error {
			return a.Apply(UpdateTokenAccount(mint, alice, true, func(acc *types.TokenAccount) error { return nil }))
		}))
		require.NoError(t, s.View(func(a *Accounts) error {
			acc, found, err := a.TokenAccount(mint, alice)
			require.NoError(t, err)
			require.True(t, found)
			require.True(t, acc.IsFrozen)
			return nil
		}))
	})

	t.Run("minter info is created on first update", func(t *testing.T) {
		require.NoError(t, s.Update(func(a *Accounts) error {
			return a.Apply(UpdateMinter(mint, bob, func(mi *types.MinterInfo) error {
				require.Zero(t, mi.Quota)
				mi.Minted = 7
				return nil
			}))
		}))
		require.NoError(t, s.View(func(a *Accounts) error {
			mi, found, err := a.Minter(mint, bob)
			require.NoError(t, err)
			require.True(t, found)
			require.EqualValues(t, 7, mi.Minted)
			return nil
		}))
	})

	t.Run("apply stops on first error", func(t *testing.T) {
		called := false
		err := s.Update(func(a *Accounts) error {
			return a.Apply(
				UpdateStablecoin(mint, func(sc *types.StablecoinState) error { return nil }),
				func(a *Accounts) error { called = true; return nil },
			)
		})
		require.ErrorIs(t, err, types.ErrNotInitialized)
		require.False(t, called)
	})

	t.Run("nil update func", func(t *testing.T) {
		err := s.Update(func(a *Accounts) error {
			return a.Apply(UpdateRoles(mint, alice, nil))
		})
		require.EqualError(t, err, "update function is nil")
	})

	t.Run("roles", func(t *testing.T) {
		require.NoError(t, s.Update(func(a *Accounts) error {
			return a.Apply(UpdateRoles(mint, alice, func(ra *types.RoleAccount) error {
				ra.Roles = ra.Roles.Grant(types.RoleMinter)
				return nil
			}))
		}))
		require.NoError(t, s.View(func(a *Accounts) error {
			ok, err := a.HasRole(mint, alice, types.RoleMinter|types.RoleMaster)
			require.NoError(t, err)
			require.True(t, ok)
			ok, err = a.HasRole(mint, alice, types.RoleMaster)
			require.NoError(t, err)
			require.False(t, ok)
			return nil
		}))
	})
}

func TestStore_Proposals(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := NewStore(db)
			require.NoError(t, err)
			other := types.DeriveIdentity([]byte("other mint"))

			proposals, err := s.Proposals(mint)
			require.NoError(t, err)
			require.Empty(t, proposals)

			require.NoError(t, s.Update(func(a *Accounts) error {
				for i, p := range []*types.Proposal{
					{ID: types.ProposalID(mint, alice, 1), Mint: mint, Proposer: alice, ExpiresAt: 10},
					{ID: types.ProposalID(mint, bob, 1), Mint: mint, Proposer: bob, ExpiresAt: 20},
					{ID: types.ProposalID(other, alice, 1), Mint: other, Proposer: alice, ExpiresAt: 30},
				} {
					if err := a.PutProposal(p); err != nil {
						return fmt.Errorf("proposal %d: %w", i, err)
					}
				}
				// roles are stored with different prefix
				return a.PutRoles(&types.RoleAccount{Mint: mint, Owner: alice, Roles: types.RoleMaster})
			}))

			proposals, err = s.Proposals(mint)
			require.NoError(t, err)
			require.Len(t, proposals, 2)
			for _, p := range proposals {
				require.Equal(t, mint, p.Mint)
			}
			require.ElementsMatch(t, []types.Identity{alice, bob}, []types.Identity{proposals[0].Proposer, proposals[1].Proposer})

			proposals, err = s.Proposals(other)
			require.NoError(t, err)
			require.Len(t, proposals, 1)
			require.EqualValues(t, 30, proposals[0].ExpiresAt)
		})
	}
}
