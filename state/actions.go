package state

import (
	"errors"
	"fmt"

	"github.com/sss-org/sss-engine/types"
)

type (
	// Action is a single state modification, see Accounts.Apply.
	Action func(a *Accounts) error

	UpdateFunc[T any] func(v *T) error
)

// Apply executes actions in order, stops on the first error.
func (a *Accounts) Apply(actions ...Action) error {
	for _, action := range actions {
		if err := action(a); err != nil {
			return err
		}
	}
	return nil
}

func UpdateStablecoin(mint types.Identity, f UpdateFunc[types.StablecoinState]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		sc, err := a.Stablecoin(mint)
		if err != nil {
			return err
		}
		if err := f(sc); err != nil {
			return err
		}
		return a.PutStablecoin(sc)
	}
}

func UpdateHookConfig(mint types.Identity, f UpdateFunc[types.HookConfig]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		hc, err := a.HookConfig(mint)
		if err != nil {
			return err
		}
		if err := f(hc); err != nil {
			return err
		}
		return a.PutHookConfig(hc)
	}
}

func UpdateRoles(mint, owner types.Identity, f UpdateFunc[types.RoleAccount]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		ra, err := a.Roles(mint, owner)
		if err != nil {
			return err
		}
		if err := f(ra); err != nil {
			return err
		}
		return a.PutRoles(ra)
	}
}

// UpdateMinter updates minter info, creating it (quota 0, minted 0) when missing.
func UpdateMinter(mint, minter types.Identity, f UpdateFunc[types.MinterInfo]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		mi, found, err := a.Minter(mint, minter)
		if err != nil {
			return err
		}
		if !found {
			mi = &types.MinterInfo{Mint: mint, Minter: minter}
		}
		if err := f(mi); err != nil {
			return err
		}
		return a.PutMinter(mi)
	}
}

/*
UpdateTokenAccount updates the token account of the owner. Missing account is
created with zero balance, frozen when "createFrozen" is true.
*/
func UpdateTokenAccount(mint, owner types.Identity, createFrozen bool, f UpdateFunc[types.TokenAccount]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		acc, found, err := a.TokenAccount(mint, owner)
		if err != nil {
			return err
		}
		if !found {
			acc = &types.TokenAccount{Mint: mint, Owner: owner, IsFrozen: createFrozen}
		}
		if err := f(acc); err != nil {
			return fmt.Errorf("account %s: %w", owner, err)
		}
		return a.PutTokenAccount(acc)
	}
}

func UpdateProposal(mint, id types.Identity, f UpdateFunc[types.Proposal]) Action {
	return func(a *Accounts) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		p, err := a.Proposal(mint, id)
		if err != nil {
			return err
		}
		if err := f(p); err != nil {
			return err
		}
		return a.PutProposal(p)
	}
}
