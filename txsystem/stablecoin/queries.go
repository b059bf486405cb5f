package stablecoin

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem/compliance"
	"github.com/sss-org/sss-engine/types"
)

// ProposalInfo is the proposal with its status evaluated at query time.
type ProposalInfo struct {
	*types.Proposal
	Status    types.ProposalStatus `json:"status"`
	Approved  int                  `json:"approved"` // approvals by current signers
	Threshold uint8                `json:"threshold"`
}

func (s *TxSystem) Stablecoin(mint types.Identity) (*types.StablecoinState, error) {
	var sc *types.StablecoinState
	err := s.engine.View(func(a *state.Accounts) (err error) {
		sc, err = a.Stablecoin(mint)
		return err
	})
	return sc, err
}

func (s *TxSystem) HookConfig(mint types.Identity) (*types.HookConfig, error) {
	var hc *types.HookConfig
	err := s.engine.View(func(a *state.Accounts) (err error) {
		hc, err = a.HookConfig(mint)
		return err
	})
	return hc, err
}

// Roles returns role account of the owner, account without roles when none have been granted.
func (s *TxSystem) Roles(mint, owner types.Identity) (*types.RoleAccount, error) {
	var ra *types.RoleAccount
	err := s.engine.View(func(a *state.Accounts) (err error) {
		ra, err = a.Roles(mint, owner)
		return err
	})
	return ra, err
}

// HasRole returns true when owner holds any of the "role" bits.
func (s *TxSystem) HasRole(mint, owner types.Identity, role types.Role) (bool, error) {
	var ok bool
	err := s.engine.View(func(a *state.Accounts) (err error) {
		ok, err = a.HasRole(mint, owner, role)
		return err
	})
	return ok, err
}

// TokenAccount returns the account of the owner, empty account when it doesn't exist.
func (s *TxSystem) TokenAccount(mint, owner types.Identity) (*types.TokenAccount, error) {
	var acc *types.TokenAccount
	err := s.engine.View(func(a *state.Accounts) error {
		if _, err := a.Stablecoin(mint); err != nil {
			return err
		}
		v, found, err := a.TokenAccount(mint, owner)
		if err != nil {
			return err
		}
		if !found {
			v = &types.TokenAccount{Mint: mint, Owner: owner}
		}
		acc = v
		return nil
	})
	return acc, err
}

// Minter returns the quota info of the minter, zero quota (unlimited) when never set.
func (s *TxSystem) Minter(mint, minter types.Identity) (*types.MinterInfo, error) {
	var mi *types.MinterInfo
	err := s.engine.View(func(a *state.Accounts) error {
		v, found, err := a.Minter(mint, minter)
		if err != nil {
			return err
		}
		if !found {
			v = &types.MinterInfo{Mint: mint, Minter: minter}
		}
		mi = v
		return nil
	})
	return mi, err
}

func (s *TxSystem) BlacklistEntry(mint, address types.Identity) (*types.BlacklistEntry, error) {
	var e *types.BlacklistEntry
	err := s.engine.View(func(a *state.Accounts) error {
		v, found, err := a.BlacklistEntry(mint, address)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", types.ErrBlacklistNotFound, address)
		}
		e = v
		return nil
	})
	return e, err
}

func (s *TxSystem) WhitelistEntry(mint, address types.Identity) (*types.WhitelistEntry, error) {
	var e *types.WhitelistEntry
	err := s.engine.View(func(a *state.Accounts) error {
		v, found, err := a.WhitelistEntry(mint, address)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", types.ErrWhitelistNotFound, address)
		}
		e = v
		return nil
	})
	return e, err
}

func (s *TxSystem) MultisigConfig(mint types.Identity) (*types.MultisigConfig, error) {
	var cfg *types.MultisigConfig
	err := s.engine.View(func(a *state.Accounts) error {
		v, found, err := a.MultisigConfig(mint)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: multisig is not configured for %s", types.ErrNotInitialized, mint)
		}
		cfg = v
		return nil
	})
	return cfg, err
}

// Proposal returns the proposal with the status evaluated at the current time of the engine clock.
func (s *TxSystem) Proposal(mint, id types.Identity) (*ProposalInfo, error) {
	var info *ProposalInfo
	err := s.engine.View(func(a *state.Accounts) error {
		p, err := a.Proposal(mint, id)
		if err != nil {
			return err
		}
		cfg, _, err := a.MultisigConfig(mint)
		if err != nil {
			return err
		}
		info = newProposalInfo(p, cfg, s.engine.Now())
		return nil
	})
	return info, err
}

// Proposals returns all the proposals of the mint, with statuses evaluated at the current time.
func (s *TxSystem) Proposals(mint types.Identity) ([]*ProposalInfo, error) {
	cfg, err := s.MultisigConfig(mint)
	if err != nil {
		return nil, err
	}
	proposals, err := s.store.Proposals(mint)
	if err != nil {
		return nil, fmt.Errorf("loading proposals: %w", err)
	}
	now := s.engine.Now()
	infos := make([]*ProposalInfo, 0, len(proposals))
	for _, p := range proposals {
		infos = append(infos, newProposalInfo(p, cfg, now))
	}
	return infos, nil
}

func newProposalInfo(p *types.Proposal, cfg *types.MultisigConfig, now uint64) *ProposalInfo {
	info := &ProposalInfo{Proposal: p, Status: p.Status(cfg, now)}
	if cfg != nil {
		info.Approved = cfg.ApprovalCount(p)
		info.Threshold = cfg.Threshold
	}
	return info
}

/*
PreviewTransfer evaluates the compliance rules for the transfer against the
committed state without executing it. When "now" is zero the engine clock is used.
*/
func (s *TxSystem) PreviewTransfer(req compliance.TransferRequest, now uint64) (*compliance.Verdict, error) {
	if now == 0 {
		now = s.engine.Now()
	}
	var v *compliance.Verdict
	err := s.engine.View(func(a *state.Accounts) (err error) {
		v, err = compliance.CheckTransfer(a, now, req)
		return err
	})
	return v, err
}
