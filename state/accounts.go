package state

import (
	"errors"
	"fmt"

	"github.com/sss-org/sss-engine/keyvaluedb"
	"github.com/sss-org/sss-engine/types"
)

var ErrReadOnly = errors.New("accounts are read-only")

// Accounts is typed accessor of the records, bound to a transaction (or the committed state).
type Accounts struct {
	r keyvaluedb.Reader
	w keyvaluedb.Writer
}

/*
NewAccounts returns accounts reading from r and writing to w. When w is nil
the accounts are read-only.
*/
func NewAccounts(r keyvaluedb.Reader, w keyvaluedb.Writer) *Accounts {
	return &Accounts{r: r, w: w}
}

func get[T any](a *Accounts, key []byte, what string) (*T, bool, error) {
	v := new(T)
	found, err := a.r.Read(key, v)
	if err != nil {
		return nil, found, fmt.Errorf("reading %s: %w", what, err)
	}
	if !found {
		return nil, false, nil
	}
	return v, true, nil
}

func (a *Accounts) put(key []byte, v any, what string) error {
	if a.w == nil {
		return fmt.Errorf("writing %s: %w", what, ErrReadOnly)
	}
	if err := a.w.Write(key, v); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

func (a *Accounts) HasStablecoin(mint types.Identity) (bool, error) {
	_, found, err := get[types.StablecoinState](a, types.StablecoinKey(mint), "stablecoin state")
	return found, err
}

// Stablecoin returns state of the mint, error of kind NotInitialized when it doesn't exist.
func (a *Accounts) Stablecoin(mint types.Identity) (*types.StablecoinState, error) {
	sc, found, err := get[types.StablecoinState](a, types.StablecoinKey(mint), "stablecoin state")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: stablecoin %s", types.ErrNotInitialized, mint)
	}
	return sc, nil
}

func (a *Accounts) PutStablecoin(sc *types.StablecoinState) error {
	return a.put(types.StablecoinKey(sc.Mint), sc, "stablecoin state")
}

func (a *Accounts) HookConfig(mint types.Identity) (*types.HookConfig, error) {
	hc, found, err := get[types.HookConfig](a, types.HookConfigKey(mint), "hook config")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: hook config of %s", types.ErrNotInitialized, mint)
	}
	return hc, nil
}

func (a *Accounts) PutHookConfig(hc *types.HookConfig) error {
	return a.put(types.HookConfigKey(hc.Mint), hc, "hook config")
}

// Roles returns role account of the owner, account with no roles when it doesn't exist.
func (a *Accounts) Roles(mint, owner types.Identity) (*types.RoleAccount, error) {
	ra, found, err := get[types.RoleAccount](a, types.RoleKey(mint, owner), "role account")
	if err != nil {
		return nil, err
	}
	if !found {
		return &types.RoleAccount{Mint: mint, Owner: owner}, nil
	}
	return ra, nil
}

func (a *Accounts) PutRoles(ra *types.RoleAccount) error {
	return a.put(types.RoleKey(ra.Mint, ra.Owner), ra, "role account")
}

func (a *Accounts) HasRole(mint, owner types.Identity, role types.Role) (bool, error) {
	ra, err := a.Roles(mint, owner)
	if err != nil {
		return false, err
	}
	return ra.Roles.Has(role), nil
}

// Minter returns minter info, found == false when quota has never been set nor minted.
func (a *Accounts) Minter(mint, minter types.Identity) (mi *types.MinterInfo, found bool, err error) {
	return get[types.MinterInfo](a, types.MinterKey(mint, minter), "minter info")
}

func (a *Accounts) PutMinter(mi *types.MinterInfo) error {
	return a.put(types.MinterKey(mi.Mint, mi.Minter), mi, "minter info")
}

func (a *Accounts) TokenAccount(mint, owner types.Identity) (*types.TokenAccount, bool, error) {
	return get[types.TokenAccount](a, types.TokenAccountKey(mint, owner), "token account")
}

func (a *Accounts) PutTokenAccount(acc *types.TokenAccount) error {
	return a.put(types.TokenAccountKey(acc.Mint, acc.Owner), acc, "token account")
}

func (a *Accounts) BlacklistEntry(mint, address types.Identity) (*types.BlacklistEntry, bool, error) {
	return get[types.BlacklistEntry](a, types.BlacklistKey(mint, address), "blacklist entry")
}

func (a *Accounts) PutBlacklistEntry(e *types.BlacklistEntry) error {
	return a.put(types.BlacklistKey(e.Mint, e.Address), e, "blacklist entry")
}

// IsBlacklisted returns true only when an active entry exists for the address.
func (a *Accounts) IsBlacklisted(mint, address types.Identity) (bool, error) {
	e, found, err := a.BlacklistEntry(mint, address)
	if err != nil || !found {
		return false, err
	}
	return e.IsActive, nil
}

func (a *Accounts) WhitelistEntry(mint, address types.Identity) (*types.WhitelistEntry, bool, error) {
	return get[types.WhitelistEntry](a, types.WhitelistKey(mint, address), "whitelist entry")
}

func (a *Accounts) PutWhitelistEntry(e *types.WhitelistEntry) error {
	return a.put(types.WhitelistKey(e.Mint, e.Address), e, "whitelist entry")
}

// IsWhitelisted returns true only when an active, not expired entry exists for the address.
func (a *Accounts) IsWhitelisted(mint, address types.Identity, now uint64) (bool, error) {
	e, found, err := a.WhitelistEntry(mint, address)
	if err != nil || !found {
		return false, err
	}
	return e.ActiveAt(now), nil
}

func (a *Accounts) MultisigConfig(mint types.Identity) (*types.MultisigConfig, bool, error) {
	return get[types.MultisigConfig](a, types.MultisigKey(mint), "multisig config")
}

func (a *Accounts) PutMultisigConfig(cfg *types.MultisigConfig) error {
	return a.put(types.MultisigKey(cfg.Mint), cfg, "multisig config")
}

func (a *Accounts) Proposal(mint, id types.Identity) (*types.Proposal, error) {
	p, found, err := get[types.Proposal](a, types.ProposalKey(mint, id), "proposal")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: proposal %s", types.ErrProposalNotFound, id)
	}
	return p, nil
}

func (a *Accounts) HasProposal(mint, id types.Identity) (bool, error) {
	_, found, err := get[types.Proposal](a, types.ProposalKey(mint, id), "proposal")
	return found, err
}

func (a *Accounts) PutProposal(p *types.Proposal) error {
	return a.put(types.ProposalKey(p.Mint, p.ID), p, "proposal")
}
