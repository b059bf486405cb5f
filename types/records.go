package types

import "slices"

const (
	MaxNameLength      = 32
	MaxSymbolLength    = 10
	MaxDecimals        = 9
	MaxBasisPoints     = 10_000
	MaxReasonLength    = 128
	MaxSigners         = 10
	MaxBatchSize       = 10
	DefaultEpochPeriod = 86_400
)

type (
	// StablecoinState is the root record of an issued token.
	StablecoinState struct {
		Mint               Identity `json:"mint"`
		Authority          Identity `json:"authority"`
		Name               string   `json:"name"`
		Symbol             string   `json:"symbol"`
		Decimals           uint8    `json:"decimals"`
		TotalSupply        uint64   `json:"total_supply"`
		IsPaused           bool     `json:"is_paused"`
		Features           Features `json:"features"`
		SupplyCap          uint64   `json:"supply_cap"`  // 0 = unlimited
		EpochQuota         uint64   `json:"epoch_quota"` // 0 = no epoch window
		CurrentEpochMinted uint64   `json:"current_epoch_minted"`
		CurrentEpochStart  uint64   `json:"current_epoch_start"`
		CreatedAt          uint64   `json:"created_at"`
	}

	// RoleAccount holds roles of the Owner for the Mint. Missing account means no roles.
	RoleAccount struct {
		Mint  Identity `json:"mint"`
		Owner Identity `json:"owner"`
		Roles Role     `json:"roles"`
	}

	MinterInfo struct {
		Mint   Identity `json:"mint"`
		Minter Identity `json:"minter"`
		Quota  uint64   `json:"quota"` // 0 = unlimited
		Minted uint64   `json:"minted"`
	}

	// TokenAccount is the balance of the Owner in the Mint's token.
	TokenAccount struct {
		Mint     Identity `json:"mint"`
		Owner    Identity `json:"owner"`
		Balance  uint64   `json:"balance"`
		IsFrozen bool     `json:"is_frozen"`
	}

	// HookConfig is the transfer hook (compliance) configuration of the mint.
	HookConfig struct {
		Mint                   Identity  `json:"mint"`
		Authority              Identity  `json:"authority"`
		TransferFeeBasisPoints uint16    `json:"transfer_fee_basis_points"`
		MaxTransferFee         uint64    `json:"max_transfer_fee"`
		MinTransferAmount      uint64    `json:"min_transfer_amount"`
		TotalFeesCollected     uint64    `json:"total_fees_collected"`
		IsPaused               bool      `json:"is_paused"`
		BlacklistEnabled       bool      `json:"blacklist_enabled"`
		PermanentDelegate      *Identity `json:"permanent_delegate,omitempty"`
		FeeCollector           Identity  `json:"fee_collector"`
	}

	BlacklistEntry struct {
		Mint          Identity `json:"mint"`
		Address       Identity `json:"address"`
		Reason        string   `json:"reason"`
		BlacklistedBy Identity `json:"blacklisted_by"`
		CreatedAt     uint64   `json:"created_at"`
		IsActive      bool     `json:"is_active"`
		RemovedBy     Identity `json:"removed_by"`
		RemovedAt     uint64   `json:"removed_at"`
	}

	WhitelistEntry struct {
		Mint      Identity `json:"mint"`
		Address   Identity `json:"address"`
		AddedBy   Identity `json:"added_by"`
		CreatedAt uint64   `json:"created_at"`
		Expiry    uint64   `json:"expiry"` // 0 = never expires
		IsActive  bool     `json:"is_active"`
		RemovedBy Identity `json:"removed_by"`
		RemovedAt uint64   `json:"removed_at"`
	}

	MultisigConfig struct {
		Mint      Identity   `json:"mint"`
		Threshold uint8      `json:"threshold"`
		Signers   []Identity `json:"signers"`
		// number of proposals created, informational
		ProposalCount uint64 `json:"proposal_count"`
	}

	Proposal struct {
		ID          Identity    `json:"id"`
		Mint        Identity    `json:"mint"`
		Proposer    Identity    `json:"proposer"`
		Instruction Instruction `json:"instruction"`
		Approvals   []Identity  `json:"approvals"`
		Executed    bool        `json:"executed"`
		Cancelled   bool        `json:"cancelled"`
		CreatedAt   uint64      `json:"created_at"`
		ExpiresAt   uint64      `json:"expires_at"`
	}

	ProposalStatus string
)

const (
	ProposalPending   ProposalStatus = "Pending"
	ProposalApproved  ProposalStatus = "Approved"
	ProposalExecuted  ProposalStatus = "Executed"
	ProposalCancelled ProposalStatus = "Cancelled"
	ProposalExpired   ProposalStatus = "Expired"
)

// Paused returns true when transfers must be blocked, either the token or the hook is paused.
func (hc *HookConfig) Paused(sc *StablecoinState) bool {
	return hc.IsPaused || (sc != nil && sc.IsPaused)
}

// IsDelegate returns true when id is the permanent delegate of the mint.
func (hc *HookConfig) IsDelegate(id Identity) bool {
	return hc.PermanentDelegate != nil && !hc.PermanentDelegate.IsZero() && *hc.PermanentDelegate == id
}

// ActiveAt returns true when the entry is active and not expired at "now".
func (e *WhitelistEntry) ActiveAt(now uint64) bool {
	return e != nil && e.IsActive && (e.Expiry == 0 || e.Expiry > now)
}

func (c *MultisigConfig) IsSigner(id Identity) bool {
	return slices.Contains(c.Signers, id)
}

// ApprovalCount counts approvals of the proposal given by the current signers.
func (c *MultisigConfig) ApprovalCount(p *Proposal) int {
	cnt := 0
	for _, a := range p.Approvals {
		if c.IsSigner(a) {
			cnt++
		}
	}
	return cnt
}

func (p *Proposal) HasApproved(id Identity) bool {
	return slices.Contains(p.Approvals, id)
}

func (p *Proposal) IsExpired(now uint64) bool {
	return now >= p.ExpiresAt
}

// Status evaluates the state of the proposal at "now" against the multisig config.
func (p *Proposal) Status(cfg *MultisigConfig, now uint64) ProposalStatus {
	switch {
	case p.Executed:
		return ProposalExecuted
	case p.Cancelled:
		return ProposalCancelled
	case p.IsExpired(now):
		return ProposalExpired
	case cfg != nil && cfg.ApprovalCount(p) >= int(cfg.Threshold):
		return ProposalApproved
	default:
		return ProposalPending
	}
}
