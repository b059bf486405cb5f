package types

import (
	"fmt"
	"unicode/utf8"
)

// command types
const (
	CmdInitialize        = "initialize"
	CmdMint              = "mint"
	CmdBatchMint         = "batch_mint"
	CmdBurn              = "burn"
	CmdFreeze            = "freeze"
	CmdThaw              = "thaw"
	CmdPause             = "pause"
	CmdUnpause           = "unpause"
	CmdUpdateFeatures    = "update_features"
	CmdSetSupplyCap      = "set_supply_cap"
	CmdSetEpochQuota     = "set_epoch_quota"
	CmdTransferAuthority = "transfer_authority"

	CmdGrantRole      = "grant_role"
	CmdRevokeRole     = "revoke_role"
	CmdSetMinterQuota = "set_minter_quota"

	CmdTransfer             = "transfer"
	CmdAddBlacklist         = "add_blacklist"
	CmdRemoveBlacklist      = "remove_blacklist"
	CmdBatchBlacklist       = "batch_blacklist"
	CmdAddWhitelist         = "add_whitelist"
	CmdRemoveWhitelist      = "remove_whitelist"
	CmdUpdateHookConfig     = "update_hook_config"
	CmdSetPermanentDelegate = "set_permanent_delegate"

	CmdSeize = "seize"

	CmdInitializeMultisig = "initialize_multisig"
	CmdCreateProposal     = "create_proposal"
	CmdApproveProposal    = "approve_proposal"
	CmdExecuteProposal    = "execute_proposal"
	CmdCancelProposal     = "cancel_proposal"
	CmdUpdateMultisig     = "update_multisig"
)

// Validator is implemented by attributes which can be validated without state.
type Validator interface {
	Validate() error
}

type (
	InitializeAttributes struct {
		Name              string     `json:"name"`
		Symbol            string     `json:"symbol"`
		Decimals          uint8      `json:"decimals"`
		Features          Features   `json:"features"`
		SupplyCap         uint64     `json:"supply_cap"`
		EpochQuota        uint64     `json:"epoch_quota"`
		Hook              HookParams `json:"hook"`
		PermanentDelegate *Identity  `json:"permanent_delegate,omitempty"`
	}

	HookParams struct {
		FeeBasisPoints    uint16    `json:"fee_basis_points"`
		MaxTransferFee    uint64    `json:"max_transfer_fee"`
		MinTransferAmount uint64    `json:"min_transfer_amount"`
		BlacklistEnabled  bool      `json:"blacklist_enabled"`
		FeeCollector      *Identity `json:"fee_collector,omitempty"`
	}

	MintAttributes struct {
		Recipient Identity `json:"recipient"`
		Amount    uint64   `json:"amount"`
	}

	BatchMintAttributes struct {
		Entries []MintAttributes `json:"entries"`
	}

	BurnAttributes struct {
		Account Identity `json:"account"`
		Amount  uint64   `json:"amount"`
	}

	// FreezeAttributes are used by both freeze and thaw.
	FreezeAttributes struct {
		Account Identity `json:"account"`
	}

	// PauseAttributes are used by both pause and unpause.
	PauseAttributes struct{}

	UpdateFeaturesAttributes struct {
		Features Features `json:"features"`
	}

	SetSupplyCapAttributes struct {
		SupplyCap uint64 `json:"supply_cap"`
	}

	SetEpochQuotaAttributes struct {
		EpochQuota uint64 `json:"epoch_quota"`
	}

	TransferAuthorityAttributes struct {
		NewAuthority Identity `json:"new_authority"`
	}

	// RoleAttributes are used by both grant_role and revoke_role.
	RoleAttributes struct {
		Target Identity `json:"target"`
		Roles  Role     `json:"roles"`
	}

	SetMinterQuotaAttributes struct {
		Minter Identity `json:"minter"`
		Quota  uint64   `json:"quota"`
	}

	TransferAttributes struct {
		Source      Identity `json:"source"`
		Destination Identity `json:"destination"`
		Amount      uint64   `json:"amount"`
	}

	AddBlacklistAttributes struct {
		Address Identity `json:"address"`
		Reason  string   `json:"reason"`
	}

	RemoveBlacklistAttributes struct {
		Address Identity `json:"address"`
	}

	BatchBlacklistAttributes struct {
		Entries []AddBlacklistAttributes `json:"entries"`
	}

	AddWhitelistAttributes struct {
		Address Identity `json:"address"`
		Expiry  uint64   `json:"expiry"`
	}

	RemoveWhitelistAttributes struct {
		Address Identity `json:"address"`
	}

	// UpdateHookConfigAttributes changes the fields which are not nil.
	UpdateHookConfigAttributes struct {
		FeeBasisPoints    *uint16   `json:"fee_basis_points,omitempty"`
		MaxTransferFee    *uint64   `json:"max_transfer_fee,omitempty"`
		MinTransferAmount *uint64   `json:"min_transfer_amount,omitempty"`
		IsPaused          *bool     `json:"is_paused,omitempty"`
		BlacklistEnabled  *bool     `json:"blacklist_enabled,omitempty"`
		FeeCollector      *Identity `json:"fee_collector,omitempty"`
	}

	// SetPermanentDelegateAttributes sets the delegate, nil Delegate clears it.
	SetPermanentDelegateAttributes struct {
		Delegate *Identity `json:"delegate,omitempty"`
	}

	SeizeAttributes struct {
		Source   Identity `json:"source"`
		Treasury Identity `json:"treasury"`
		Amount   *uint64  `json:"amount,omitempty"` // nil = full balance
		Reason   string   `json:"reason"`
	}

	// MultisigAttributes are used by both initialize_multisig and update_multisig.
	MultisigAttributes struct {
		Threshold uint8      `json:"threshold"`
		Signers   []Identity `json:"signers"`
	}

	CreateProposalAttributes struct {
		Instruction      Instruction `json:"instruction"`
		ExpiresInSeconds uint64      `json:"expires_in_seconds"`
	}

	// ProposalAttributes are used by approve, execute and cancel proposal commands.
	ProposalAttributes struct {
		ProposalID Identity `json:"proposal_id"`
	}
)

/*
AttributesFor returns pointer to new (zero value) attributes struct for the
command type, nil when the type is unknown.
*/
func AttributesFor(cmdType string) any {
	switch cmdType {
	case CmdInitialize:
		return &InitializeAttributes{}
	case CmdMint:
		return &MintAttributes{}
	case CmdBatchMint:
		return &BatchMintAttributes{}
	case CmdBurn:
		return &BurnAttributes{}
	case CmdFreeze, CmdThaw:
		return &FreezeAttributes{}
	case CmdPause, CmdUnpause:
		return &PauseAttributes{}
	case CmdUpdateFeatures:
		return &UpdateFeaturesAttributes{}
	case CmdSetSupplyCap:
		return &SetSupplyCapAttributes{}
	case CmdSetEpochQuota:
		return &SetEpochQuotaAttributes{}
	case CmdTransferAuthority:
		return &TransferAuthorityAttributes{}
	case CmdGrantRole, CmdRevokeRole:
		return &RoleAttributes{}
	case CmdSetMinterQuota:
		return &SetMinterQuotaAttributes{}
	case CmdTransfer:
		return &TransferAttributes{}
	case CmdAddBlacklist:
		return &AddBlacklistAttributes{}
	case CmdRemoveBlacklist:
		return &RemoveBlacklistAttributes{}
	case CmdBatchBlacklist:
		return &BatchBlacklistAttributes{}
	case CmdAddWhitelist:
		return &AddWhitelistAttributes{}
	case CmdRemoveWhitelist:
		return &RemoveWhitelistAttributes{}
	case CmdUpdateHookConfig:
		return &UpdateHookConfigAttributes{}
	case CmdSetPermanentDelegate:
		return &SetPermanentDelegateAttributes{}
	case CmdSeize:
		return &SeizeAttributes{}
	case CmdInitializeMultisig, CmdUpdateMultisig:
		return &MultisigAttributes{}
	case CmdCreateProposal:
		return &CreateProposalAttributes{}
	case CmdApproveProposal, CmdExecuteProposal, CmdCancelProposal:
		return &ProposalAttributes{}
	default:
		return nil
	}
}

func (a *InitializeAttributes) Validate() error {
	if n := utf8.RuneCountInString(a.Name); n == 0 || n > MaxNameLength {
		return fmt.Errorf("%w: name must be 1..%d characters, got %d", ErrInvalidConfig, MaxNameLength, n)
	}
	if n := len(a.Symbol); n == 0 || n > MaxSymbolLength {
		return fmt.Errorf("%w: symbol must be 1..%d characters, got %d", ErrInvalidConfig, MaxSymbolLength, n)
	}
	for _, c := range a.Symbol {
		if c < 'A' || c > 'Z' {
			return fmt.Errorf("%w: symbol may contain only uppercase letters A-Z, got %q", ErrInvalidConfig, a.Symbol)
		}
	}
	if a.Decimals > MaxDecimals {
		return fmt.Errorf("%w: decimals must be 0..%d, got %d", ErrInvalidConfig, MaxDecimals, a.Decimals)
	}
	if !a.Features.Valid() {
		return fmt.Errorf("%w: unknown feature flags %#x", ErrInvalidConfig, uint8(a.Features))
	}
	if a.Hook.FeeBasisPoints > MaxBasisPoints {
		return fmt.Errorf("%w: transfer fee basis points must not exceed %d, got %d", ErrInvalidConfig, MaxBasisPoints, a.Hook.FeeBasisPoints)
	}
	if a.SupplyCap != 0 && a.EpochQuota > a.SupplyCap {
		return fmt.Errorf("%w: epoch quota %d exceeds supply cap %d", ErrInvalidConfig, a.EpochQuota, a.SupplyCap)
	}
	if a.PermanentDelegate != nil && !a.Features.Has(FeaturePermanentDelegate) {
		return fmt.Errorf("%w: permanent delegate requires the permanent delegate feature", ErrInvalidConfig)
	}
	return nil
}

func (a *MintAttributes) Validate() error {
	if a.Recipient.IsZero() {
		return fmt.Errorf("%w: recipient is missing", ErrInvalidInstruction)
	}
	if a.Amount == 0 {
		return fmt.Errorf("%w: mint amount must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

func (a *BatchMintAttributes) Validate() error {
	if n := len(a.Entries); n == 0 || n > MaxBatchSize {
		return fmt.Errorf("%w: batch must contain 1..%d entries, got %d", ErrInvalidInstruction, MaxBatchSize, n)
	}
	for i := range a.Entries {
		if err := a.Entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func (a *BurnAttributes) Validate() error {
	if a.Account.IsZero() {
		return fmt.Errorf("%w: account is missing", ErrInvalidInstruction)
	}
	if a.Amount == 0 {
		return fmt.Errorf("%w: burn amount must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

func (a *FreezeAttributes) Validate() error {
	if a.Account.IsZero() {
		return fmt.Errorf("%w: account is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *UpdateFeaturesAttributes) Validate() error {
	if !a.Features.Valid() {
		return fmt.Errorf("%w: unknown feature flags %#x", ErrInvalidConfig, uint8(a.Features))
	}
	return nil
}

func (a *TransferAuthorityAttributes) Validate() error {
	if a.NewAuthority.IsZero() {
		return fmt.Errorf("%w: new authority is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *RoleAttributes) Validate() error {
	if a.Target.IsZero() {
		return fmt.Errorf("%w: target is missing", ErrInvalidInstruction)
	}
	if !a.Roles.Valid() {
		return fmt.Errorf("%w: invalid role mask %#x", ErrInvalidInstruction, uint8(a.Roles))
	}
	return nil
}

func (a *SetMinterQuotaAttributes) Validate() error {
	if a.Minter.IsZero() {
		return fmt.Errorf("%w: minter is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *TransferAttributes) Validate() error {
	if a.Source.IsZero() || a.Destination.IsZero() {
		return fmt.Errorf("%w: source and destination are required", ErrInvalidInstruction)
	}
	if a.Source == a.Destination {
		return fmt.Errorf("%w: source and destination must differ", ErrInvalidInstruction)
	}
	if a.Amount == 0 {
		return fmt.Errorf("%w: transfer amount must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

func validateReason(reason string) error {
	if n := utf8.RuneCountInString(reason); n == 0 || n > MaxReasonLength {
		return fmt.Errorf("%w: reason must be 1..%d characters, got %d", ErrInvalidInstruction, MaxReasonLength, n)
	}
	return nil
}

func (a *AddBlacklistAttributes) Validate() error {
	if a.Address.IsZero() {
		return fmt.Errorf("%w: address is missing", ErrInvalidInstruction)
	}
	return validateReason(a.Reason)
}

func (a *RemoveBlacklistAttributes) Validate() error {
	if a.Address.IsZero() {
		return fmt.Errorf("%w: address is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *BatchBlacklistAttributes) Validate() error {
	if n := len(a.Entries); n == 0 || n > MaxBatchSize {
		return fmt.Errorf("%w: batch must contain 1..%d entries, got %d", ErrInvalidInstruction, MaxBatchSize, n)
	}
	seen := make(map[Identity]struct{}, len(a.Entries))
	for i := range a.Entries {
		if err := a.Entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, ok := seen[a.Entries[i].Address]; ok {
			return fmt.Errorf("%w: address %s is listed more than once", ErrInvalidInstruction, a.Entries[i].Address)
		}
		seen[a.Entries[i].Address] = struct{}{}
	}
	return nil
}

func (a *AddWhitelistAttributes) Validate() error {
	if a.Address.IsZero() {
		return fmt.Errorf("%w: address is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *RemoveWhitelistAttributes) Validate() error {
	if a.Address.IsZero() {
		return fmt.Errorf("%w: address is missing", ErrInvalidInstruction)
	}
	return nil
}

func (a *UpdateHookConfigAttributes) Validate() error {
	if a.FeeBasisPoints == nil && a.MaxTransferFee == nil && a.MinTransferAmount == nil &&
		a.IsPaused == nil && a.BlacklistEnabled == nil && a.FeeCollector == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInstruction)
	}
	if a.FeeBasisPoints != nil && *a.FeeBasisPoints > MaxBasisPoints {
		return fmt.Errorf("%w: transfer fee basis points must not exceed %d, got %d", ErrInvalidConfig, MaxBasisPoints, *a.FeeBasisPoints)
	}
	if a.FeeCollector != nil && a.FeeCollector.IsZero() {
		return fmt.Errorf("%w: fee collector must not be empty", ErrInvalidConfig)
	}
	return nil
}

func (a *SeizeAttributes) Validate() error {
	if a.Source.IsZero() || a.Treasury.IsZero() {
		return fmt.Errorf("%w: source and treasury are required", ErrInvalidInstruction)
	}
	if a.Amount != nil && *a.Amount == 0 {
		return fmt.Errorf("%w: seize amount must be greater than zero", ErrInvalidAmount)
	}
	return validateReason(a.Reason)
}

func (a *MultisigAttributes) Validate() error {
	if len(a.Signers) > MaxSigners {
		return fmt.Errorf("%w: at most %d signers allowed, got %d", ErrTooManySigners, MaxSigners, len(a.Signers))
	}
	if a.Threshold == 0 || int(a.Threshold) > len(a.Signers) {
		return fmt.Errorf("%w: threshold must be 1..%d, got %d", ErrInvalidThreshold, len(a.Signers), a.Threshold)
	}
	seen := make(map[Identity]struct{}, len(a.Signers))
	for _, s := range a.Signers {
		if s.IsZero() {
			return fmt.Errorf("%w: empty signer identity", ErrInvalidInstruction)
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: duplicate signer %s", ErrInvalidInstruction, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func (a *CreateProposalAttributes) Validate() error {
	if a.Instruction.Type == "" {
		return fmt.Errorf("%w: proposal instruction type is missing", ErrInvalidInstruction)
	}
	if a.ExpiresInSeconds == 0 {
		return fmt.Errorf("%w: proposal expiry must be greater than zero", ErrInvalidInstruction)
	}
	return nil
}

func (a *ProposalAttributes) Validate() error {
	if a.ProposalID.IsZero() {
		return fmt.Errorf("%w: proposal ID is missing", ErrInvalidInstruction)
	}
	return nil
}
