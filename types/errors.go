package types

import "errors"

/*
ErrorKind classifies why an operation was rejected. It implements error so
that handlers can wrap it with context:

	return fmt.Errorf("%w: minter %s has quota %d", types.ErrQuotaExceeded, minter, quota)

and callers can recover it with errors.Is or KindOf.
*/
type ErrorKind string

func (k ErrorKind) Error() string { return string(k) }

const (
	ErrUnauthorized           ErrorKind = "Unauthorized"
	ErrContractPaused         ErrorKind = "ContractPaused"
	ErrInvalidAmount          ErrorKind = "InvalidAmount"
	ErrAmountTooLow           ErrorKind = "AmountTooLow"
	ErrQuotaExceeded          ErrorKind = "QuotaExceeded"
	ErrEpochQuotaExceeded     ErrorKind = "EpochQuotaExceeded"
	ErrSupplyCapExceeded      ErrorKind = "SupplyCapExceeded"
	ErrSourceBlacklisted      ErrorKind = "SourceBlacklisted"
	ErrDestinationBlacklisted ErrorKind = "DestinationBlacklisted"
	ErrAlreadyBlacklisted     ErrorKind = "AlreadyBlacklisted"
	ErrBlacklistNotFound      ErrorKind = "BlacklistNotFound"
	ErrSelfSeizure            ErrorKind = "SelfSeizure"
	ErrInvalidThreshold       ErrorKind = "InvalidThreshold"
	ErrTooManySigners         ErrorKind = "TooManySigners"
	ErrProposalExpired        ErrorKind = "ProposalExpired"
	ErrAlreadyExecuted        ErrorKind = "AlreadyExecuted"
	ErrDuplicateApproval      ErrorKind = "DuplicateApproval"
	ErrMathOverflow           ErrorKind = "MathOverflow"

	ErrInsufficientApprovals ErrorKind = "InsufficientApprovals"
	ErrInsufficientBalance   ErrorKind = "InsufficientBalance"
	ErrAccountFrozen         ErrorKind = "AccountFrozen"
	ErrNotInitialized        ErrorKind = "NotInitialized"
	ErrAlreadyInitialized    ErrorKind = "AlreadyInitialized"
	ErrInvalidConfig         ErrorKind = "InvalidConfig"
	ErrInvalidInstruction    ErrorKind = "InvalidInstruction"
	ErrComplianceNotEnabled  ErrorKind = "ComplianceNotEnabled"
	ErrFeatureNotEnabled     ErrorKind = "FeatureNotEnabled"
	ErrAlreadyWhitelisted    ErrorKind = "AlreadyWhitelisted"
	ErrWhitelistNotFound     ErrorKind = "WhitelistNotFound"
	ErrProposalCancelled     ErrorKind = "ProposalCancelled"
	ErrProposalNotFound      ErrorKind = "ProposalNotFound"

	// ErrInternal is reported by KindOf for errors without kind, ie storage failures.
	ErrInternal ErrorKind = "Internal"
)

/*
KindOf returns the kind of the first ErrorKind in the err's chain, ErrInternal
when there is none and empty string for nil error.
*/
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ErrInternal
}

/*
IsComplianceRejection returns true for the kinds which signal that a transfer
was blocked by compliance rules (as opposed to invalid input or failure).
*/
func IsComplianceRejection(kind ErrorKind) bool {
	switch kind {
	case ErrContractPaused, ErrSourceBlacklisted, ErrDestinationBlacklisted, ErrAccountFrozen:
		return true
	default:
		return false
	}
}
