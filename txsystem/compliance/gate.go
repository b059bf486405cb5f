package compliance

import (
	"errors"
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem/fees"
	"github.com/sss-org/sss-engine/types"
)

type (
	TransferRequest struct {
		Mint        types.Identity `json:"mint"`
		Caller      types.Identity `json:"caller"`
		Source      types.Identity `json:"source"`
		Destination types.Identity `json:"destination"`
		Amount      uint64         `json:"amount"`
	}

	/*
	Verdict is the compliance decision on a transfer. When the transfer is
	not compliant Reason is the kind of the rejection.
	*/
	Verdict struct {
		Compliant     bool            `json:"compliant"`
		Reason        types.ErrorKind `json:"reason,omitempty"`
		Message       string          `json:"message,omitempty"`
		Fee           uint64          `json:"fee"`
		NetAmount     uint64          `json:"net_amount"`
		IsWhitelisted bool            `json:"is_whitelisted"`
		IsDelegate    bool            `json:"is_delegate"`
	}
)

// Err returns the rejection as error, nil when the transfer is compliant.
func (v *Verdict) Err() error {
	if v.Compliant {
		return nil
	}
	return fmt.Errorf("%w: %s", v.Reason, v.Message)
}

func reject(err error) *Verdict {
	return &Verdict{Reason: types.KindOf(err), Message: err.Error()}
}

/*
CheckTransfer evaluates the compliance rules of the mint for the transfer at
"now". Rules are evaluated in order:
 1. transfers are blocked while the token or the hook is paused;
 2. when blacklist is enabled source, then destination, must not be blacklisted;
 3. fee is calculated, whitelisted (either side) and delegate transfers bypass the fee.

When the transfer hook feature is not enabled only the pause rule applies.

Rejections are reported by the verdict, returned error means that the
decision couldn't be made (ie storage failure).
*/
func CheckTransfer(a *state.Accounts, now uint64, req TransferRequest) (*Verdict, error) {
	sc, err := a.Stablecoin(req.Mint)
	if err != nil {
		return nil, err
	}
	hc, err := a.HookConfig(req.Mint)
	if err != nil {
		return nil, err
	}

	if hc.Paused(sc) {
		return reject(fmt.Errorf("%w: transfers of %s are paused", types.ErrContractPaused, req.Mint)), nil
	}
	if !sc.Features.Has(types.FeatureTransferHook) {
		return &Verdict{Compliant: true, NetAmount: req.Amount, IsDelegate: hc.IsDelegate(req.Caller)}, nil
	}

	if hc.BlacklistEnabled {
		if bl, err := a.IsBlacklisted(req.Mint, req.Source); err != nil {
			return nil, fmt.Errorf("checking source blacklist: %w", err)
		} else if bl {
			return reject(fmt.Errorf("%w: %s", types.ErrSourceBlacklisted, req.Source)), nil
		}
		if bl, err := a.IsBlacklisted(req.Mint, req.Destination); err != nil {
			return nil, fmt.Errorf("checking destination blacklist: %w", err)
		} else if bl {
			return reject(fmt.Errorf("%w: %s", types.ErrDestinationBlacklisted, req.Destination)), nil
		}
	}

	isWhitelisted, err := a.IsWhitelisted(req.Mint, req.Source, now)
	if err != nil {
		return nil, fmt.Errorf("checking source whitelist: %w", err)
	}
	if !isWhitelisted {
		if isWhitelisted, err = a.IsWhitelisted(req.Mint, req.Destination, now); err != nil {
			return nil, fmt.Errorf("checking destination whitelist: %w", err)
		}
	}
	isDelegate := hc.IsDelegate(req.Caller)

	fee, err := fees.CalculateFee(req.Amount, fees.ParamsOf(hc), isWhitelisted, isDelegate)
	if err != nil {
		var kind types.ErrorKind
		if !errors.As(err, &kind) {
			return nil, err
		}
		v := reject(err)
		v.IsWhitelisted, v.IsDelegate = isWhitelisted, isDelegate
		return v, nil
	}
	return &Verdict{
		Compliant:     true,
		Fee:           fee.Fee,
		NetAmount:     fee.NetAmount,
		IsWhitelisted: isWhitelisted,
		IsDelegate:    isDelegate,
	}, nil
}
