package fees

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/sss-org/sss-engine/types"
)

var basisPointsDivisor = uint256.NewInt(types.MaxBasisPoints)

// Params is the fee configuration of the transfer hook.
type Params struct {
	BasisPoints uint16
	MaxFee      uint64
	MinAmount   uint64
}

type Fee struct {
	Fee       uint64
	NetAmount uint64
}

func ParamsOf(hc *types.HookConfig) Params {
	return Params{
		BasisPoints: hc.TransferFeeBasisPoints,
		MaxFee:      hc.MaxTransferFee,
		MinAmount:   hc.MinTransferAmount,
	}
}

/*
CalculateFee returns fee and the net amount received by the destination for
a transfer of "amount".

Whitelisted and delegate transfers bypass the fee computation entirely, the
minimum amount doesn't apply to them either. Otherwise

	fee = min(floor(amount * BasisPoints / 10000), MaxFee)

where the multiplication is done in 256 bit arithmetic.
*/
func CalculateFee(amount uint64, p Params, isWhitelisted, isDelegate bool) (Fee, error) {
	if isWhitelisted || isDelegate {
		return Fee{Fee: 0, NetAmount: amount}, nil
	}
	if p.BasisPoints > types.MaxBasisPoints {
		return Fee{}, fmt.Errorf("%w: transfer fee basis points %d exceed %d", types.ErrInvalidInstruction, p.BasisPoints, types.MaxBasisPoints)
	}
	if amount < p.MinAmount {
		return Fee{}, fmt.Errorf("%w: transfer amount %d is below minimum %d", types.ErrAmountTooLow, amount, p.MinAmount)
	}

	f := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(p.BasisPoints)))
	f.Div(f, basisPointsDivisor)
	if !f.IsUint64() {
		return Fee{}, fmt.Errorf("%w: fee of amount %d", types.ErrMathOverflow, amount)
	}
	fee := min(f.Uint64(), p.MaxFee)

	if fee > amount {
		return Fee{}, fmt.Errorf("%w: fee %d exceeds amount %d", types.ErrMathOverflow, fee, amount)
	}
	return Fee{Fee: fee, NetAmount: amount - fee}, nil
}
