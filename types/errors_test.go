package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, ErrorKind(""), KindOf(nil))
	require.Equal(t, ErrInternal, KindOf(errors.New("disk failure")))

	err := fmt.Errorf("executing mint: %w", fmt.Errorf("%w: quota 10, minted 8", ErrQuotaExceeded))
	require.Equal(t, ErrQuotaExceeded, KindOf(err))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.NotErrorIs(t, err, ErrEpochQuotaExceeded)
	require.Equal(t, "executing mint: QuotaExceeded: quota 10, minted 8", err.Error())
}

func TestIsComplianceRejection(t *testing.T) {
	require.True(t, IsComplianceRejection(ErrSourceBlacklisted))
	require.True(t, IsComplianceRejection(ErrContractPaused))
	require.False(t, IsComplianceRejection(ErrAmountTooLow))
	require.False(t, IsComplianceRejection(ErrInternal))
}
