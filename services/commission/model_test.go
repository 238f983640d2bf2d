package commission

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestReleaseHold(t *testing.T) {
	entry := &BalanceTransaction{
		ID:        "entry-1",
		AccountID: "acc-1",
		Type:      EntryCommissionHold,
		Amount:    decimal.NewFromInt(50),
	}

	releasedAt := time.Now().UTC()
	balanceAfter := decimal.NewFromInt(50)

	require.NoError(t, entry.ReleaseHold(releasedAt, balanceAfter))
	require.Equal(t, EntryCommissionRelease, entry.Type)
	require.NotNil(t, entry.ReleasedAt)
	require.True(t, entry.ReleasedAt.Equal(releasedAt))
	require.True(t, entry.BalanceAfter.Equal(balanceAfter))
	require.NotEmpty(t, entry.Notes)
}

func TestReleaseHoldTwice(t *testing.T) {
	entry := &BalanceTransaction{
		ID:   "entry-1",
		Type: EntryCommissionHold,
	}

	require.NoError(t, entry.ReleaseHold(time.Now(), decimal.NewFromInt(10)))

	err := entry.ReleaseHold(time.Now(), decimal.NewFromInt(20))
	require.ErrorIs(t, err, ErrInvalidLedgerTransition)
	require.Equal(t, EntryCommissionRelease, entry.Type)
}

func TestReleaseHoldWrongType(t *testing.T) {
	for _, typ := range []EntryType{EntryCommissionRelease, EntryPayout, EntryAdjustment} {
		entry := &BalanceTransaction{ID: "entry-1", Type: typ}

		err := entry.ReleaseHold(time.Now(), decimal.Zero)
		require.ErrorIs(t, err, ErrInvalidLedgerTransition)
		require.Equal(t, typ, entry.Type)
		require.Nil(t, entry.ReleasedAt)
	}
}
