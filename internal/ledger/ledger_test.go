package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/tradegate/internal/domain"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func record(tokenID string, size float64) domain.PositionRecord {
	return domain.PositionRecord{
		MarketID:  "0xcond",
		Outcome:   "Yes",
		Size:      size,
		Price:     0.42,
		TokenID:   tokenID,
		Wallet:    "0xWallet",
		Timestamp: 1700000000000,
	}
}

func TestLoad_EmptyWallet(t *testing.T) {
	l := openTestLedger(t)

	records, err := l.Load("0xnobody")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestReplaceAll_RoundTrip(t *testing.T) {
	l := openTestLedger(t)

	in := []domain.PositionRecord{record("111", 10), record("222", 3.5)}
	require.NoError(t, l.ReplaceAll("0xWallet", in))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReplaceAll_OverwritesCompletely(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("111", 10), record("222", 5)}))
	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("333", 1)}))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "333", out[0].TokenID)
}

func TestReplaceAll_EmptyClearsKey(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("111", 10)}))
	require.NoError(t, l.ReplaceAll("0xWallet", nil))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWalletKey_CaseInsensitive(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xAbCd", []domain.PositionRecord{record("111", 10)}))

	out, err := l.Load("0xABCD")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestUpsertAfterFill_PartialFill(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("111", 10), record("222", 5)}))
	require.NoError(t, l.UpsertAfterFill("0xWallet", "111", 6))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	require.Len(t, out, 2)

	for _, rec := range out {
		if rec.TokenID == "111" {
			assert.Equal(t, 6.0, rec.Size)
			assert.Greater(t, rec.Timestamp, int64(1700000000000))
		}
		if rec.TokenID == "222" {
			assert.Equal(t, 5.0, rec.Size)
		}
	}
}

func TestUpsertAfterFill_FullCashoutRemovesRecord(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("111", 10), record("222", 5)}))
	require.NoError(t, l.UpsertAfterFill("0xWallet", "111", 0))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "222", out[0].TokenID)
}

func TestUpsertAfterFill_NeverWritesNonPositiveSize(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.ReplaceAll("0xWallet", []domain.PositionRecord{record("111", 10)}))
	require.NoError(t, l.UpsertAfterFill("0xWallet", "111", -2))

	out, err := l.Load("0xWallet")
	require.NoError(t, err)
	assert.Empty(t, out)
}
