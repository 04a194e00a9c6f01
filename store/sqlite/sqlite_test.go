package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/ledger"
	"github.com/warp/payments-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func snaps() []ledger.AccountSnapshot {
	return []ledger.AccountSnapshot{
		{
			ClientID:  1,
			Available: ledger.MustParseDecimal("10.5234"),
			Held:      ledger.MustParseDecimal("0.0001"),
			Total:     ledger.MustParseDecimal("10.5235"),
			Locked:    false,
		},
		{
			ClientID:  2,
			Available: ledger.MustParseDecimal("0"),
			Held:      ledger.MustParseDecimal("0"),
			Total:     ledger.MustParseDecimal("0"),
			Locked:    true,
		},
	}
}

func TestStore_ExportAndReadBack(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.ExportSnapshots(ctx, snaps()))

	got, err := st.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, ledger.ClientID(1), got[0].ClientID)
	assert.True(t, got[0].Available.Equal(ledger.MustParseDecimal("10.5234")),
		"amounts must survive the TEXT round trip exactly")
	assert.True(t, got[0].Held.Equal(ledger.MustParseDecimal("0.0001")))
	assert.False(t, got[0].Locked)

	assert.Equal(t, ledger.ClientID(2), got[1].ClientID)
	assert.True(t, got[1].Total.IsZero())
	assert.True(t, got[1].Locked)
}

func TestStore_ReExportReplaces(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.ExportSnapshots(ctx, snaps()))

	updated := []ledger.AccountSnapshot{{
		ClientID:  1,
		Available: ledger.MustParseDecimal("99"),
		Held:      ledger.MustParseDecimal("0"),
		Total:     ledger.MustParseDecimal("99"),
	}}
	require.NoError(t, st.ExportSnapshots(ctx, updated))

	got, err := st.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Available.Equal(ledger.MustParseDecimal("99")))
}

func TestStore_EmptyExport(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.ExportSnapshots(context.Background(), nil))
	got, err := st.Snapshots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_InMemory(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.ExportSnapshots(context.Background(), snaps()))
	got, err := st.Snapshots(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
