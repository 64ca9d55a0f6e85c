package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightning/internal/ledger"
)

func TestRegionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.region")

	r, err := Open(path)
	require.NoError(t, err)

	empty, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, empty)

	want := Snapshot{
		TradingDay:    20220901,
		LastOrderTime: 1662012345,
		Stats:         ledger.Statistic{Placed: 12, Entrusted: 11, Traded: 9, Canceled: 2},
	}
	require.NoError(t, r.Store(want))
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRegionExclusiveWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.region")

	first, err := Open(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrRegionLocked)
}

func TestRegionRejectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.region")

	r, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Store(Snapshot{TradingDay: 20220901}))
	require.NoError(t, r.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[10] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Load()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
