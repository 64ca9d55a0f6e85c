package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFreezeCloseYesterdayFirst(t *testing.T) {
	p := Position{Code: "SHFE.rb2301"}
	p.YesterdayLong = Lot{Held: 3, Price: 100}
	p.TodayLong = Lot{Held: 4, Price: 105}

	require.True(t, p.FreezeClose(SideLong, 5))
	assert.Equal(t, uint32(3), p.YesterdayLong.Frozen)
	assert.Equal(t, uint32(2), p.TodayLong.Frozen)

	// only 2 usable left
	require.False(t, p.FreezeClose(SideLong, 3))
	require.True(t, p.FreezeClose(SideLong, 2))
	assert.Equal(t, uint32(0), p.Usable(SideLong))
}

func TestConsumeCloseAllocsCarryEntryPrices(t *testing.T) {
	p := Position{Code: "SHFE.rb2301"}
	p.YesterdayShort = Lot{Held: 2, Price: 90}
	p.TodayShort = Lot{Held: 5, Price: 95}
	require.True(t, p.FreezeClose(SideShort, 6))

	allocs := p.ConsumeClose(SideShort, 6)
	require.Len(t, allocs, 2)
	assert.Equal(t, CloseAlloc{Qty: 2, Entry: 90}, allocs[0])
	assert.Equal(t, CloseAlloc{Qty: 4, Entry: 95}, allocs[1])
	assert.Equal(t, uint32(1), p.Held(SideShort))
	assert.Equal(t, uint32(0), p.Frozen(SideShort))
}

func TestCrossdayMergesLots(t *testing.T) {
	p := Position{Code: "SHFE.rb2301"}
	p.YesterdayLong = Lot{Held: 2, Price: 100}
	p.TodayLong = Lot{Held: 2, Price: 110}
	p.Crossday()

	assert.Equal(t, uint32(4), p.YesterdayLong.Held)
	assert.InDelta(t, 105.0, p.YesterdayLong.Price, 1e-9)
	assert.True(t, p.TodayLong.Empty())
}

// Held >= Frozen >= 0 must hold after any sequence of opens, freezes,
// unfreezes, and close fills.
func TestPositionInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var p Position
		side := SideLong
		if rapid.Bool().Draw(t, "short") {
			side = SideShort
		}

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				_, today := p.Lots(side)
				today.Add(rapid.Uint32Range(1, 20).Draw(t, "open"), float64(rapid.IntRange(90, 110).Draw(t, "px")))
			case 1:
				qty := rapid.Uint32Range(0, 20).Draw(t, "freeze")
				ok := p.FreezeClose(side, qty)
				if qty > p.Held(side) && ok {
					t.Fatalf("froze more than held")
				}
			case 2:
				frozen := p.Frozen(side)
				if frozen > 0 {
					p.UnfreezeClose(side, rapid.Uint32Range(1, frozen).Draw(t, "unfreeze"))
				}
			case 3:
				frozen := p.Frozen(side)
				if frozen > 0 {
					p.ConsumeClose(side, rapid.Uint32Range(1, frozen).Draw(t, "consume"))
				}
			}

			yesterday, today := p.Lots(side)
			for _, lot := range []*Lot{yesterday, today} {
				if lot.Frozen > lot.Held {
					t.Fatalf("frozen %d exceeds held %d", lot.Frozen, lot.Held)
				}
			}
		}
	})
}
