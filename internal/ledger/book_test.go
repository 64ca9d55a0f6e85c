package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookOrderLifecycle(t *testing.T) {
	b := NewBook(100000)

	o := Order{ID: MakeOrderID(1662000000, 500, 1), Code: "SHFE.rb2301", Total: 10, Leaves: 10}
	require.NoError(t, b.AddOrder(o))
	require.ErrorIs(t, b.AddOrder(o), ErrDuplicateOrder)
	require.Error(t, b.AddOrder(Order{ID: InvalidOrderID}))

	got, ok := b.Order(o.ID)
	require.True(t, ok)
	assert.Equal(t, o, got)

	// copies do not alias the live record
	got.Leaves = 0
	live, _ := b.MutableOrder(o.ID)
	assert.Equal(t, uint32(10), live.Leaves)

	b.RemoveOrder(o.ID)
	_, ok = b.Order(o.ID)
	assert.False(t, ok)
}

func TestMakeOrderIDUniqueWithinSession(t *testing.T) {
	seen := make(map[OrderID]struct{})
	for ref := uint32(1); ref <= 1000; ref++ {
		id := MakeOrderID(1662000000, 500, ref)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate order id at ref %d", ref)
		}
		seen[id] = struct{}{}
	}
}

func TestTotalPositionSpansInstrumentsAndSides(t *testing.T) {
	b := NewBook(0)
	b.Position("SHFE.rb2301").TodayLong.Add(3, 100)
	b.Position("SHFE.rb2301").TodayShort.Add(2, 100)
	b.Position("SHFE.ag2212").YesterdayLong.Add(4, 5000)

	assert.Equal(t, uint32(9), b.TotalPosition())

	b.Crossday()
	assert.Equal(t, uint32(9), b.TotalPosition())
	pos, ok := b.PositionView("SHFE.rb2301")
	require.True(t, ok)
	assert.Equal(t, uint32(3), pos.YesterdayLong.Held)
	assert.True(t, pos.TodayLong.Empty())
}
