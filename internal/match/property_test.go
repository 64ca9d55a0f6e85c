package match

import (
	"testing"

	"pgregory.net/rapid"

	"lightning/internal/event"
	"lightning/internal/feed"
	"lightning/internal/ledger"
	"lightning/internal/market"
)

// Random order flow over a random tick stream must never drive frozen
// margin negative or freeze more quantity than is held.
func TestAccountingInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(2, 12).Draw(t, "frames")
		ticks := make([]market.Tick, 0, frames)
		volume := uint64(1000)
		for i := 0; i < frames; i++ {
			volume += uint64(rapid.IntRange(0, 120).Draw(t, "delta"))
			last := float64(rapid.IntRange(95, 105).Draw(t, "last"))
			ticks = append(ticks, depthTick(
				int64(100+i), 0, last, volume,
				last-0.5, uint32(rapid.IntRange(1, 50).Draw(t, "bidQty")),
				last+0.5, uint32(rapid.IntRange(1, 50).Draw(t, "askQty")),
			))
		}

		loader := feed.NewMemoryLoader()
		loader.Add(ticks...)
		sink := event.NewQueue(4096)
		sim := NewSimulator(testConfig(), loader, sink)
		sim.Subscribe(code)
		if err := sim.Play(20220901); err != nil {
			t.Fatalf("play: %v", err)
		}

		var live []ledger.OrderID
		check := func() {
			acct := sim.Account()
			if acct.FrozenMargin < -1e-6 {
				t.Fatalf("frozen margin went negative: %v", acct.FrozenMargin)
			}
			pos := sim.Position(code)
			for _, side := range []ledger.Side{ledger.SideLong, ledger.SideShort} {
				if pos.Frozen(side) > pos.Held(side) {
					t.Fatalf("frozen %d exceeds held %d", pos.Frozen(side), pos.Held(side))
				}
			}
		}

		for sim.Update() {
			sink.Drain(func(event.Event) {})
			n := rapid.IntRange(0, 3).Draw(t, "orders")
			for i := 0; i < n; i++ {
				offset := ledger.OffsetOpen
				if rapid.Bool().Draw(t, "close") {
					offset = ledger.OffsetClose
				}
				side := ledger.SideLong
				if rapid.Bool().Draw(t, "short") {
					side = ledger.SideShort
				}
				price := float64(rapid.IntRange(0, 110).Draw(t, "price"))
				if price < 90 {
					price = 0 // market order
				}
				qty := uint32(rapid.IntRange(1, 20).Draw(t, "qty"))
				flag := ledger.Flag(rapid.IntRange(0, 3).Draw(t, "flag"))
				id, err := sim.PlaceOrder(offset, side, code, qty, price, flag)
				if err == nil {
					live = append(live, id)
				}
				check()
			}
			if len(live) > 0 && rapid.Bool().Draw(t, "cancel") {
				idx := rapid.IntRange(0, len(live)-1).Draw(t, "which")
				sim.CancelOrder(live[idx])
				live = append(live[:idx], live[idx+1:]...)
				check()
			}
			check()
		}
		sink.Drain(func(event.Event) {})
		check()
	})
}
