package market

import "testing"

func TestFrameKeyOrdering(t *testing.T) {
	a := FrameKey{Time: 100, Seq: 0}
	b := FrameKey{Time: 100, Seq: 500}
	c := FrameKey{Time: 101, Seq: 0}

	if !a.Before(b) || !b.Before(c) || !a.Before(c) {
		t.Fatalf("frame key ordering broken: %+v %+v %+v", a, b, c)
	}
	if b.Before(a) || b.Before(b) {
		t.Fatalf("frame key ordering not strict")
	}
}

func TestVolumeAt(t *testing.T) {
	tick := Tick{Code: "SHFE.rb2301"}
	tick.Bids[0] = Level{Price: 99.5, Volume: 12}
	tick.Bids[1] = Level{Price: 99.0, Volume: 30}
	tick.Asks[0] = Level{Price: 100.0, Volume: 7}

	if got := tick.VolumeAt(99.0); got != 30 {
		t.Fatalf("VolumeAt(99.0) = %d, want 30", got)
	}
	if got := tick.VolumeAt(100.0); got != 7 {
		t.Fatalf("VolumeAt(100.0) = %d, want 7", got)
	}
	if got := tick.VolumeAt(98.0); got != 0 {
		t.Fatalf("VolumeAt(98.0) = %d, want 0", got)
	}
	if tick.BidPrice() != 99.5 || tick.AskPrice() != 100.0 {
		t.Fatalf("top of book mismatch: bid=%v ask=%v", tick.BidPrice(), tick.AskPrice())
	}
}
