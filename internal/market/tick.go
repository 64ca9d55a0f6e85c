package market

// DepthLevels is the number of displayed price levels per side.
const DepthLevels = 5

// Level is one displayed (price, quantity) pair of the depth.
type Level struct {
	Price  float64
	Volume uint32
}

// Tick is one depth snapshot for one instrument at one instant.
// Within an instrument ticks are non-decreasing in (Time, Seq);
// ticks sharing the same key form a frame.
type Tick struct {
	Code       string
	Time       int64
	Seq        uint32
	Price      float64
	Open       float64
	High       float64
	Low        float64
	Standard   float64
	Volume     uint64
	TradingDay uint32
	Bids       [DepthLevels]Level
	Asks       [DepthLevels]Level
}

// FrameKey identifies the frame a tick belongs to.
type FrameKey struct {
	Time int64
	Seq  uint32
}

// Key returns the tick's frame key.
func (t *Tick) Key() FrameKey {
	return FrameKey{Time: t.Time, Seq: t.Seq}
}

// Before reports whether k precedes other.
func (k FrameKey) Before(other FrameKey) bool {
	if k.Time != other.Time {
		return k.Time < other.Time
	}
	return k.Seq < other.Seq
}

// BidPrice returns the best displayed bid, 0 when the side is empty.
func (t *Tick) BidPrice() float64 {
	return t.Bids[0].Price
}

// AskPrice returns the best displayed ask, 0 when the side is empty.
func (t *Tick) AskPrice() float64 {
	return t.Asks[0].Price
}

// VolumeAt returns the displayed quantity at an exact price on either
// side, 0 when the price is not currently displayed. Used to seed the
// queue position of a freshly placed order.
func (t *Tick) VolumeAt(price float64) uint32 {
	for i := range t.Bids {
		if t.Bids[i].Price == price {
			return t.Bids[i].Volume
		}
	}
	for i := range t.Asks {
		if t.Asks[i].Price == price {
			return t.Asks[i].Volume
		}
	}
	return 0
}

