package ledger

// OrderID identifies one entrusted order within a session. Ids are
// composed from the logical clock and a per-session counter and are
// never reused within a session.
type OrderID uint64

// InvalidOrderID is the sentinel returned for rejected submissions.
const InvalidOrderID OrderID = 0

const refBits = 20

// MakeOrderID composes an order id from the logical clock and a
// monotonic in-session reference counter.
func MakeOrderID(sec int64, seq uint32, ref uint32) OrderID {
	return OrderID(uint64(uint32(sec))<<32 | uint64(seq%1000)<<refBits | uint64(ref&(1<<refBits-1)))
}

// Side is the long/short direction of an order or lot.
type Side uint8

const (
	SideLong Side = iota
	SideShort
)

func (s Side) String() string {
	if s == SideShort {
		return "short"
	}
	return "long"
}

// Offset distinguishes opening from closing orders.
type Offset uint8

const (
	OffsetOpen Offset = iota
	OffsetClose
)

func (o Offset) String() string {
	if o == OffsetClose {
		return "close"
	}
	return "open"
}

// Flag selects the execution semantics of an order.
type Flag uint8

const (
	// FlagNormal rests until filled or canceled.
	FlagNormal Flag = iota
	// FlagFAK fills what it can immediately and cancels the rest.
	FlagFAK
	// FlagFOK fills entirely in one shot or cancels entirely.
	FlagFOK
	// FlagQueued rests in queue and only ever fills its full remainder.
	FlagQueued
)

// Order is one entrusted order.
type Order struct {
	ID         OrderID
	Code       string
	Offset     Offset
	Side       Side
	Flag       Flag
	Price      float64
	Total      uint32
	Leaves     uint32
	CreateTime int64
}

// IsBuy reports whether the order takes liquidity from the ask side:
// opening a long or closing a short buys, the rest sells.
func (o *Order) IsBuy() bool {
	if o.Side == SideLong {
		return o.Offset == OffsetOpen
	}
	return o.Offset == OffsetClose
}

// Filled returns the executed quantity so far.
func (o *Order) Filled() uint32 {
	return o.Total - o.Leaves
}

// Statistic counts per-day order activity. Cleared at day boundaries.
type Statistic struct {
	Placed    uint32
	Entrusted uint32
	Traded    uint32
	Canceled  uint32
}

// Clear resets all counters.
func (s *Statistic) Clear() {
	*s = Statistic{}
}
