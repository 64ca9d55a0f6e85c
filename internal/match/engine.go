package match

import (
	"errors"

	"lightning/internal/event"
	"lightning/internal/feed"
	"lightning/internal/ledger"
	"lightning/internal/market"

	werrors "github.com/yanun0323/errors"
)

var (
	ErrInsufficientMargin   = errors.New("insufficient margin for open order")
	ErrInsufficientPosition = errors.New("insufficient usable position for close order")
	ErrZeroVolume           = errors.New("order volume must be > 0")
)

// Config holds the static parameters of a simulated trading session.
type Config struct {
	InitialCapital float64
	ServiceCharge  float64
	Multiplier     uint32
	MarginRate     float64
	// SplitLots keeps today/yesterday lot detail; when false the
	// position is tracked as a single lot per side.
	SplitLots bool
}

// orderMatch is the engine-private match record of one resting order:
// its execution flag and the estimated quantity queued ahead of it at
// its price. Never exposed to strategies.
type orderMatch struct {
	id       ledger.OrderID
	flag     ledger.Flag
	queuePos uint32
}

// Simulator replays depth ticks frame by frame and resolves resting
// orders against the traded volume between frames. It owns its own
// Book; the runtime context only sees it through views and events.
type Simulator struct {
	cfg    Config
	book   *ledger.Book
	loader feed.Loader
	events *event.Queue

	subscribed map[string]struct{}
	matches    map[string][]*orderMatch
	lastVolume map[string]uint64

	pending []market.Tick
	index   int
	frame   []market.Tick

	currentTime int64
	currentSeq  uint32
	orderRef    uint32
	tradingDay  uint32
	inTrading   bool
	dropped     uint64
}

// NewSimulator creates a simulator publishing its events to sink.
func NewSimulator(cfg Config, loader feed.Loader, sink *event.Queue) *Simulator {
	return &Simulator{
		cfg:        cfg,
		book:       ledger.NewBook(cfg.InitialCapital),
		loader:     loader,
		events:     sink,
		subscribed: make(map[string]struct{}),
		matches:    make(map[string][]*orderMatch),
		lastVolume: make(map[string]uint64),
	}
}

// Subscribe adds instruments to the replayed set.
func (s *Simulator) Subscribe(codes ...string) {
	for _, code := range codes {
		s.subscribed[code] = struct{}{}
	}
}

// Unsubscribe removes instruments from the replayed set.
func (s *Simulator) Unsubscribe(codes ...string) {
	for _, code := range codes {
		delete(s.subscribed, code)
	}
}

// Play loads one trading day for every subscribed instrument and arms
// the replay. The previous day's frame bookkeeping is discarded.
func (s *Simulator) Play(day uint32) error {
	s.pending = s.pending[:0]
	s.index = 0
	s.frame = s.frame[:0]
	s.currentTime = 0
	s.currentSeq = 0
	s.lastVolume = make(map[string]uint64)
	s.tradingDay = day

	for code := range s.subscribed {
		ticks, err := s.loader.LoadTicks(code, day)
		if err != nil {
			return werrors.Wrapf(err, "load ticks for %s day %d", code, day)
		}
		s.pending = append(s.pending, ticks...)
	}
	feed.SortTicks(s.pending)
	s.inTrading = true
	s.emit(event.BeginTrading(day))
	return nil
}

// Update runs one cycle: publish the next frame's ticks, then resolve
// resting orders against it. Returns false once the day has ended.
func (s *Simulator) Update() bool {
	if !s.inTrading {
		return false
	}
	if !s.publishFrame() {
		return false
	}
	s.matchFrame()
	return true
}

// publishFrame pulls the next batch of ticks sharing one frame key and
// publishes them. Exhaustion of the stream ends the trading day.
func (s *Simulator) publishFrame() bool {
	if s.index >= len(s.pending) {
		s.endTrading()
		return false
	}
	key := s.pending[s.index].Key()
	s.currentTime = key.Time
	s.currentSeq = key.Seq

	s.frame = s.frame[:0]
	for s.index < len(s.pending) && s.pending[s.index].Key() == key {
		tick := s.pending[s.index]
		s.frame = append(s.frame, tick)
		s.emit(event.NewTick(tick))
		s.index++
	}
	return true
}

func (s *Simulator) matchFrame() {
	for i := range s.frame {
		s.matchTick(&s.frame[i])
	}
	for i := range s.frame {
		s.lastVolume[s.frame[i].Code] = s.frame[i].Volume
	}
}

// matchTick resolves every resting order on the tick's instrument
// against the volume traded since the previous frame, FIFO by
// submission. Fills consume the budget; queue decrements read it.
func (s *Simulator) matchTick(tick *market.Tick) {
	last, ok := s.lastVolume[tick.Code]
	if !ok {
		return
	}
	var budget uint32
	if tick.Volume > last {
		budget = uint32(tick.Volume - last)
	}

	// resolution removes terminal entries from s.matches; walk a copy
	resting := append([]*orderMatch(nil), s.matches[tick.Code]...)
	for _, m := range resting {
		order, ok := s.book.MutableOrder(m.id)
		if !ok {
			continue
		}
		budget = s.resolve(tick, m, order, budget)
	}
}

func (s *Simulator) endTrading() {
	s.inTrading = false
	s.lastVolume = make(map[string]uint64)
	s.emit(event.EndTrading(s.tradingDay))
}

// PlaceOrder submits an order directly to the match queue. Opening
// orders must fit inside the account's free cash at the margin rate.
func (s *Simulator) PlaceOrder(offset ledger.Offset, side ledger.Side, code string, qty uint32, price float64, flag ledger.Flag) (ledger.OrderID, error) {
	if qty == 0 {
		return ledger.InvalidOrderID, ErrZeroVolume
	}
	var margin float64
	if offset == ledger.OffsetOpen {
		margin = float64(qty) * price * float64(s.cfg.Multiplier) * s.cfg.MarginRate
		acct := s.book.Account()
		if acct.FrozenMargin+margin > acct.Cash {
			return ledger.InvalidOrderID, ErrInsufficientMargin
		}
	}

	s.orderRef++
	order := ledger.Order{
		ID:         ledger.MakeOrderID(s.currentTime, s.currentSeq, s.orderRef),
		Code:       code,
		Offset:     offset,
		Side:       side,
		Flag:       flag,
		Price:      price,
		Total:      qty,
		Leaves:     qty,
		CreateTime: s.currentTime,
	}

	if offset == ledger.OffsetClose {
		if !s.book.Position(code).FreezeClose(side, qty) {
			return ledger.InvalidOrderID, ErrInsufficientPosition
		}
	} else {
		s.book.Account().FrozenMargin += margin
	}

	if err := s.book.AddOrder(order); err != nil {
		if offset == ledger.OffsetClose {
			s.book.Position(code).UnfreezeClose(side, qty)
		} else {
			s.book.Account().FrozenMargin -= margin
		}
		return ledger.InvalidOrderID, err
	}
	s.matches[code] = append(s.matches[code], &orderMatch{
		id:       order.ID,
		flag:     flag,
		queuePos: s.frontVolume(code, price),
	})
	s.emit(event.Entrust(order))
	return order.ID, nil
}

// CancelOrder cancels a resting order. Canceling an unknown or
// already-terminal order is an error event, never a silent no-op.
func (s *Simulator) CancelOrder(id ledger.OrderID) error {
	order, ok := s.book.MutableOrder(id)
	if !ok {
		s.emit(event.Error(event.ErrCancelFailed, id))
		return ledger.ErrUnknownOrder
	}
	s.cancel(order)
	return nil
}

// frontVolume seeds a fresh order's queue position from the quantity
// displayed at its exact price in the current frame.
func (s *Simulator) frontVolume(code string, price float64) uint32 {
	for i := range s.frame {
		if s.frame[i].Code == code {
			return s.frame[i].VolumeAt(price)
		}
	}
	return 0
}

func (s *Simulator) emit(e event.Event) {
	if err := s.events.TryPublish(e); err != nil {
		s.dropped++
	}
}

// Dropped reports events lost to a full sink queue.
func (s *Simulator) Dropped() uint64 {
	return s.dropped
}

// Crossday moves the session to a new trading day. With lot splitting
// enabled, today lots roll into yesterday lots; account balances are
// untouched.
func (s *Simulator) Crossday(day uint32) {
	if s.cfg.SplitLots {
		s.book.Crossday()
	}
	s.tradingDay = day
}

// TradingDay returns the current trading day id.
func (s *Simulator) TradingDay() uint32 {
	return s.tradingDay
}

// LastTickTime returns the logical clock of the last published frame.
func (s *Simulator) LastTickTime() int64 {
	return s.currentTime
}

// Account returns a copy of the simulated account.
func (s *Simulator) Account() ledger.Account {
	return *s.book.Account()
}

// Position returns a copy of the simulated position for one instrument.
func (s *Simulator) Position(code string) ledger.Position {
	pos, _ := s.book.PositionView(code)
	return pos
}

// TotalPosition returns the aggregate held quantity.
func (s *Simulator) TotalPosition() uint32 {
	return s.book.TotalPosition()
}

// Order returns a copy of an active order.
func (s *Simulator) Order(id ledger.OrderID) (ledger.Order, bool) {
	return s.book.Order(id)
}

// FindOrders returns copies of active orders matching the predicate.
func (s *Simulator) FindOrders(pred func(*ledger.Order) bool) []ledger.Order {
	return s.book.FindOrders(pred)
}
