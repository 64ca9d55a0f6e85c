// Package runtime drives one trading session: it pumps the simulator,
// dispatches typed events to the strategy callbacks, and owns the
// per-day statistics and persisted state.
package runtime

import (
	"errors"
	"fmt"

	"github.com/yanun0323/logs"

	"lightning/internal/chain"
	"lightning/internal/event"
	"lightning/internal/ledger"
	"lightning/internal/market"
	"lightning/internal/match"
	"lightning/internal/persist"
	"lightning/internal/recorder"
)

// State is the session lifecycle phase.
type State uint8

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateTrading
	StateEndOfDay
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateTrading:
		return "trading"
	case StateEndOfDay:
		return "end-of-day"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

var (
	ErrNotReady = errors.New("runtime: session not ready")
	ErrStopped  = errors.New("runtime: session stopped")
)

// Callbacks is the strategy surface. Nil members are skipped. All
// callbacks run on the session goroutine and must not block.
type Callbacks struct {
	OnReady   func()
	OnTick    func(market.Tick)
	OnEntrust func(ledger.Order)
	OnDeal    func(id ledger.OrderID, filled, total uint32)
	OnTrade   func(ledger.Order)
	OnCancel  func(ledger.Order)
	OnError   func(code event.ErrorCode, id ledger.OrderID)
}

// Options are the optional session collaborators.
type Options struct {
	// MaxPosition caps aggregate held plus pending open quantity.
	// Zero disables the cap.
	MaxPosition uint32
	// Region, when set, persists day-boundary state across restarts.
	Region *persist.Region
	// Recorder, when set, writes fills, cancels, and settlements out.
	Recorder *recorder.Client
}

// Context owns a session end to end. It is not safe for concurrent
// use: one goroutine drives the whole session.
type Context struct {
	sim    *match.Simulator
	events *event.Queue
	chains *chain.Chain
	verify *chain.Verify
	cbs    Callbacks
	opts   Options

	state         State
	stats         ledger.Statistic
	lastOrderTime int64
	cancelConds   map[ledger.OrderID]func(market.Tick) bool
	droppedSeen   uint64
}

// New wires a session around a simulator and the event queue it
// publishes to.
func New(sim *match.Simulator, events *event.Queue, cbs Callbacks, opts Options) *Context {
	verify := &chain.Verify{MaxPosition: opts.MaxPosition}
	return &Context{
		sim:         sim,
		events:      events,
		verify:      verify,
		chains:      chain.New(chain.OppositeCancel{}, verify),
		cbs:         cbs,
		opts:        opts,
		cancelConds: make(map[ledger.OrderID]func(market.Tick) bool),
	}
}

// Load reads the persisted state region, fires OnReady once, and
// leaves the session Ready.
func (c *Context) Load() error {
	if c.state != StateUninitialized {
		return fmt.Errorf("runtime: load from %v", c.state)
	}
	c.state = StateLoading
	if c.opts.Region != nil {
		snap, err := c.opts.Region.Load()
		if err != nil {
			c.state = StateUninitialized
			return err
		}
		c.stats = snap.Stats
		c.lastOrderTime = snap.LastOrderTime
		logs.Infof("state region loaded, last day %d", snap.TradingDay)
	}
	c.state = StateReady
	if c.cbs.OnReady != nil {
		c.cbs.OnReady()
	}
	return nil
}

// PlaceOrder screens the request through the submission chain and
// forwards it to the simulator. A suppressed request returns
// InvalidOrderID with a nil error.
func (c *Context) PlaceOrder(offset ledger.Offset, side ledger.Side, code string, qty uint32, price float64, flag ledger.Flag) (ledger.OrderID, error) {
	if c.state != StateTrading {
		return ledger.InvalidOrderID, ErrNotReady
	}
	req := &chain.Request{Code: code, Offset: offset, Side: side, Flag: flag, Price: price, Qty: qty}
	pass, err := c.chains.Screen(req, c.sim, c.sim)
	if err != nil {
		return ledger.InvalidOrderID, err
	}
	if !pass {
		return ledger.InvalidOrderID, nil
	}
	id, err := c.sim.PlaceOrder(offset, side, code, qty, price, flag)
	if err != nil {
		return ledger.InvalidOrderID, err
	}
	c.stats.Placed++
	c.lastOrderTime = c.sim.LastTickTime()
	c.storeRegion()
	return id, nil
}

// CancelOrder cancels a resting order.
func (c *Context) CancelOrder(id ledger.OrderID) error {
	if c.state != StateTrading {
		return ErrNotReady
	}
	return c.sim.CancelOrder(id)
}

// SetTradingFilter installs or clears the strategy veto applied to
// every submission.
func (c *Context) SetTradingFilter(f chain.Filter) {
	c.verify.Filter = f
}

// SetCancelCondition arms a predicate evaluated against every tick on
// the order's instrument. The first true cancels the order and drops
// the predicate.
func (c *Context) SetCancelCondition(id ledger.OrderID, pred func(market.Tick) bool) {
	if pred == nil {
		delete(c.cancelConds, id)
		return
	}
	c.cancelConds[id] = pred
}

// Subscribe forwards instrument subscriptions to the simulator.
func (c *Context) Subscribe(codes ...string) {
	c.sim.Subscribe(codes...)
}

// Statistic returns the per-day order counters.
func (c *Context) Statistic() ledger.Statistic { return c.stats }

// LastOrderTime returns the tick time of the most recent submission.
func (c *Context) LastOrderTime() int64 { return c.lastOrderTime }

// TradingDay returns the simulator's active trading day.
func (c *Context) TradingDay() uint32 { return c.sim.TradingDay() }

// State returns the session phase.
func (c *Context) State() State { return c.state }

// IsTradingReady reports whether orders are currently accepted.
func (c *Context) IsTradingReady() bool { return c.state == StateTrading }

// DroppedEvents reports engine events lost to a full queue. A nonzero
// count means the statistics undercount and cancel conditions may be
// stranded; size the queue to the frame volume instead.
func (c *Context) DroppedEvents() uint64 { return c.sim.Dropped() }

// Account returns a copy of the account.
func (c *Context) Account() ledger.Account { return c.sim.Account() }

// Position returns a copy of the instrument's position.
func (c *Context) Position(code string) ledger.Position { return c.sim.Position(code) }

// Order looks up an active order by id.
func (c *Context) Order(id ledger.OrderID) (ledger.Order, bool) { return c.sim.Order(id) }

func (c *Context) storeRegion() {
	if c.opts.Region == nil {
		return
	}
	err := c.opts.Region.Store(persist.Snapshot{
		TradingDay:    c.sim.TradingDay(),
		LastOrderTime: c.lastOrderTime,
		Stats:         c.stats,
	})
	if err != nil {
		logs.Errorf("store state region, err: %v", err)
	}
}
