package runtime

import (
	"fmt"

	"github.com/yanun0323/logs"

	"lightning/internal/event"
	"lightning/internal/ledger"
	"lightning/internal/market"
)

// RunDay replays one trading day to exhaustion. The session must be
// Ready (first day) or EndOfDay (subsequent days); it ends the day in
// EndOfDay, ready for a crossday into the next.
func (c *Context) RunDay(day uint32) error {
	switch c.state {
	case StateReady:
	case StateEndOfDay:
		c.crossday(day)
	case StateStopped:
		return ErrStopped
	default:
		return fmt.Errorf("runtime: run day from %v", c.state)
	}
	if err := c.sim.Play(day); err != nil {
		return err
	}
	for c.sim.Update() {
		c.events.Drain(c.dispatch)
	}
	c.events.Drain(c.dispatch)
	if dropped := c.sim.Dropped(); dropped > c.droppedSeen {
		logs.Warnf("event queue overflowed, %d events lost on day %d", dropped-c.droppedSeen, day)
		c.droppedSeen = dropped
	}
	if c.state != StateEndOfDay {
		// a day with no ticks never saw BeginTrading/EndTrading
		c.state = StateEndOfDay
	}
	c.settle(day)
	return nil
}

// RunDays evaluates a list of trading days in order through the one
// session, then stops it.
func (c *Context) RunDays(days []uint32) error {
	for _, day := range days {
		if err := c.RunDay(day); err != nil {
			return err
		}
	}
	return c.Stop()
}

// Stop terminates the session and releases the persisted region.
func (c *Context) Stop() error {
	if c.state == StateStopped {
		return nil
	}
	c.state = StateStopped
	if c.opts.Region != nil {
		return c.opts.Region.Close()
	}
	return nil
}

// crossday rolls the session into the next trading day: today lots
// merge into yesterday, per-day statistics and the last order time
// reset. Positions and account carry over.
func (c *Context) crossday(day uint32) {
	c.sim.Crossday(day)
	c.stats.Clear()
	c.lastOrderTime = 0
	c.storeRegion()
	c.state = StateReady
}

func (c *Context) settle(day uint32) {
	c.storeRegion()
	if c.opts.Recorder != nil {
		acct := c.sim.Account()
		if err := c.opts.Recorder.RecordSettlement(day, acct.Cash, acct.FrozenMargin, c.stats); err != nil {
			logs.Errorf("record settlement, err: %v", err)
		}
	}
	logs.Infof("day %d settled, placed %d traded %d canceled %d",
		day, c.stats.Placed, c.stats.Traded, c.stats.Canceled)
}

func (c *Context) dispatch(e event.Event) {
	switch e.Kind {
	case event.KindBeginTrading:
		c.state = StateTrading
	case event.KindEndTrading:
		c.state = StateEndOfDay
	case event.KindTick:
		c.evalCancelConditions(e.Tick)
		if c.cbs.OnTick != nil {
			c.cbs.OnTick(e.Tick)
		}
	case event.KindEntrust:
		c.stats.Entrusted++
		if c.cbs.OnEntrust != nil {
			c.cbs.OnEntrust(e.Order)
		}
	case event.KindDeal:
		if c.cbs.OnDeal != nil {
			c.cbs.OnDeal(e.OrderID, e.Filled, e.Total)
		}
	case event.KindTrade:
		c.stats.Traded++
		delete(c.cancelConds, e.Order.ID)
		c.record(e.Order, false)
		if c.cbs.OnTrade != nil {
			c.cbs.OnTrade(e.Order)
		}
	case event.KindCancel:
		c.stats.Canceled++
		delete(c.cancelConds, e.Order.ID)
		c.record(e.Order, true)
		if c.cbs.OnCancel != nil {
			c.cbs.OnCancel(e.Order)
		}
	case event.KindError:
		logs.Errorf("engine error %d, order %d", e.Err, e.OrderID)
		if c.cbs.OnError != nil {
			c.cbs.OnError(e.Err, e.OrderID)
		}
	}
}

// evalCancelConditions fires armed predicates for the tick's
// instrument. A predicate is dropped after its first true, whether or
// not the cancel succeeds.
func (c *Context) evalCancelConditions(tick market.Tick) {
	for id, pred := range c.cancelConds {
		order, ok := c.sim.Order(id)
		if !ok {
			delete(c.cancelConds, id)
			continue
		}
		if order.Code != tick.Code || !pred(tick) {
			continue
		}
		delete(c.cancelConds, id)
		if err := c.sim.CancelOrder(id); err != nil {
			logs.Errorf("conditional cancel order %d, err: %v", id, err)
		}
	}
}

func (c *Context) record(order ledger.Order, canceled bool) {
	if c.opts.Recorder == nil {
		return
	}
	var err error
	if canceled {
		err = c.opts.Recorder.RecordCancel(c.sim.TradingDay(), order)
	} else {
		err = c.opts.Recorder.RecordTrade(c.sim.TradingDay(), order)
	}
	if err != nil {
		logs.Errorf("record order %d, err: %v", order.ID, err)
	}
}
