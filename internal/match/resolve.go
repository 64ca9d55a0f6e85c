package match

import (
	"lightning/internal/ledger"
	"lightning/internal/market"
)

// resolve matches one resting order against the frame's tick and
// returns the instrument's remaining volume budget.
func (s *Simulator) resolve(tick *market.Tick, m *orderMatch, order *ledger.Order, budget uint32) uint32 {
	if order.IsBuy() {
		return s.resolveBuy(tick, m, order, budget)
	}
	return s.resolveSell(tick, m, order, budget)
}

func (s *Simulator) resolveBuy(tick *market.Tick, m *orderMatch, order *ledger.Order, budget uint32) uint32 {
	if order.Price == 0 {
		// market order adopts the opposing best price
		order.Price = tick.AskPrice()
		s.freezeAdopted(order)
	}
	switch order.Flag {
	case ledger.FlagFOK:
		if order.Leaves <= budget && order.Price >= tick.AskPrice() {
			qty := order.Leaves
			s.deal(order, qty)
			budget -= qty
		} else {
			s.cancel(order)
		}
	case ledger.FlagFAK:
		if order.Price >= tick.AskPrice() {
			budget = s.fillResting(order, m, budget, budget)
			if order.Leaves > 0 {
				s.cancel(order)
			}
		} else {
			s.cancel(order)
		}
	default:
		if order.Price >= tick.AskPrice() {
			// marketable, no queueing
			budget = s.fillResting(order, m, budget, budget)
		} else if order.Price >= tick.Price {
			budget = s.advanceQueue(m, order, budget)
		}
	}
	return budget
}

func (s *Simulator) resolveSell(tick *market.Tick, m *orderMatch, order *ledger.Order, budget uint32) uint32 {
	if order.Price == 0 {
		order.Price = tick.BidPrice()
		s.freezeAdopted(order)
	}
	switch order.Flag {
	case ledger.FlagFOK:
		if order.Leaves <= budget && order.Price <= tick.BidPrice() {
			qty := order.Leaves
			s.deal(order, qty)
			budget -= qty
		} else {
			s.cancel(order)
		}
	case ledger.FlagFAK:
		if order.Price <= tick.BidPrice() {
			budget = s.fillResting(order, m, budget, budget)
			if order.Leaves > 0 {
				s.cancel(order)
			}
		} else {
			s.cancel(order)
		}
	default:
		if order.Price <= tick.BidPrice() {
			budget = s.fillResting(order, m, budget, budget)
		} else if order.Price <= tick.Price {
			budget = s.advanceQueue(m, order, budget)
		}
	}
	return budget
}

// freezeAdopted reserves margin for a market open order once it takes
// on a concrete price. Submission froze nothing for it.
func (s *Simulator) freezeAdopted(order *ledger.Order) {
	if order.Offset != ledger.OffsetOpen {
		return
	}
	s.book.Account().FrozenMargin += float64(order.Leaves) * order.Price * float64(s.cfg.Multiplier) * s.cfg.MarginRate
}

// advanceQueue consumes estimated queue position ahead of the order.
// Crossing zero converts the overshoot into fill quantity; any credit
// beyond the order's remainder is discarded.
func (s *Simulator) advanceQueue(m *orderMatch, order *ledger.Order, budget uint32) uint32 {
	if m.queuePos > budget {
		m.queuePos -= budget
		return budget
	}
	credit := budget - m.queuePos
	m.queuePos = 0
	if credit == 0 {
		return budget
	}
	return s.fillResting(order, m, credit, budget)
}

// fillResting fills up to avail against the order. Queued orders are
// all-or-nothing on their full remainder; normal orders fill what the
// frame allows. The executed quantity is consumed from budget.
func (s *Simulator) fillResting(order *ledger.Order, m *orderMatch, avail, budget uint32) uint32 {
	var qty uint32
	if m.flag == ledger.FlagQueued {
		if avail < order.Leaves {
			return budget
		}
		qty = order.Leaves
	} else {
		qty = min(order.Leaves, avail)
	}
	if qty == 0 {
		return budget
	}
	s.deal(order, qty)
	if qty > budget {
		return 0
	}
	return budget - qty
}
