package match

import (
	"lightning/internal/event"
	"lightning/internal/ledger"
)

// deal settles a fill of qty at the order's price, then emits a
// partial-fill or full-fill event. Full fills remove the order.
func (s *Simulator) deal(order *ledger.Order, qty uint32) {
	acct := s.book.Account()
	pos := s.book.Position(order.Code)
	mult := float64(s.cfg.Multiplier)

	if order.Offset == ledger.OffsetOpen {
		_, today := pos.Lots(order.Side)
		today.Add(qty, order.Price)
		acct.Cash -= float64(qty) * s.cfg.ServiceCharge
	} else {
		sign := 1.0
		if order.Side == ledger.SideShort {
			sign = -1.0
		}
		// margin release and P&L are both priced from each consumed
		// lot's entry, never from the closing order's price
		for _, alloc := range pos.ConsumeClose(order.Side, qty) {
			acct.Cash += (order.Price - alloc.Entry) * mult * sign
			acct.FrozenMargin -= float64(alloc.Qty) * alloc.Entry * mult * s.cfg.MarginRate
		}
		acct.Cash -= float64(qty) * s.cfg.ServiceCharge
	}

	order.Leaves -= qty
	if order.Leaves > 0 {
		s.emit(event.Deal(order.ID, order.Filled(), order.Total))
		return
	}
	s.emit(event.Trade(*order))
	s.removeOrder(order.ID, order.Code)
}

// cancel reverses exactly the reservation made at submission:
// open orders return frozen margin at the order's own price, close
// orders unfreeze their remaining quantity.
func (s *Simulator) cancel(order *ledger.Order) {
	if order.Offset == ledger.OffsetOpen {
		s.book.Account().FrozenMargin -= float64(order.Leaves) * order.Price * float64(s.cfg.Multiplier) * s.cfg.MarginRate
	} else {
		s.book.Position(order.Code).UnfreezeClose(order.Side, order.Leaves)
	}
	s.emit(event.Cancel(*order))
	s.removeOrder(order.ID, order.Code)
}

func (s *Simulator) removeOrder(id ledger.OrderID, code string) {
	s.book.RemoveOrder(id)
	resting := s.matches[code]
	for i, m := range resting {
		if m.id == id {
			s.matches[code] = append(resting[:i], resting[i+1:]...)
			break
		}
	}
}
