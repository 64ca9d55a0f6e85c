package ledger

// Lot is one sub-account of a position: quantity held, its weighted
// average entry price, and the part frozen by pending close orders.
// Frozen never exceeds Held.
type Lot struct {
	Held   uint32
	Price  float64
	Frozen uint32
}

// Usable is the quantity not reserved by pending closes.
func (l *Lot) Usable() uint32 {
	return l.Held - l.Frozen
}

// Empty reports whether the lot holds nothing.
func (l *Lot) Empty() bool {
	return l.Held == 0
}

// Clear zeroes the lot.
func (l *Lot) Clear() {
	*l = Lot{}
}

// Add folds a fill into the lot, weighted-averaging the entry price.
func (l *Lot) Add(qty uint32, price float64) {
	if qty == 0 {
		return
	}
	l.Price = (l.Price*float64(l.Held) + price*float64(qty)) / float64(l.Held+qty)
	l.Held += qty
}

// merge folds another lot into this one, weighted-averaging prices.
func (l *Lot) merge(other Lot) {
	total := l.Held + other.Held
	if total == 0 {
		l.Clear()
		return
	}
	l.Price = (l.Price*float64(l.Held) + other.Price*float64(other.Held)) / float64(total)
	l.Held = total
	l.Frozen += other.Frozen
}

// CloseAlloc records how much of a close fill one lot absorbed and at
// which entry price. Margin release and realized P&L are both priced
// from Entry, never from the closing order.
type CloseAlloc struct {
	Qty   uint32
	Entry float64
}

// Position is the per-instrument holding, split into today and
// yesterday lots per side.
type Position struct {
	Code           string
	TodayLong      Lot
	TodayShort     Lot
	YesterdayLong  Lot
	YesterdayShort Lot
}

// Lots returns the (yesterday, today) lots for one side.
func (p *Position) Lots(side Side) (yesterday, today *Lot) {
	if side == SideLong {
		return &p.YesterdayLong, &p.TodayLong
	}
	return &p.YesterdayShort, &p.TodayShort
}

// Held is the total quantity held on one side.
func (p *Position) Held(side Side) uint32 {
	y, t := p.Lots(side)
	return y.Held + t.Held
}

// Frozen is the total quantity reserved by pending closes on one side.
func (p *Position) Frozen(side Side) uint32 {
	y, t := p.Lots(side)
	return y.Frozen + t.Frozen
}

// Usable is the closable quantity on one side.
func (p *Position) Usable(side Side) uint32 {
	y, t := p.Lots(side)
	return y.Usable() + t.Usable()
}

// Total is the aggregate held quantity over both sides.
func (p *Position) Total() uint32 {
	return p.Held(SideLong) + p.Held(SideShort)
}

// Empty reports whether nothing is held on either side.
func (p *Position) Empty() bool {
	return p.Total() == 0
}

// Net is the signed exposure, positive when net long.
func (p *Position) Net() int64 {
	return int64(p.Held(SideLong)) - int64(p.Held(SideShort))
}

// FreezeClose reserves qty on one side for a pending close order,
// consuming yesterday lots first. Returns false without mutating when
// usable quantity is insufficient.
func (p *Position) FreezeClose(side Side, qty uint32) bool {
	if p.Usable(side) < qty {
		return false
	}
	yesterday, today := p.Lots(side)
	take := min(qty, yesterday.Usable())
	yesterday.Frozen += take
	today.Frozen += qty - take
	return true
}

// UnfreezeClose returns a canceled close order's remaining quantity,
// releasing today lots first (the reverse of FreezeClose).
func (p *Position) UnfreezeClose(side Side, qty uint32) {
	yesterday, today := p.Lots(side)
	take := min(qty, today.Frozen)
	today.Frozen -= take
	qty -= take
	if qty > yesterday.Frozen {
		qty = yesterday.Frozen
	}
	yesterday.Frozen -= qty
}

// ConsumeClose settles a close fill of qty against frozen quantity,
// yesterday lots first, decrementing held and frozen together. The
// returned allocations carry each consumed lot's entry price.
func (p *Position) ConsumeClose(side Side, qty uint32) []CloseAlloc {
	yesterday, today := p.Lots(side)
	var allocs []CloseAlloc
	for _, lot := range []*Lot{yesterday, today} {
		if qty == 0 {
			break
		}
		take := min(qty, lot.Frozen)
		if take == 0 {
			continue
		}
		lot.Held -= take
		lot.Frozen -= take
		allocs = append(allocs, CloseAlloc{Qty: take, Entry: lot.Price})
		qty -= take
	}
	return allocs
}

// Crossday merges today lots into yesterday lots at a day boundary.
func (p *Position) Crossday() {
	p.YesterdayLong.merge(p.TodayLong)
	p.YesterdayShort.merge(p.TodayShort)
	p.TodayLong.Clear()
	p.TodayShort.Clear()
}
