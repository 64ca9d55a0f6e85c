package event

import (
	"lightning/internal/ledger"
	"lightning/internal/market"
)

// Kind discriminates the closed set of event variants a session can
// observe. Events are delivered exactly once, in order, on the
// session goroutine.
type Kind uint16

const (
	KindUnknown Kind = iota
	KindBeginTrading
	KindEndTrading
	KindTick
	KindEntrust
	KindDeal
	KindTrade
	KindCancel
	KindError
)

// ErrorCode classifies in-loop error events. They never stop the
// session.
type ErrorCode uint16

const (
	ErrNone ErrorCode = iota
	// ErrCancelFailed reports a cancel for an unknown or terminal order.
	ErrCancelFailed
	// ErrPlaceFailed reports a submission the execution target refused.
	ErrPlaceFailed
)

// Event is one tagged event variant. Only the fields of the active
// variant are meaningful.
type Event struct {
	Kind    Kind
	Day     uint32
	Tick    market.Tick
	Order   ledger.Order
	OrderID ledger.OrderID
	Filled  uint32
	Total   uint32
	Err     ErrorCode
}

// BeginTrading marks the start of a trading day's tick stream.
func BeginTrading(day uint32) Event {
	return Event{Kind: KindBeginTrading, Day: day}
}

// EndTrading marks the exhaustion of the tick stream for the day.
func EndTrading(day uint32) Event {
	return Event{Kind: KindEndTrading, Day: day}
}

// NewTick wraps a market tick.
func NewTick(t market.Tick) Event {
	return Event{Kind: KindTick, Tick: t}
}

// Entrust acknowledges an order resting in the match queue.
func Entrust(o ledger.Order) Event {
	return Event{Kind: KindEntrust, Order: o, OrderID: o.ID}
}

// Deal reports a partial fill: filled of total executed so far.
func Deal(id ledger.OrderID, filled, total uint32) Event {
	return Event{Kind: KindDeal, OrderID: id, Filled: filled, Total: total}
}

// Trade reports a full fill; the order is terminal.
func Trade(o ledger.Order) Event {
	return Event{Kind: KindTrade, Order: o, OrderID: o.ID}
}

// Cancel reports cancellation; Order.Leaves is the canceled quantity.
func Cancel(o ledger.Order) Event {
	return Event{Kind: KindCancel, Order: o, OrderID: o.ID}
}

// Error reports a recoverable in-loop error tied to an order id.
func Error(code ErrorCode, id ledger.OrderID) Event {
	return Event{Kind: KindError, OrderID: id, Err: code}
}
