package ledger

import "errors"

var (
	ErrUnknownOrder   = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already exists")
)

// Account is the session's cash and frozen-margin balances.
type Account struct {
	Cash         float64
	FrozenMargin float64
}

// Book holds the order, position, and account state of one session.
// A Book has exactly one writer: either the simulated matching engine
// or the runtime context mirroring a live adapter.
type Book struct {
	orders    map[OrderID]*Order
	positions map[string]*Position
	account   Account
}

// NewBook creates an empty book with the given starting cash.
func NewBook(initialCash float64) *Book {
	return &Book{
		orders:    make(map[OrderID]*Order),
		positions: make(map[string]*Position),
		account:   Account{Cash: initialCash},
	}
}

// Account returns the mutable account balances.
func (b *Book) Account() *Account {
	return &b.account
}

// Order returns a copy of an active order.
func (b *Book) Order(id OrderID) (Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// MutableOrder returns the live order record for the book's writer.
func (b *Book) MutableOrder(id OrderID) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// AddOrder registers a new active order.
func (b *Book) AddOrder(o Order) error {
	if o.ID == InvalidOrderID {
		return ErrUnknownOrder
	}
	if _, ok := b.orders[o.ID]; ok {
		return ErrDuplicateOrder
	}
	clone := o
	b.orders[o.ID] = &clone
	return nil
}

// RemoveOrder drops a terminal order from the active set.
func (b *Book) RemoveOrder(id OrderID) {
	delete(b.orders, id)
}

// FindOrders returns copies of active orders matching the predicate.
func (b *Book) FindOrders(pred func(*Order) bool) []Order {
	var result []Order
	for _, o := range b.orders {
		if pred == nil || pred(o) {
			result = append(result, *o)
		}
	}
	return result
}

// OrderCount returns the number of active orders.
func (b *Book) OrderCount() int {
	return len(b.orders)
}

// Position returns the mutable position for an instrument, creating an
// empty one on first use.
func (b *Book) Position(code string) *Position {
	p, ok := b.positions[code]
	if !ok {
		p = &Position{Code: code}
		b.positions[code] = p
	}
	return p
}

// PositionView returns a copy of an instrument's position.
func (b *Book) PositionView(code string) (Position, bool) {
	p, ok := b.positions[code]
	if !ok {
		return Position{Code: code}, false
	}
	return *p, true
}

// TotalPosition is the aggregate held quantity over every instrument
// and both sides, the quantity the position limit is checked against.
func (b *Book) TotalPosition() uint32 {
	var total uint32
	for _, p := range b.positions {
		total += p.Total()
	}
	return total
}

// Crossday merges today lots into yesterday for every position and
// drops instruments that are flat.
func (b *Book) Crossday() {
	for code, p := range b.positions {
		p.Crossday()
		if p.Empty() {
			delete(b.positions, code)
		}
	}
}
