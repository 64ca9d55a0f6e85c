// Package chain screens order submissions before they reach the
// execution target. Stages are iterated in a fixed order; each may
// pass the request on, reject it, or satisfy it by side effect.
package chain

import (
	"errors"

	"lightning/internal/ledger"
)

var (
	// ErrPositionLimit rejects an open that would exceed the
	// configured aggregate position cap.
	ErrPositionLimit = errors.New("chain: position limit exceeded")
	// ErrInsufficientUsable rejects a close larger than the usable
	// quantity on the order's side.
	ErrInsufficientUsable = errors.New("chain: insufficient usable position")
	// ErrFiltered rejects a request vetoed by the strategy filter.
	ErrFiltered = errors.New("chain: rejected by trading filter")
)

// Request carries the parameters of one order submission.
type Request struct {
	Code   string
	Offset ledger.Offset
	Side   ledger.Side
	Flag   ledger.Flag
	Price  float64
	Qty    uint32
}

// View is the read-only ledger surface stages consult.
type View interface {
	FindOrders(pred func(*ledger.Order) bool) []ledger.Order
	Position(code string) ledger.Position
	TotalPosition() uint32
}

// Canceler issues the one side effect a stage is allowed: canceling
// a resting order.
type Canceler interface {
	CancelOrder(id ledger.OrderID) error
}

// Filter is a strategy-supplied veto over submissions. Returning
// false rejects the request.
type Filter func(code string, offset ledger.Offset, side ledger.Side, qty uint32, price float64, flag ledger.Flag) bool

// Stage inspects one request. pass=false stops the chain; a nil error
// alongside means the request was suppressed rather than rejected.
type Stage interface {
	Check(req *Request, view View, canceler Canceler) (pass bool, err error)
}

// Chain iterates its stages in order.
type Chain struct {
	stages []Stage
}

func New(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Screen runs every stage against the request. It returns pass=true
// when the request may be forwarded to the execution target.
func (c *Chain) Screen(req *Request, view View, canceler Canceler) (bool, error) {
	for _, stage := range c.stages {
		pass, err := stage.Check(req, view, canceler)
		if !pass || err != nil {
			return false, err
		}
	}
	return true, nil
}
