package chain

import (
	"lightning/internal/ledger"
)

// OppositeCancel suppresses a submission that would cross the
// session's own resting interest: a resting order on the same
// instrument, opposite side, identical quantity and price is
// canceled instead, and the new order never goes out.
type OppositeCancel struct{}

func (OppositeCancel) Check(req *Request, view View, canceler Canceler) (bool, error) {
	opposite := view.FindOrders(func(o *ledger.Order) bool {
		return o.Code == req.Code &&
			o.Side != req.Side &&
			o.Leaves == req.Qty &&
			o.Price == req.Price
	})
	if len(opposite) == 0 {
		return true, nil
	}
	if err := canceler.CancelOrder(opposite[0].ID); err != nil {
		return false, err
	}
	return false, nil
}

// Verify enforces the position limit on opens, usable quantity on
// closes, and the optional strategy filter. It never mutates state.
type Verify struct {
	// MaxPosition caps held quantity plus pending open quantity
	// across all instruments. Zero disables the cap.
	MaxPosition uint32
	// Filter, when set, may veto any request.
	Filter Filter
}

func (v *Verify) Check(req *Request, view View, canceler Canceler) (bool, error) {
	switch req.Offset {
	case ledger.OffsetOpen:
		if v.MaxPosition > 0 {
			pending := uint32(0)
			for _, o := range view.FindOrders(func(o *ledger.Order) bool {
				return o.Offset == ledger.OffsetOpen
			}) {
				pending += o.Leaves
			}
			if view.TotalPosition()+pending+req.Qty > v.MaxPosition {
				return false, ErrPositionLimit
			}
		}
	case ledger.OffsetClose:
		pos := view.Position(req.Code)
		if pos.Usable(req.Side) < req.Qty {
			return false, ErrInsufficientUsable
		}
	}
	if v.Filter != nil && !v.Filter(req.Code, req.Offset, req.Side, req.Qty, req.Price, req.Flag) {
		return false, ErrFiltered
	}
	return true, nil
}
