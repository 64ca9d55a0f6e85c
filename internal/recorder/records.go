package recorder

import (
	"time"

	"lightning/internal/ledger"
)

// OrderRecord is one terminal order outcome: a full fill or a cancel.
type OrderRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	TradingDay uint32 `gorm:"index"`
	OrderID    uint64
	Code       string `gorm:"size:32;index"`
	Offset     uint8
	Side       uint8
	Flag       uint8
	Price      float64
	Total      uint32
	Leaves     uint32
	Canceled   bool
	CreatedAt  time.Time
}

// SettlementRecord is one day-boundary account snapshot.
type SettlementRecord struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	TradingDay   uint32 `gorm:"uniqueIndex"`
	Cash         float64
	FrozenMargin float64
	Placed       uint32
	Entrusted    uint32
	Traded       uint32
	Canceled     uint32
	CreatedAt    time.Time
}

// RecordTrade writes a fully-filled order.
func (c *Client) RecordTrade(day uint32, order ledger.Order) error {
	return c.record(day, order, false)
}

// RecordCancel writes a canceled order with its unfilled remainder.
func (c *Client) RecordCancel(day uint32, order ledger.Order) error {
	return c.record(day, order, true)
}

func (c *Client) record(day uint32, order ledger.Order, canceled bool) error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Create(&OrderRecord{
		TradingDay: day,
		OrderID:    uint64(order.ID),
		Code:       order.Code,
		Offset:     uint8(order.Offset),
		Side:       uint8(order.Side),
		Flag:       uint8(order.Flag),
		Price:      order.Price,
		Total:      order.Total,
		Leaves:     order.Leaves,
		Canceled:   canceled,
	}).Error
}

// RecordSettlement writes the day-boundary snapshot.
func (c *Client) RecordSettlement(day uint32, cash, frozenMargin float64, stats ledger.Statistic) error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Create(&SettlementRecord{
		TradingDay:   day,
		Cash:         cash,
		FrozenMargin: frozenMargin,
		Placed:       stats.Placed,
		Entrusted:    stats.Entrusted,
		Traded:       stats.Traded,
		Canceled:     stats.Canceled,
	}).Error
}
