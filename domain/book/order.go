package book

import (
	"fmt"
	"time"
)

type Side int
type OrderType int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

const (
	// GoodTillCancel rests until canceled or filled.
	GoodTillCancel OrderType = iota
	// FillAndKill matches what it can immediately and never rests.
	FillAndKill
	// FillOrKill matches only if the entire quantity is immediately
	// fillable; otherwise it is rejected with zero effect.
	FillOrKill
	// GoodForDay rests like GoodTillCancel but is force-canceled by the
	// daily expiration sweep.
	GoodForDay
	// Market carries no limit price; on arrival it converts to a
	// GoodTillCancel capped at the opposite side's worst resting price.
	Market
)

func (t OrderType) String() string {
	switch t {
	case GoodTillCancel:
		return "GTC"
	case FillAndKill:
		return "FAK"
	case FillOrKill:
		return "FOK"
	case GoodForDay:
		return "GFD"
	case Market:
		return "MKT"
	default:
		return "UNKNOWN"
	}
}

type (
	OrderID  = uint64
	Price    = int64
	Quantity = int64
)

// Order is the mutable unit of resting or incoming liquidity. Once accepted
// it is owned by the book; fills mutate Remaining in place and a full fill or
// cancel destroys the book's reference to it.
type Order struct {
	ID        OrderID
	Type      OrderType
	Side      Side
	Price     Price
	Initial   Quantity
	Remaining Quantity
	Created   time.Time

	// intrusive queue links, owned by the price level
	level *level
	next  *Order
	prev  *Order
}

func NewOrder(typ OrderType, id OrderID, side Side, price Price, qty Quantity) *Order {
	return &Order{
		ID:        id,
		Type:      typ,
		Side:      side,
		Price:     price,
		Initial:   qty,
		Remaining: qty,
		Created:   time.Now(),
	}
}

// NewMarketOrder builds a market order; its price is meaningless until the
// book converts it on arrival.
func NewMarketOrder(id OrderID, side Side, qty Quantity) *Order {
	return NewOrder(Market, id, side, 0, qty)
}

func (o *Order) Filled() Quantity { return o.Initial - o.Remaining }
func (o *Order) IsFilled() bool   { return o.Remaining == 0 }

// fill reduces the remaining quantity. Filling past the remaining quantity
// means the matching loop corrupted an index; that is unrecoverable.
func (o *Order) fill(qty Quantity) {
	if qty > o.Remaining {
		panic(fmt.Sprintf("book: fill %d exceeds remaining %d on order %d", qty, o.Remaining, o.ID))
	}
	o.Remaining -= qty
}

// toGoodTillCancel converts a market order into a price-capped limit order.
func (o *Order) toGoodTillCancel(worst Price) {
	if o.Type == Market {
		o.Type = GoodTillCancel
		o.Price = worst
	}
}

// Modify is a cancel-and-replace request: the order keeps its id and original
// type, while side, price and quantity may all change.
type Modify struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

func (m Modify) toOrder(typ OrderType) *Order {
	return NewOrder(typ, m.ID, m.Side, m.Price, m.Quantity)
}
