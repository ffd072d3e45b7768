package book

// TradeLeg is one side's view of a single matched quantity.
type TradeLeg struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade pairs the bid and ask legs of one match. Both legs carry the ask-side
// level price, even when the bid was the resting order; that convention comes
// from the engine this book replaced and is kept so downstream economics do
// not change silently.
type Trade struct {
	Bid TradeLeg
	Ask TradeLeg
}

// LevelInfo is the per-price rollup returned by depth snapshots.
type LevelInfo struct {
	Price    Price
	Quantity Quantity
	Orders   int
}
