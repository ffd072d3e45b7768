package grpcserver

// Wire messages. Sides are "BUY"/"SELL"; order types use the engine's
// short names: GTC, FAK, FOK, GFD, MKT.

type SubmitOrderRequest struct {
	OrderID  uint64 `json:"order_id"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"qty"`
}

type SubmitOrderResponse struct {
	// Trades executed by this submission. Empty means the order rested or
	// was rejected (duplicate id, infeasible FOK, uncrossed FAK, market
	// order with no opposite liquidity).
	Trades []TradeMsg `json:"trades"`
}

type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

type CancelOrderResponse struct{}

type ModifyOrderRequest struct {
	OrderID  uint64 `json:"order_id"`
	Side     string `json:"side"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"qty"`
}

type ModifyOrderResponse struct {
	Trades []TradeMsg `json:"trades"`
}

type TradeMsg struct {
	BidOrder uint64 `json:"bid_order"`
	AskOrder uint64 `json:"ask_order"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"qty"`
}

type DepthRequest struct {
	Depth int `json:"depth"`
}

type DepthResponse struct {
	Bids []LevelMsg `json:"bids"`
	Asks []LevelMsg `json:"asks"`
}

type LevelMsg struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"qty"`
	Orders   int   `json:"orders"`
}

type SizeRequest struct{}

type SizeResponse struct {
	Orders int `json:"orders"`
}
