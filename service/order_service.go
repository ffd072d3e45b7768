package service

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mako/domain/book"
	"mako/infra/outbox"
	"mako/infra/sequence"
	"mako/infra/tape"
)

// OrderService is the only write entry point into the engine. It owns the
// coordination between the book, the trade tape and the delivery outbox:
// the book decides, the service records.
type OrderService struct {
	book   *book.Book
	seq    *sequence.Sequencer
	tape   *tape.Tape
	outbox *outbox.Outbox
	log    *zap.Logger
}

// TradeEvent is the JSON payload handed to the broadcaster through the
// outbox.
type TradeEvent struct {
	V        int    `json:"v"`
	Seq      uint64 `json:"seq"`
	BidOrder uint64 `json:"bid_order"`
	AskOrder uint64 `json:"ask_order"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"qty"`
	Time     int64  `json:"ts"`
}

func NewOrderService(
	b *book.Book,
	seq *sequence.Sequencer,
	t *tape.Tape,
	ob *outbox.Outbox,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		book:   b,
		seq:    seq,
		tape:   t,
		outbox: ob,
		log:    log,
	}
}

// SubmitOrder runs an order through the book and records any resulting
// trades. An empty trade list means the order either rested or was rejected
// as a domain outcome (duplicate id, infeasible FOK, uncrossed FAK, market
// order with no opposite liquidity).
func (s *OrderService) SubmitOrder(typ book.OrderType, id book.OrderID, side book.Side, price book.Price, qty book.Quantity) []book.Trade {
	var o *book.Order
	if typ == book.Market {
		o = book.NewMarketOrder(id, side, qty)
	} else {
		o = book.NewOrder(typ, id, side, price, qty)
	}

	trades := s.book.AddOrder(o)
	s.recordTrades(trades)

	s.log.Debug("order submitted",
		zap.Uint64("id", id),
		zap.Stringer("side", side),
		zap.Stringer("type", typ),
		zap.Int64("price", price),
		zap.Int64("qty", qty),
		zap.Int("trades", len(trades)),
	)
	return trades
}

// CancelOrder is idempotent; canceling an unknown id does nothing.
func (s *OrderService) CancelOrder(id book.OrderID) {
	s.book.CancelOrder(id)
}

// ModifyOrder cancel-and-replaces a live order, recording any trades the
// replacement produces on re-entry.
func (s *OrderService) ModifyOrder(mod book.Modify) []book.Trade {
	trades := s.book.ModifyOrder(mod)
	s.recordTrades(trades)
	return trades
}

func (s *OrderService) BidLevels(depth int) []book.LevelInfo { return s.book.BidLevels(depth) }
func (s *OrderService) AskLevels(depth int) []book.LevelInfo { return s.book.AskLevels(depth) }
func (s *OrderService) Size() int                            { return s.book.Size() }

// recordTrades sequences each trade, appends it to the tape and enqueues it
// for broadcast. Recording is best-effort relative to matching: the book has
// already moved on, so failures are logged, not unwound.
func (s *OrderService) recordTrades(trades []book.Trade) {
	for _, tr := range trades {
		seq := s.seq.Next()
		now := time.Now().UnixNano()

		if err := s.tape.Append(&tape.Record{
			Seq:      seq,
			Time:     now,
			BidOrder: tr.Bid.OrderID,
			AskOrder: tr.Ask.OrderID,
			Price:    tr.Ask.Price,
			Quantity: tr.Ask.Quantity,
		}); err != nil {
			s.log.Error("tape append failed", zap.Uint64("seq", seq), zap.Error(err))
		}

		payload, err := json.Marshal(TradeEvent{
			V:        1,
			Seq:      seq,
			BidOrder: tr.Bid.OrderID,
			AskOrder: tr.Ask.OrderID,
			Price:    tr.Ask.Price,
			Quantity: tr.Ask.Quantity,
			Time:     now,
		})
		if err != nil {
			s.log.Error("trade event marshal failed", zap.Uint64("seq", seq), zap.Error(err))
			continue
		}
		if err := s.outbox.PutNew(seq, payload); err != nil {
			s.log.Error("outbox put failed", zap.Uint64("seq", seq), zap.Error(err))
		}
	}
}
