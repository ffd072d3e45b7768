package book

import (
	"sync"
	"time"
)

const DefaultCutoffHour = 16

// Config holds the book's only tunable: the local hour of day at which
// GoodForDay orders are purged.
type Config struct {
	CutoffHour int
}

// Book is a single-instrument limit order book with price-time priority.
//
// Every operation, reads included, runs under one exclusive mutex: matching
// crosses both sides and keeps three indexes consistent, which makes
// finer-grained locking a correctness hazard rather than an optimization.
// A background goroutine sweeps GoodForDay orders at the configured cutoff.
type Book struct {
	mu sync.Mutex

	bids   *tree // best = max
	asks   *tree // best = min
	orders map[OrderID]*Order

	cutoffHour int

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(cfg Config) *Book {
	if cfg.CutoffHour <= 0 || cfg.CutoffHour > 23 {
		cfg.CutoffHour = DefaultCutoffHour
	}
	b := &Book{
		bids:       newTree(),
		asks:       newTree(),
		orders:     make(map[OrderID]*Order),
		cutoffHour: cfg.CutoffHour,
		done:       make(chan struct{}),
	}
	b.wg.Add(1)
	go b.pruneGoodForDay()
	return b
}

// Close signals the sweeper and waits for it. Safe to call more than once.
func (b *Book) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

// AddOrder submits an order. Rejections are domain outcomes, not errors: a
// duplicate id, an infeasible FillOrKill, a FillAndKill with no cross, or a
// market order facing an empty opposite side all return an empty trade list
// and leave the book untouched.
func (b *Book) AddOrder(o *Order) []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(o)
}

// CancelOrder removes a live order. Unknown ids are a no-op.
func (b *Book) CancelOrder(id OrderID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelLocked(id)
}

// ModifyOrder cancels the existing order and resubmits it built from mod,
// keeping the original order's type. The replacement goes through the full
// AddOrder pipeline, so it may match immediately. Unknown ids return an
// empty trade list.
func (b *Book) ModifyOrder(mod Modify) []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.orders[mod.ID]
	if !ok {
		return nil
	}
	typ := existing.Type
	b.cancelLocked(mod.ID)
	return b.addLocked(mod.toOrder(typ))
}

// BidLevels returns up to depth bid levels, best first, read from the level
// aggregates. depth <= 0 returns all levels.
func (b *Book) BidLevels(depth int) []LevelInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]LevelInfo, 0, max(depth, 0))
	b.bids.descend(func(lvl *level) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		out = append(out, LevelInfo{Price: lvl.price, Quantity: lvl.totalQty, Orders: lvl.orderCount})
		return true
	})
	return out
}

// AskLevels returns up to depth ask levels, best first. depth <= 0 returns
// all levels.
func (b *Book) AskLevels(depth int) []LevelInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]LevelInfo, 0, max(depth, 0))
	b.asks.ascend(func(lvl *level) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		out = append(out, LevelInfo{Price: lvl.price, Quantity: lvl.totalQty, Orders: lvl.orderCount})
		return true
	})
	return out
}

// Size is the count of live orders.
func (b *Book) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

/******************** Mutations (lock held) ********************/

func (b *Book) addLocked(o *Order) []Trade {
	if _, ok := b.orders[o.ID]; ok {
		return nil
	}

	if o.Type == Market {
		// Cap at the opposite side's worst price so the order can sweep
		// everything resting there.
		switch {
		case o.Side == Buy && b.asks.len() > 0:
			o.toGoodTillCancel(b.asks.max().price)
		case o.Side == Sell && b.bids.len() > 0:
			o.toGoodTillCancel(b.bids.min().price)
		default:
			return nil // no opposite liquidity
		}
	}

	if o.Type == FillAndKill && !b.canMatch(o.Side, o.Price) {
		return nil
	}
	if o.Type == FillOrKill && !b.canFullyFill(o.Side, o.Price, o.Initial) {
		return nil
	}

	if o.Side == Buy {
		b.bids.upsert(o.Price).enqueue(o)
	} else {
		b.asks.upsert(o.Price).enqueue(o)
	}
	b.orders[o.ID] = o

	return b.matchLocked()
}

// cancelLocked is the single removal primitive shared by CancelOrder, the
// post-match FillAndKill cleanup, ModifyOrder and the expiration sweep.
func (b *Book) cancelLocked(id OrderID) {
	o, ok := b.orders[id]
	if !ok {
		return
	}
	delete(b.orders, id)

	lvl := o.level
	lvl.unlink(o)
	if lvl.empty() {
		if o.Side == Buy {
			b.bids.remove(lvl.price)
		} else {
			b.asks.remove(lvl.price)
		}
	}
}

func (b *Book) canMatch(side Side, price Price) bool {
	if side == Buy {
		best := b.asks.min()
		return best != nil && price >= best.price
	}
	best := b.bids.max()
	return best != nil && price <= best.price
}

// canFullyFill walks the opposite side's reachable levels in priority order,
// accumulating the aggregate quantities and short-circuiting as soon as the
// order is covered.
func (b *Book) canFullyFill(side Side, price Price, qty Quantity) bool {
	if !b.canMatch(side, price) {
		return false
	}

	remaining := qty
	covered := false
	walk := func(lvl *level) bool {
		reachable := lvl.price <= price
		if side == Sell {
			reachable = lvl.price >= price
		}
		if !reachable {
			return false
		}
		if lvl.totalQty >= remaining {
			covered = true
			return false
		}
		remaining -= lvl.totalQty
		return true
	}
	if side == Buy {
		b.asks.ascend(walk)
	} else {
		b.bids.descend(walk)
	}
	return covered
}

// matchLocked runs the crossing loop: while the best bid reaches the best
// ask, fill the two queue heads against each other. Both trade legs carry
// the ask level's price.
func (b *Book) matchLocked() []Trade {
	var trades []Trade

	for {
		bestBid := b.bids.max()
		bestAsk := b.asks.min()
		if bestBid == nil || bestAsk == nil || bestBid.price < bestAsk.price {
			break
		}

		for !bestBid.empty() && !bestAsk.empty() {
			bid := bestBid.head
			ask := bestAsk.head

			qty := min(bid.Remaining, ask.Remaining)
			bid.fill(qty)
			ask.fill(qty)
			bestBid.reduce(qty)
			bestAsk.reduce(qty)

			trades = append(trades, Trade{
				Bid: TradeLeg{OrderID: bid.ID, Price: bestAsk.price, Quantity: qty},
				Ask: TradeLeg{OrderID: ask.ID, Price: bestAsk.price, Quantity: qty},
			})

			if bid.IsFilled() {
				bestBid.unlink(bid)
				delete(b.orders, bid.ID)
			}
			if ask.IsFilled() {
				bestAsk.unlink(ask)
				delete(b.orders, ask.ID)
			}
		}

		if bestBid.empty() {
			b.bids.remove(bestBid.price)
		}
		if bestAsk.empty() {
			b.asks.remove(bestAsk.price)
		}
	}

	// A FillAndKill order never survives past one matching pass.
	if lvl := b.bids.max(); lvl != nil && lvl.head != nil && lvl.head.Type == FillAndKill {
		b.cancelLocked(lvl.head.ID)
	}
	if lvl := b.asks.min(); lvl != nil && lvl.head != nil && lvl.head.Type == FillAndKill {
		b.cancelLocked(lvl.head.ID)
	}
	return trades
}

/******************** Expiration sweep ********************/

// sweepGoodForDay cancels every resting GoodForDay order. Called by the
// sweeper on a cutoff wake.
func (b *Book) sweepGoodForDay() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []OrderID
	for id, o := range b.orders {
		if o.Type == GoodForDay {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		b.cancelLocked(id)
	}
}

func (b *Book) pruneGoodForDay() {
	defer b.wg.Done()

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), b.cutoffHour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		// Small slack so the wake lands past the cutoff boundary.
		timer := time.NewTimer(next.Sub(now) + 100*time.Millisecond)

		select {
		case <-b.done:
			timer.Stop()
			return
		case <-timer.C:
			b.sweepGoodForDay()
		}
	}
}
