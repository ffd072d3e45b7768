// Package depth periodically publishes aggregated book depth to Kafka for
// market-data consumers.
package depth

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mako/domain/book"
)

// Levels is the read side of the order service.
type Levels interface {
	BidLevels(depth int) []book.LevelInfo
	AskLevels(depth int) []book.LevelInfo
}

// Sender is satisfied by infra/kafka.Producer.
type Sender interface {
	Send(ctx context.Context, key, value []byte) error
}

type Config struct {
	Instrument string
	Depth      int
	Interval   time.Duration
}

type Snapshot struct {
	Instrument string  `json:"instrument"`
	Time       int64   `json:"ts"`
	Bids       []Level `json:"bids"`
	Asks       []Level `json:"asks"`
}

type Level struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"qty"`
	Orders   int   `json:"orders"`
}

type Publisher struct {
	levels Levels
	sender Sender
	cfg    Config
	log    *zap.Logger
}

func New(cfg Config, levels Levels, sender Sender, log *zap.Logger) *Publisher {
	if cfg.Depth <= 0 {
		cfg.Depth = 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Publisher{levels: levels, sender: sender, cfg: cfg, log: log}
}

// Run blocks, publishing a depth snapshot on every tick until ctx is
// canceled.
func (p *Publisher) Run(ctx context.Context) {
	p.log.Info("depth publisher started",
		zap.String("instrument", p.cfg.Instrument),
		zap.Int("depth", p.cfg.Depth),
	)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishOnce(ctx); err != nil {
				p.log.Warn("depth publish failed", zap.Error(err))
			}
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	snap := Snapshot{
		Instrument: p.cfg.Instrument,
		Time:       time.Now().UnixNano(),
		Bids:       toLevels(p.levels.BidLevels(p.cfg.Depth)),
		Asks:       toLevels(p.levels.AskLevels(p.cfg.Depth)),
	}
	value, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.sender.Send(ctx, []byte(p.cfg.Instrument), value)
}

func toLevels(in []book.LevelInfo) []Level {
	out := make([]Level, len(in))
	for i, l := range in {
		out[i] = Level{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	return out
}
