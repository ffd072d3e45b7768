// Package broadcaster drains the trade outbox to Kafka. Records are marked
// SENT before the publish and ACKED after, so a crash anywhere in between
// re-delivers rather than drops; consumers must dedupe on sequence number.
package broadcaster

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"mako/infra/outbox"
)

type Config struct {
	Brokers  []string
	Topic    string
	Interval time.Duration
}

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func New(cfg Config, ob *outbox.Outbox, log *zap.Logger) (*Broadcaster, error) {
	scfg := sarama.NewConfig()
	scfg.Producer.Return.Successes = true
	scfg.Producer.RequiredAcks = sarama.WaitForAll
	scfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Brokers, scfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(cfg, producer, ob, log), nil
}

// NewWithProducer wires an existing producer; used by New and by tests.
func NewWithProducer(cfg Config, producer sarama.SyncProducer, ob *outbox.Outbox, log *zap.Logger) *Broadcaster {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    cfg.Topic,
		interval: interval,
		log:      log,
	}
}

// Run blocks, draining the outbox on a fixed interval until ctx is canceled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", zap.String("topic", b.topic))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("broadcaster stopped")
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	err := b.outbox.ScanPending(func(seq uint64, rec outbox.Record) error {
		if err := b.outbox.MarkSent(seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.log.Warn("publish failed, will retry", zap.Uint64("seq", seq), zap.Error(err))
			return nil // leave as SENT, picked up next drain
		}

		return b.outbox.MarkAcked(seq)
	})
	if err != nil {
		b.log.Error("outbox scan failed", zap.Error(err))
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
