package depth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mako/domain/book"
)

type stubLevels struct {
	bids, asks []book.LevelInfo
}

func (s stubLevels) BidLevels(int) []book.LevelInfo { return s.bids }
func (s stubLevels) AskLevels(int) []book.LevelInfo { return s.asks }

type captureSender struct {
	key, value []byte
}

func (c *captureSender) Send(_ context.Context, key, value []byte) error {
	c.key, c.value = key, value
	return nil
}

func TestPublishOnce(t *testing.T) {
	levels := stubLevels{
		bids: []book.LevelInfo{{Price: 100, Quantity: 10, Orders: 2}},
		asks: []book.LevelInfo{{Price: 101, Quantity: 4, Orders: 1}},
	}
	sender := &captureSender{}

	p := New(Config{Instrument: "MAKO-USD"}, levels, sender, zap.NewNop())
	require.NoError(t, p.publishOnce(context.Background()))

	require.Equal(t, "MAKO-USD", string(sender.key))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(sender.value, &snap))
	require.Equal(t, "MAKO-USD", snap.Instrument)
	require.NotZero(t, snap.Time)
	require.Equal(t, []Level{{Price: 100, Quantity: 10, Orders: 2}}, snap.Bids)
	require.Equal(t, []Level{{Price: 101, Quantity: 4, Orders: 1}}, snap.Asks)
}
