package broadcaster

import (
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mako/infra/outbox"
)

func newTestOutbox(t *testing.T) *outbox.Outbox {
	t.Helper()
	ob, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ob.Close() })
	return ob
}

func pendingSeqs(t *testing.T, ob *outbox.Outbox) []uint64 {
	t.Helper()
	var seqs []uint64
	require.NoError(t, ob.ScanPending(func(seq uint64, _ outbox.Record) error {
		seqs = append(seqs, seq)
		return nil
	}))
	return seqs
}

func TestDrainPublishesAndAcks(t *testing.T) {
	ob := newTestOutbox(t)
	require.NoError(t, ob.PutNew(1, []byte(`{"seq":1}`)))
	require.NoError(t, ob.PutNew(2, []byte(`{"seq":2}`)))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(Config{Topic: "trades"}, producer, ob, zap.NewNop())
	b.drainOnce()

	require.Empty(t, pendingSeqs(t, ob), "acked trades must leave the outbox")
	require.NoError(t, b.Close())
}

func TestFailedPublishStaysPending(t *testing.T) {
	ob := newTestOutbox(t)
	require.NoError(t, ob.PutNew(1, []byte(`{"seq":1}`)))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	b := NewWithProducer(Config{Topic: "trades"}, producer, ob, zap.NewNop())
	b.drainOnce()

	require.Equal(t, []uint64{1}, pendingSeqs(t, ob), "failed publish must be retried later")

	rec, err := ob.Get(1)
	require.NoError(t, err)
	require.Equal(t, outbox.StateSent, rec.State)
	require.Equal(t, uint32(1), rec.Retries)

	// Next drain retries the SENT record.
	producer.ExpectSendMessageAndSucceed()
	b.drainOnce()
	require.Empty(t, pendingSeqs(t, ob))
	require.NoError(t, b.Close())
}
