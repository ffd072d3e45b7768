package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"mako/domain/book"
	"mako/infra/outbox"
	"mako/infra/sequence"
	"mako/infra/tape"
	"mako/service"
)

func dialTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	b := book.New(book.Config{})
	t.Cleanup(b.Close)

	tp, err := tape.Open(tape.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { tp.Close() })

	ob, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ob.Close() })

	svc := service.NewOrderService(b, sequence.New(0), tp, ob, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterOrderServiceServer(srv, NewServer(svc, zap.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(JSONCodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke[Req any, Resp any](t *testing.T, conn *grpc.ClientConn, method string, req *Req, resp *Resp) error {
	t.Helper()
	return conn.Invoke(context.Background(), "/"+serviceName+"/"+method, req, resp)
}

func TestSubmitCancelDepthOverWire(t *testing.T) {
	conn := dialTestServer(t)

	var sub SubmitOrderResponse
	err := invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 1, Side: "BUY", Type: "GTC", Price: 100, Quantity: 10}, &sub)
	require.NoError(t, err)
	require.Empty(t, sub.Trades)

	err = invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 2, Side: "SELL", Type: "GTC", Price: 99, Quantity: 5}, &sub)
	require.NoError(t, err)
	require.Len(t, sub.Trades, 1)
	require.Equal(t, TradeMsg{BidOrder: 1, AskOrder: 2, Price: 99, Quantity: 5}, sub.Trades[0])

	var dep DepthResponse
	require.NoError(t, invoke(t, conn, "GetDepth", &DepthRequest{Depth: 5}, &dep))
	require.Len(t, dep.Bids, 1)
	require.Equal(t, LevelMsg{Price: 100, Quantity: 5, Orders: 1}, dep.Bids[0])
	require.Empty(t, dep.Asks)

	var size SizeResponse
	require.NoError(t, invoke(t, conn, "GetSize", &SizeRequest{}, &size))
	require.Equal(t, 1, size.Orders)

	var cancel CancelOrderResponse
	require.NoError(t, invoke(t, conn, "CancelOrder", &CancelOrderRequest{OrderID: 1}, &cancel))
	require.NoError(t, invoke(t, conn, "GetSize", &SizeRequest{}, &size))
	require.Equal(t, 0, size.Orders)
}

func TestModifyOverWire(t *testing.T) {
	conn := dialTestServer(t)

	var sub SubmitOrderResponse
	require.NoError(t, invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 1, Side: "SELL", Type: "GTC", Price: 105, Quantity: 5}, &sub))
	require.NoError(t, invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 2, Side: "BUY", Type: "GTC", Price: 100, Quantity: 5}, &sub))

	var mod ModifyOrderResponse
	require.NoError(t, invoke(t, conn, "ModifyOrder",
		&ModifyOrderRequest{OrderID: 2, Side: "BUY", Price: 105, Quantity: 5}, &mod))
	require.Len(t, mod.Trades, 1)
	require.Equal(t, int64(105), mod.Trades[0].Price)
}

func TestInvalidArgumentsRejected(t *testing.T) {
	conn := dialTestServer(t)

	var sub SubmitOrderResponse
	err := invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 1, Side: "LONG", Type: "GTC", Price: 100, Quantity: 10}, &sub)
	require.Error(t, err)

	err = invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 1, Side: "BUY", Type: "STOP", Price: 100, Quantity: 10}, &sub)
	require.Error(t, err)

	err = invoke(t, conn, "SubmitOrder",
		&SubmitOrderRequest{OrderID: 1, Side: "BUY", Type: "GTC", Price: 100, Quantity: 0}, &sub)
	require.Error(t, err)
}
