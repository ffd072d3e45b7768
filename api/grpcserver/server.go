// Package grpcserver adapts OrderService to gRPC. The service descriptor is
// written by hand against a registered JSON codec; there are no generated
// stubs.
package grpcserver

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mako/domain/book"
	"mako/service"
)

const serviceName = "mako.v1.OrderService"

// OrderServiceServer is the gRPC-facing surface.
type OrderServiceServer interface {
	SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error)
	CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error)
	ModifyOrder(ctx context.Context, req *ModifyOrderRequest) (*ModifyOrderResponse, error)
	GetDepth(ctx context.Context, req *DepthRequest) (*DepthResponse, error)
	GetSize(ctx context.Context, req *SizeRequest) (*SizeResponse, error)
}

// Server adapts OrderService to the wire types.
type Server struct {
	svc *service.OrderService
	log *zap.Logger
}

func NewServer(svc *service.OrderService, log *zap.Logger) *Server {
	return &Server{svc: svc, log: log}
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

// -------------------- Commands --------------------

func (s *Server) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	typ, err := toType(req.Type)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Quantity <= 0 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be positive")
	}

	trades := s.svc.SubmitOrder(typ, req.OrderID, side, req.Price, req.Quantity)

	s.log.Debug("SubmitOrder",
		zap.Uint64("id", req.OrderID),
		zap.String("side", req.Side),
		zap.String("type", req.Type),
		zap.Int("trades", len(trades)),
	)
	return &SubmitOrderResponse{Trades: toTradeMsgs(trades)}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error) {
	s.svc.CancelOrder(req.OrderID)
	return &CancelOrderResponse{}, nil
}

func (s *Server) ModifyOrder(ctx context.Context, req *ModifyOrderRequest) (*ModifyOrderResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Quantity <= 0 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be positive")
	}

	trades := s.svc.ModifyOrder(book.Modify{
		ID:       req.OrderID,
		Side:     side,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	return &ModifyOrderResponse{Trades: toTradeMsgs(trades)}, nil
}

// -------------------- Queries --------------------

func (s *Server) GetDepth(ctx context.Context, req *DepthRequest) (*DepthResponse, error) {
	return &DepthResponse{
		Bids: toLevelMsgs(s.svc.BidLevels(req.Depth)),
		Asks: toLevelMsgs(s.svc.AskLevels(req.Depth)),
	}, nil
}

func (s *Server) GetSize(ctx context.Context, req *SizeRequest) (*SizeResponse, error) {
	return &SizeResponse{Orders: s.svc.Size()}, nil
}

// -------------------- Converters --------------------

func toSide(s string) (book.Side, error) {
	switch s {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

func toType(t string) (book.OrderType, error) {
	switch t {
	case "GTC":
		return book.GoodTillCancel, nil
	case "FAK":
		return book.FillAndKill, nil
	case "FOK":
		return book.FillOrKill, nil
	case "GFD":
		return book.GoodForDay, nil
	case "MKT":
		return book.Market, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", t)
	}
}

func toTradeMsgs(trades []book.Trade) []TradeMsg {
	out := make([]TradeMsg, len(trades))
	for i, tr := range trades {
		out[i] = TradeMsg{
			BidOrder: tr.Bid.OrderID,
			AskOrder: tr.Ask.OrderID,
			Price:    tr.Ask.Price,
			Quantity: tr.Ask.Quantity,
		}
	}
	return out
}

func toLevelMsgs(levels []book.LevelInfo) []LevelMsg {
	out := make([]LevelMsg, len(levels))
	for i, l := range levels {
		out[i] = LevelMsg{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	return out
}
