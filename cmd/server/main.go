package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"mako/api/grpcserver"
	"mako/domain/book"
	"mako/infra/kafka"
	"mako/infra/outbox"
	"mako/infra/sequence"
	"mako/infra/tape"
	"mako/jobs/broadcaster"
	"mako/jobs/depth"
	"mako/service"
)

func main() {
	var (
		listen        = flag.String("listen", ":50051", "gRPC listen address")
		dataDir       = flag.String("data", "./data", "data directory (tape, outbox)")
		brokers       = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
		tradeTopic    = flag.String("trade-topic", "trades", "Kafka topic for executed trades")
		depthTopic    = flag.String("depth-topic", "depth", "Kafka topic for depth snapshots")
		instrument    = flag.String("instrument", "MAKO-USD", "instrument identifier")
		cutoffHour    = flag.Int("cutoff-hour", book.DefaultCutoffHour, "local hour at which GoodForDay orders are purged")
		depthLevels   = flag.Int("depth-levels", 10, "levels per side in depth snapshots")
		depthInterval = flag.Duration("depth-interval", time.Second, "depth publish interval")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	brokerList := strings.Split(*brokers, ",")

	// ---------------- Storage ----------------

	tp, err := tape.Open(tape.Config{Dir: filepath.Join(*dataDir, "tape")})
	if err != nil {
		log.Fatal("tape init failed", zap.Error(err))
	}
	defer tp.Close()

	ob, err := outbox.Open(filepath.Join(*dataDir, "outbox"))
	if err != nil {
		log.Fatal("outbox init failed", zap.Error(err))
	}
	defer ob.Close()

	// ---------------- Domain ----------------

	b := book.New(book.Config{CutoffHour: *cutoffHour})
	defer b.Close()

	svc := service.NewOrderService(b, sequence.New(0), tp, ob, log)

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bc, err := broadcaster.New(broadcaster.Config{
		Brokers: brokerList,
		Topic:   *tradeTopic,
	}, ob, log)
	if err != nil {
		log.Fatal("broadcaster init failed", zap.Error(err))
	}
	defer bc.Close()
	go bc.Run(ctx)

	depthProducer := kafka.NewProducer(brokerList, *depthTopic)
	defer depthProducer.Close()
	pub := depth.New(depth.Config{
		Instrument: *instrument,
		Depth:      *depthLevels,
		Interval:   *depthInterval,
	}, svc, depthProducer, log)
	go pub.Run(ctx)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatal("listen failed", zap.Error(err))
	}

	grpcSrv := grpc.NewServer()
	grpcserver.RegisterOrderServiceServer(grpcSrv, grpcserver.NewServer(svc, log))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		grpcSrv.GracefulStop()
		cancel()
	}()

	log.Info("matching engine running",
		zap.String("listen", *listen),
		zap.String("instrument", *instrument),
	)
	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatal("gRPC server exited", zap.Error(err))
	}
}
