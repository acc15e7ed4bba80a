package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/btcrelay/internal/metrics"
	rpcclient2 "github.com/goodnatureofminers/btcrelay/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/btcrelay/internal/relay/archive"
	"github.com/goodnatureofminers/btcrelay/internal/relay/archive/clickhouse"
	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/goodnatureofminers/btcrelay/internal/relay/service"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store/boltdb"
	"github.com/goodnatureofminers/btcrelay/internal/relayer"
	"github.com/goodnatureofminers/btcrelay/internal/transport"
	"github.com/goodnatureofminers/btcrelay/pkg/batcher"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type config struct {
	Network                 model.Network `long:"network" env:"BTCRELAY_NETWORK" description:"network name" choice:"mainnet" choice:"testnet3" choice:"signet" choice:"regtest" default:"mainnet"`
	DataDir                 string        `long:"data-dir" env:"BTCRELAY_DATA_DIR" description:"directory of the header store" default:"data"`
	ConfirmationDepth       uint32        `long:"confirmation-depth" env:"BTCRELAY_CONFIRMATION_DEPTH" description:"confirmations required when a caller asks for none" default:"6"`
	StableConfirmationDepth uint32        `long:"stable-confirmation-depth" env:"BTCRELAY_STABLE_CONFIRMATION_DEPTH" description:"floor on every requested confirmation depth"`
	PruneDepth              uint32        `long:"prune-depth" env:"BTCRELAY_PRUNE_DEPTH" description:"blocks a stale fork may trail the best header before removal, 0 keeps forks" default:"144"`
	RetargetInterval        uint32        `long:"retarget-interval" env:"BTCRELAY_RETARGET_INTERVAL" description:"override of the difficulty adjustment period"`
	DisableDifficultyCheck  bool          `long:"disable-difficulty-check" env:"BTCRELAY_DISABLE_DIFFICULTY_CHECK" description:"accept any bits within the proof-of-work limit"`

	Addr        string `long:"addr" env:"BTCRELAY_ADDR" description:"gRPC address" default:":8000"`
	RestAddr    string `long:"rest-addr" env:"BTCRELAY_REST_ADDR" description:"REST address" default:":8001"`
	MetricsAddr string `long:"metrics-addr" env:"BTCRELAY_METRICS_ADDR" description:"address for metrics server" default:":2112"`

	ClickhouseDSN        string        `long:"clickhouse-dsn" env:"BTCRELAY_CLICKHOUSE_DSN" description:"ClickHouse DSN of the event archive, empty disables archiving"`
	ArchiveBatchSize     int           `long:"archive-batch-size" env:"BTCRELAY_ARCHIVE_BATCH_SIZE" description:"events per archive write" default:"1000"`
	ArchiveFlushInterval time.Duration `long:"archive-flush-interval" env:"BTCRELAY_ARCHIVE_FLUSH_INTERVAL" description:"maximum delay of an archive write" default:"1s"`

	RPCURL          string `long:"rpc-url" env:"BTCRELAY_RPC_URL" description:"Bitcoin RPC URL, empty disables the relayer"`
	RPCUser         string `long:"rpc-user" env:"BTCRELAY_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword     string `long:"rpc-password" env:"BTCRELAY_RPC_PASSWORD" description:"Bitcoin RPC password"`
	ZMQAddr         string `long:"zmq-addr" env:"BTCRELAY_ZMQ_ADDR" description:"bitcoind zmqpubhashblock endpoint"`
	Bootstrap       bool   `long:"bootstrap" env:"BTCRELAY_BOOTSTRAP" description:"initialize an empty relay from the node at --anchor-height"`
	AnchorHeight    uint32 `long:"anchor-height" env:"BTCRELAY_ANCHOR_HEIGHT" description:"height of the trust anchor used by --bootstrap"`
	RelayerBatch    int    `long:"relayer-batch-size" env:"BTCRELAY_RELAYER_BATCH_SIZE" description:"headers per relay submission" default:"500"`
	RelayerWorkers  int    `long:"relayer-workers" env:"BTCRELAY_RELAYER_WORKERS" description:"concurrent node requests" default:"8"`
	RelayerCacheLen int    `long:"relayer-cache-size" env:"BTCRELAY_RELAYER_CACHE_SIZE" description:"raw headers cached by block hash" default:"4096"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("relay failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	backend, err := boltdb.Open(filepath.Join(cfg.DataDir, fmt.Sprintf("relay-%s.db", cfg.Network)), metrics.NewStoreBackend())
	if err != nil {
		return fmt.Errorf("open store backend: %w", err)
	}
	st, err := store.Open(ctx, backend, store.Config{PruneDepth: cfg.PruneDepth})
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	var (
		sink        service.EventSink
		archiveSink *archive.Sink
	)
	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("failed to close repository", zap.Error(err))
			}
		}()
		archiveSink = archive.NewSink(repo, batcher.Options{
			Size:     cfg.ArchiveBatchSize,
			Interval: cfg.ArchiveFlushInterval,
		}, logger.Named("archive"))
		archiveSink.Start(ctx)
		defer archiveSink.Stop()
		sink = archiveSink
	}

	relay, err := service.NewRelay(st, service.Config{
		Network:                 cfg.Network,
		ConfirmationDepth:       cfg.ConfirmationDepth,
		StableConfirmationDepth: cfg.StableConfirmationDepth,
		RetargetInterval:        cfg.RetargetInterval,
		DisableDifficultyCheck:  cfg.DisableDifficultyCheck,
	}, sink, metrics.NewRelay(cfg.Network), logger)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if archiveSink != nil && relay.Initialized() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := archiveSink.Backfill(ctx, relay, cfg.ArchiveBatchSize); err != nil && ctx.Err() == nil {
				logger.Error("archive backfill failed", zap.Error(err))
			}
		}()
	}

	if cfg.RPCURL != "" {
		follower, shutdown, err := newRelayer(ctx, cfg, relay, logger)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer shutdown()
			if err := follower.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("relayer stopped", zap.Error(err))
			}
		}()
	}

	if err := startGRPCServer(ctx, cfg.Addr, relay, logger); err != nil {
		return err
	}
	return serveREST(ctx, cfg.RestAddr, relay, logger)
}

func newRelayer(ctx context.Context, cfg config, relay *service.Relay, logger *zap.Logger) (*relayer.Relayer, func(), error) {
	client, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("init rpc client: %w", err)
	}
	shutdown := func() {
		client.Shutdown()
		client.WaitForShutdown()
	}

	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("init block signal: %w", err)
	}

	follower, err := relayer.New(
		relay,
		rpcclient2.NewObservedClient(client, metrics.NewRPCClient(cfg.Network)),
		metrics.NewRelayer(cfg.Network),
		relayer.Config{
			BatchSize:    cfg.RelayerBatch,
			WorkerCount:  cfg.RelayerWorkers,
			CacheSize:    cfg.RelayerCacheLen,
			Bootstrap:    cfg.Bootstrap,
			AnchorHeight: cfg.AnchorHeight,
		},
		logger,
		blockSignal,
	)
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return follower, shutdown, nil
}

func startGRPCServer(ctx context.Context, addr string, relay *service.Relay, logger *zap.Logger) error {
	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(grpcServer)

	reporter := transport.NewHealthReporter(relay, healthServer, 5*time.Second, logger)
	go reporter.Run(ctx)

	socket, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	go func() {
		logger.Info("starting gRPC server", zap.String("addr", addr))
		if err := grpcServer.Serve(socket); err != nil {
			logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down gRPC server")
		grpcServer.GracefulStop()
	}()
	return nil
}

func serveREST(ctx context.Context, addr string, relay *service.Relay, logger *zap.Logger) error {
	gw := gwruntime.NewServeMux()
	if _, err := transport.NewRelayHandler(relay, gw, logger); err != nil {
		return fmt.Errorf("register relay handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", gw)

	s := &http.Server{
		Addr:              addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting HTTP server", zap.String("addr", addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
