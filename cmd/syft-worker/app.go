package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/shaanrockz/PySyft/pkg/config"
	"github.com/shaanrockz/PySyft/pkg/observability"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/store"
	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/mem"
	"github.com/shaanrockz/PySyft/pkg/transport/tcp"
	"github.com/shaanrockz/PySyft/pkg/transport/ws"
	"github.com/shaanrockz/PySyft/pkg/worker"
)

func main() { os.Exit(run(ParseFlags(os.Args[1:]))) }

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("syft-worker started", zap.String("worker_id", cfg.WorkerID))
	zap.L().Info("effective configuration", zap.Any("config", cfg))

	format, err := serde.ParseFormat(cfg.Format)
	if err != nil {
		zap.L().Error("bad wire format", zap.Error(err))
		return 1
	}
	sctx := serde.NewContext(cfg.WorkerID).WithFormat(format)

	st := store.New(store.Options{
		Shards:     cfg.Store.Shards,
		MaxObjects: cfg.Store.MaxObjects,
	})
	w := worker.New(cfg.WorkerID, sctx, st, logger)
	w.Use(worker.RecoveryMiddleware(logger))
	if cfg.RateLimit.RPS > 0 {
		w.Use(worker.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	w.Use(worker.LoggingMiddleware(logger))

	// echo answers liveness probes; operations come from embedding code.
	_ = w.RegisterWorkerFunction("echo", func(_ context.Context, payload any) (any, error) {
		return payload, nil
	})

	registry := transport.NewRegistry(mem.New(), tcp.New(), ws.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, addr := range cfg.Listen {
		addr := addr
		l, err := registry.Listen(ctx, addr)
		if err != nil {
			zap.L().Error("listen failed", zap.String("addr", addr), zap.Error(err))
			stop()
			wg.Wait()
			return 1
		}
		zap.L().Info("listening", zap.String("addr", addr))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Serve(ctx, l); err != nil && ctx.Err() == nil {
				zap.L().Error("serve failed", zap.String("addr", addr), zap.Error(err))
			}
		}()
	}

	zap.L().Info("worker is running; press Ctrl+C to exit")
	<-ctx.Done()
	zap.L().Info("shutting down")
	stop()
	wg.Wait()
	return 0
}
