package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kabir-fx/abhiraksha/internal/app"
	"github.com/kabir-fx/abhiraksha/internal/async"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/ingest"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
	"github.com/kabir-fx/abhiraksha/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("claimsd exited", "error", err)
		os.Exit(1)
	}
	logger.Info("claimsd stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	m := metrics.New(metrics.Namespace)
	deps, err := app.Build(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := deps.Ready(ctx); err != nil {
		return fmt.Errorf("policy store health: %w", err)
	}

	router := server.NewRouter(server.HTTPOptions{
		Claims:         deps.Processor,
		Metrics:        m,
		Logger:         logger,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		MaxUploadMB:    cfg.Server.MaxUploadMB,
		Ready:          deps.Ready,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, health := server.NewGRPCServer(deps.Processor, logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}

	var pool *async.WorkerPool
	var inbox *ingest.Inbox
	if cfg.Inbox.Dir != "" {
		inbox = ingest.NewInbox(cfg.Inbox.Dir, cfg.Inbox.OutDir, cfg.Inbox.Debounce, deps.Processor, logger)
		if err := inbox.Prepare(); err != nil {
			return err
		}
		pool = async.NewWorkerPool(inbox.Handle,
			async.WithWorkers(cfg.Inbox.Workers),
			async.WithQueueSize(cfg.Inbox.QueueSize),
			async.WithProcessTimeout(3*time.Minute),
			async.WithLogger(logger),
			async.WithDepthObserver(m.SetInboxQueueSize),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	if inbox != nil {
		g.Go(func() error {
			logger.Info("inbox watching", "dir", inbox.Dir, "out", inbox.OutDir)
			if err := inbox.Run(gctx, pool); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("inbox: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if pool != nil {
			pool.Shutdown(shutdownCtx)
		}
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
