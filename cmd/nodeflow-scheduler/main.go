package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Nodeflow/internal/executor"
	"github.com/shaiso/Nodeflow/internal/mq"
	"github.com/shaiso/Nodeflow/internal/nodes"
	"github.com/shaiso/Nodeflow/internal/providers"
	"github.com/shaiso/Nodeflow/internal/repo"
	"github.com/shaiso/Nodeflow/internal/scheduler"
	"github.com/shaiso/Nodeflow/internal/store"
	"github.com/shaiso/Nodeflow/internal/telemetry"
)

// Advisory lock: при нескольких экземплярах тикает только лидер.
const schedLockKey int64 = 77031

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting nodeflow-scheduler")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	dbStore := repo.NewStore(pool)

	// RabbitMQ опционален
	var events executor.EventSink
	var chainEvents executor.ChainEventSink
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		amqpURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(amqpURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, state events disabled", "error", err)
	} else {
		defer conn.Close()
		publisher := mq.NewPublisher(conn, logger)
		events = publisher
		chainEvents = publisher
	}

	factory := providers.NewFactory(providers.Config{
		OllamaURL:     os.Getenv("OLLAMA_URL"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
	})

	registry := nodes.DefaultRegistry(nodes.Options{
		Providers: factory,
		Publisher: store.NewContentStore(),
	})

	flowExec := executor.NewFlowExecutor(executor.FlowExecutorConfig{
		Registry: registry,
		Events:   events,
	})
	chainExec := executor.NewChainExecutor(executor.ChainExecutorConfig{
		Flows:  flowExec,
		Store:  dbStore,
		Events: chainEvents,
	})

	sched := scheduler.New(scheduler.Config{
		Schedules: dbStore.Schedules,
		Chains:    dbStore.Chains,
		ChainExec: chainExec,
		Logger:    logger,
	})

	// Цикл планировщика за advisory lock: лидерство держит один процесс
	go func() {
		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", schedLockKey)
			}
		}()

		for !hasLock {
			if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", schedLockKey).Scan(&hasLock); err != nil {
				logger.Error("advisory lock failed", "error", err)
			}
			if hasLock {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}

		logger.Info("scheduler leadership acquired")
		if err := sched.Run(ctx, tickInterval()); err != nil && ctx.Err() == nil {
			logger.Error("scheduler stopped", "error", err)
			cancel()
		}
	}()

	// HTTP: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

func tickInterval() time.Duration {
	if v := os.Getenv("SCHED_TICK_SEC"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			return d
		}
	}
	return 15 * time.Second
}
