package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Nodeflow/internal/api"
	"github.com/shaiso/Nodeflow/internal/executor"
	"github.com/shaiso/Nodeflow/internal/mq"
	"github.com/shaiso/Nodeflow/internal/nodes"
	"github.com/shaiso/Nodeflow/internal/providers"
	"github.com/shaiso/Nodeflow/internal/repo"
	"github.com/shaiso/Nodeflow/internal/store"
	"github.com/shaiso/Nodeflow/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting nodeflow-server")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	dbStore := repo.NewStore(pool)

	// RabbitMQ опционален: без него события просто не публикуются
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
		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			logger.Warn("rabbitmq topology setup failed", "error", err)
		}
		publisher := mq.NewPublisher(conn, logger)
		events = publisher
		chainEvents = publisher
		logger.Info("connected to rabbitmq")
	}

	// LLM-провайдеры
	factory := providers.NewFactory(providers.Config{
		OllamaURL:     os.Getenv("OLLAMA_URL"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
	})

	// Контент output-узлов живёт в памяти процесса
	content := store.NewContentStore()

	registry := nodes.DefaultRegistry(nodes.Options{
		Providers: factory,
		Publisher: content,
	})
	logger.Info("node registry ready", "types", registry.Types())

	flowExec := executor.NewFlowExecutor(executor.FlowExecutorConfig{
		Registry: registry,
		Events:   events,
	})
	chainExec := executor.NewChainExecutor(executor.ChainExecutorConfig{
		Flows:  flowExec,
		Store:  dbStore,
		Events: chainEvents,
	})

	handler := api.NewHandler(api.Config{
		Store:     dbStore,
		FlowExec:  flowExec,
		ChainExec: chainExec,
		Content:   content,
		Logger:    logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
