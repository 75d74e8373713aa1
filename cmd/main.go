package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/charts"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/dashboard"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/staff"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/store"
)

const (
	shutdownTimeout     = 5 * time.Second
	publishMaxAttempts  = 3
	publishRetryBackoff = 200 * time.Millisecond
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	client := api.New(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		SessionID: cfg.SessionID,
		CSRFToken: cfg.CSRFToken,
	}, log.Named("api"))

	staffFlag := staff.NewProvider(client, log.Named("staff"))
	staffFlag.Mount()
	defer staffFlag.Close()

	orders := dashboard.NewOrderList(client, staffFlag, store.NewPageStore(), log.Named("orders"))
	orders.Mount()
	defer orders.Close()

	ordersPerDay := charts.NewOrdersPerDay(client, log.Named("charts"))
	ordersPerDay.Mount()
	defer ordersPerDay.Close()

	mostBought := charts.NewMostBoughtProducts(client, log.Named("charts"))
	mostBought.Mount()
	defer mostBought.Close()

	var producer kafka.Producer
	if len(cfg.KafkaBroker) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBroker, log.Named("kafka"))
	} else {
		producer = kafka.NewConsoleProducer(log.Named("kafka"))
	}
	publisher := kafka.NewPublisher(producer, kafka.PublisherConfig{
		Topic:        cfg.KafkaTopic,
		MaxAttempts:  publishMaxAttempts,
		RetryBackoff: publishRetryBackoff,
	}, log.Named("kafka"))
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close audit publisher", zap.Error(err))
		}
	}()

	audit := server.NewAuditManager(cfg.Audit, server.NewPublisherSink(publisher), log.Named("audit"))

	srv := server.New(orders, staffFlag, map[string]server.Chart{
		"orders-per-day":       ordersPerDay,
		"most-bought-products": mostBought,
	}, audit, log.Named("server"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("dashboard stopped with error", zap.Error(err))
		return
	}
	log.Info("dashboard gracefully stopped")
}
