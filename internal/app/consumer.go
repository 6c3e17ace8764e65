package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamkie/appneoconcepto-sub000/internal/events"
	"github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka"
	"github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka/consumer"
	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/connection"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/counter"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer drives the payment dispatch trigger: it reads
// settlement-closed events and stamps the period's payment records.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	settlementRepo := settlement.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	settlementService := settlement.NewService(
		sqlDB, settlementRepo, counterRepo, outboxRepo,
		nil, nil, nil,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.SettlementClosedTopic,
		GroupID:        "settlement-payment-dispatch",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeSettlementClosed(ctx, reader, settlementService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
