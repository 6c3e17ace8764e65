package consumer

import (
	"context"
	"encoding/json"

	"github.com/jamkie/appneoconcepto-sub000/internal/events"
	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeSettlementClosed(
	ctx context.Context,
	reader *kafkago.Reader,
	settlementService settlement.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.settlement_closed")
	log.Info("settlement closed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("settlement closed consumer stopped")
				return
			}
			log.Error("fetch settlement closed message failed", zap.Error(err))
			continue
		}

		var event events.SettlementClosedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode settlement closed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		dispatched, err := settlementService.DispatchPayments(ctx, event.CompanyID, event.PeriodID)
		if err != nil {
			log.Error("dispatch settlement payments failed",
				zap.String("period_id", event.PeriodID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit settlement closed message failed", zap.Error(err))
			continue
		}

		log.Info("settlement payments dispatched",
			zap.String("period_id", event.PeriodID),
			zap.String("company_id", event.CompanyID),
			zap.Int("payments", dispatched),
		)
	}
}
