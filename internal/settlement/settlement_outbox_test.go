package settlement_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jamkie/appneoconcepto-sub000/internal/events"
	"github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka"
	kafkamock "github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka/mock"
	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestSettlementService_CloseOutboxEvent(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	closerID := uuid.New().String()
	installerA := uuid.New()
	projectX := uuid.New()

	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	period := openPeriod(companyID)
	repo := &fakeSettlementRepository{
		findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*settlement.SettlementPeriod, error) {
			return period, nil
		},
		listPeriodRequestsFn: func(ctx context.Context, cid, periodID string) ([]settlement.PeriodRequest, error) {
			return []settlement.PeriodRequest{workRequest(installerA, projectX, 5000)}, nil
		},
		listInstallerInfoFn: func(ctx context.Context, cid string, ids []string) ([]settlement.InstallerInfo, error) {
			return []settlement.InstallerInfo{{ID: installerA, FullName: "Ana", WeeklySalary: 1200}}, nil
		},
	}

	outbox := kafkamock.NewMockOutboxRepository(ctrl)
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox)
	outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event kafka.OutboxEvent) error {
			assert.NoError(t, kafka.ValidateOutboxEvent(event))
			assert.Equal(t, events.SettlementClosedTopic, event.Topic)
			assert.Equal(t, "settlement_period", event.AggregateType)
			assert.Equal(t, period.ID.String(), event.AggregateID)

			var evt events.SettlementClosedEvent
			assert.NoError(t, json.Unmarshal(event.Payload, &evt))
			assert.Equal(t, "settlement.closed", evt.EventType)
			assert.Equal(t, period.ID.String(), evt.PeriodID)
			assert.Equal(t, closerID, evt.ClosedBy)
			assert.Equal(t, int64(3800), evt.TotalAmount)
			assert.Equal(t, 1, evt.Workers)
			return nil
		},
	)

	svc := settlement.NewService(
		db, repo, &fakeCounterRepository{}, outbox,
		&fakeRequestRemover{}, &fakeSettlementAdvanceLedger{}, &fakeSettlementBalanceLedger{},
	)

	resp, err := svc.Close(ctx, companyID, closerID, period.ID.String(), settlement.ClosePeriodRequest{Version: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(3800), resp.Deposited)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
