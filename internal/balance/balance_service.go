package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "github.com/jamkie/appneoconcepto-sub000/internal/balance/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	// ApplyDeduction subtracts from the installer's balance and books a
	// synthetic APPROVED BALANCE_DEDUCTION request into the open period,
	// in one tx. The subtraction happens here so removing the request
	// (or reopening the period) can restore it exactly.
	ApplyDeduction(ctx context.Context, companyID, actorID string, req ApplyDeductionRequest) (ApplyDeductionResponse, error)
	GetByInstaller(ctx context.Context, companyID, installerID string) (BalanceResponse, error)

	// Ledger operations, run inside a caller-owned transaction.
	Restore(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	Overwrite(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	DecreaseClamped(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) ApplyDeduction(
	ctx context.Context,
	companyID, actorID string,
	req ApplyDeductionRequest,
) (ApplyDeductionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply deduction requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("installer_id", req.InstallerID),
		zap.Int64("amount", req.Amount),
	)

	if req.Amount <= 0 {
		return ApplyDeductionResponse{}, balanceerrors.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply deduction begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyDeductionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	periodID, err := qtx.FindOpenPeriodID(ctx, companyID)
	if err != nil {
		s.logger.Error("apply deduction open period lookup failed", zap.Error(err))
		return ApplyDeductionResponse{}, err
	}
	if periodID == "" {
		s.logger.Warn("apply deduction no open period", zap.String("company_id", companyID))
		return ApplyDeductionResponse{}, balanceerrors.ErrNoOpenPeriod
	}

	b, err := qtx.FindByInstaller(ctx, companyID, req.InstallerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplyDeductionResponse{}, balanceerrors.ErrInsufficientBalance
		}
		s.logger.Error("apply deduction balance lookup failed", zap.Error(err))
		return ApplyDeductionResponse{}, err
	}
	if b.AccumulatedAmount < req.Amount {
		s.logger.Warn("apply deduction exceeds balance",
			zap.String("installer_id", req.InstallerID),
			zap.Int64("balance", b.AccumulatedAmount),
			zap.Int64("requested", req.Amount),
		)
		return ApplyDeductionResponse{}, balanceerrors.ErrInsufficientBalance
	}

	b.AccumulatedAmount -= req.Amount
	if err := qtx.Upsert(ctx, b); err != nil {
		s.logger.Error("apply deduction persist failed", zap.Error(err))
		return ApplyDeductionResponse{}, err
	}

	requestID, err := qtx.CreateDeductionRequest(
		ctx, companyID, req.InstallerID, req.ProjectID, periodID, actorID, req.Amount, req.Notes,
	)
	if err != nil {
		s.logger.Error("apply deduction create request failed", zap.Error(err))
		return ApplyDeductionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply deduction commit failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyDeductionResponse{}, err
	}

	s.logger.Info("apply deduction success",
		zap.String("request_id", rid),
		zap.String("installer_id", req.InstallerID),
		zap.String("deduction_request_id", requestID),
		zap.Int64("amount", req.Amount),
	)

	return ApplyDeductionResponse{
		RequestID:        requestID,
		InstallerID:      req.InstallerID,
		PeriodID:         periodID,
		Amount:           req.Amount,
		RemainingBalance: b.AccumulatedAmount,
	}, nil
}

func (s *service) GetByInstaller(ctx context.Context, companyID, installerID string) (BalanceResponse, error) {
	s.logger.Debug("get balance requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", installerID),
	)

	b, err := s.repo.FindByInstaller(ctx, companyID, installerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent row reads as zero debt.
			return BalanceResponse{InstallerID: installerID, AccumulatedAmount: 0}, nil
		}
		s.logger.Error("get balance failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	return BalanceResponse{
		InstallerID:       installerID,
		AccumulatedAmount: b.AccumulatedAmount,
	}, nil
}

func (s *service) Restore(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error {
	if amount <= 0 {
		return balanceerrors.ErrInvalidAmount
	}

	qtx := s.repo.WithTx(tx)

	current, err := s.currentAmount(ctx, qtx, companyID, installerID)
	if err != nil {
		return err
	}

	if err := s.upsertAmount(ctx, qtx, companyID, installerID, current+amount); err != nil {
		s.logger.Error("restore balance persist failed", zap.Error(err))
		return err
	}

	s.logger.Info("balance restored",
		zap.String("installer_id", installerID),
		zap.Int64("amount", amount),
	)
	return nil
}

func (s *service) Overwrite(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error {
	if amount < 0 {
		return balanceerrors.ErrInvalidAmount
	}

	if err := s.upsertAmount(ctx, s.repo.WithTx(tx), companyID, installerID, amount); err != nil {
		s.logger.Error("overwrite balance persist failed", zap.Error(err))
		return err
	}

	s.logger.Info("balance overwritten",
		zap.String("installer_id", installerID),
		zap.Int64("amount", amount),
	)
	return nil
}

func (s *service) DecreaseClamped(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error {
	if amount <= 0 {
		return balanceerrors.ErrInvalidAmount
	}

	qtx := s.repo.WithTx(tx)

	current, err := s.currentAmount(ctx, qtx, companyID, installerID)
	if err != nil {
		return err
	}

	next := current - amount
	if next < 0 {
		next = 0
	}

	if err := s.upsertAmount(ctx, qtx, companyID, installerID, next); err != nil {
		s.logger.Error("decrease balance persist failed", zap.Error(err))
		return err
	}

	s.logger.Info("balance decreased",
		zap.String("installer_id", installerID),
		zap.Int64("amount", current-next),
	)
	return nil
}

func (s *service) currentAmount(ctx context.Context, qtx Repository, companyID, installerID string) (int64, error) {
	b, err := qtx.FindByInstaller(ctx, companyID, installerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		s.logger.Error("balance lookup failed", zap.Error(err))
		return 0, err
	}
	return b.AccumulatedAmount, nil
}

func (s *service) upsertAmount(ctx context.Context, qtx Repository, companyID, installerID string, amount int64) error {
	return qtx.Upsert(ctx, &Balance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		InstallerID:       uuid.MustParse(installerID),
		AccumulatedAmount: amount,
	})
}
