package advance

import (
	"context"
	"database/sql"

	advanceerrors "github.com/jamkie/appneoconcepto-sub000/internal/advance/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=advance_service.go -destination=mock/advance_service_mock.go -package=mock
type Service interface {
	// Apply draws down available credit and books a synthetic APPROVED
	// ADVANCE_APPLICATION request into the open period, in one tx.
	Apply(ctx context.Context, companyID, actorID string, req ApplyAdvanceRequest) (ApplyAdvanceResponse, error)
	GetInstallerCredit(ctx context.Context, companyID, installerID string) (InstallerCreditResponse, error)

	// Ledger operations, run inside a caller-owned transaction.
	IssueAvailableCredit(ctx context.Context, tx *sql.Tx, companyID, installerID, projectID, sourceRequestID string, amount int64) error
	ConsumeFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	RestoreFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	DeleteBySourceRequests(ctx context.Context, tx *sql.Tx, companyID string, sourceRequestIDs []string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("advance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("advance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Apply(
	ctx context.Context,
	companyID, actorID string,
	req ApplyAdvanceRequest,
) (ApplyAdvanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply advance requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("installer_id", req.InstallerID),
		zap.Int64("amount", req.Amount),
	)

	if req.Amount <= 0 {
		return ApplyAdvanceResponse{}, advanceerrors.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply advance begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyAdvanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	periodID, err := qtx.FindOpenPeriodID(ctx, companyID)
	if err != nil {
		s.logger.Error("apply advance open period lookup failed", zap.Error(err))
		return ApplyAdvanceResponse{}, err
	}
	if periodID == "" {
		s.logger.Warn("apply advance no open period", zap.String("company_id", companyID))
		return ApplyAdvanceResponse{}, advanceerrors.ErrNoOpenPeriod
	}

	if err := s.consumeFIFO(ctx, qtx, companyID, req.InstallerID, req.Amount); err != nil {
		return ApplyAdvanceResponse{}, err
	}

	requestID, err := qtx.CreateApplicationRequest(
		ctx, companyID, req.InstallerID, req.ProjectID, periodID, actorID, req.Amount, req.Notes,
	)
	if err != nil {
		s.logger.Error("apply advance create application request failed", zap.Error(err))
		return ApplyAdvanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply advance commit failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyAdvanceResponse{}, err
	}

	s.logger.Info("apply advance success",
		zap.String("request_id", rid),
		zap.String("installer_id", req.InstallerID),
		zap.String("application_request_id", requestID),
		zap.Int64("amount", req.Amount),
	)

	return ApplyAdvanceResponse{
		RequestID:   requestID,
		InstallerID: req.InstallerID,
		PeriodID:    periodID,
		Amount:      req.Amount,
	}, nil
}

func (s *service) GetInstallerCredit(ctx context.Context, companyID, installerID string) (InstallerCreditResponse, error) {
	s.logger.Debug("get installer credit requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", installerID),
	)

	advances, err := s.repo.ListByInstallerFIFO(ctx, companyID, installerID)
	if err != nil {
		s.logger.Error("get installer credit failed", zap.Error(err))
		return InstallerCreditResponse{}, err
	}

	resp := InstallerCreditResponse{
		InstallerID: installerID,
		Advances:    make([]AdvanceResponse, len(advances)),
	}
	for i, adv := range advances {
		resp.TotalAvailable += adv.AvailableAmount
		resp.Advances[i] = mapToResponse(adv)
	}
	return resp, nil
}

func (s *service) IssueAvailableCredit(
	ctx context.Context,
	tx *sql.Tx,
	companyID, installerID, projectID, sourceRequestID string,
	amount int64,
) error {
	if amount <= 0 {
		return advanceerrors.ErrInvalidAmount
	}

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.ExistsBySourceRequest(ctx, companyID, sourceRequestID)
	if err != nil {
		s.logger.Error("issue credit source lookup failed", zap.Error(err))
		return err
	}
	if exists {
		// Idempotent across repeated closes of the same period.
		s.logger.Debug("issue credit skipped, advance already exists",
			zap.String("source_request_id", sourceRequestID),
		)
		return nil
	}

	adv := &Advance{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(companyID),
		InstallerID:     uuid.MustParse(installerID),
		ProjectID:       uuid.MustParse(projectID),
		OriginalAmount:  amount,
		AvailableAmount: amount,
		SourceRequestID: uuid.MustParse(sourceRequestID),
	}
	if err := qtx.Create(ctx, adv); err != nil {
		s.logger.Error("issue credit persist failed", zap.Error(err))
		return err
	}

	s.logger.Info("advance credit issued",
		zap.String("installer_id", installerID),
		zap.String("source_request_id", sourceRequestID),
		zap.Int64("amount", amount),
	)
	return nil
}

func (s *service) ConsumeFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error {
	return s.consumeFIFO(ctx, s.repo.WithTx(tx), companyID, installerID, amount)
}

func (s *service) consumeFIFO(ctx context.Context, qtx Repository, companyID, installerID string, amount int64) error {
	if amount <= 0 {
		return advanceerrors.ErrInvalidAmount
	}

	advances, err := qtx.ListByInstallerFIFO(ctx, companyID, installerID)
	if err != nil {
		s.logger.Error("consume advance list failed", zap.Error(err))
		return err
	}

	var available int64
	for _, adv := range advances {
		available += adv.AvailableAmount
	}
	if available < amount {
		s.logger.Warn("consume advance insufficient credit",
			zap.String("installer_id", installerID),
			zap.Int64("available", available),
			zap.Int64("requested", amount),
		)
		return advanceerrors.ErrInsufficientAdvance
	}

	remaining := amount
	for _, adv := range advances {
		if remaining == 0 {
			break
		}
		if adv.AvailableAmount == 0 {
			continue
		}
		take := adv.AvailableAmount
		if take > remaining {
			take = remaining
		}
		if err := qtx.UpdateAvailable(ctx, adv.ID.String(), adv.AvailableAmount-take); err != nil {
			s.logger.Error("consume advance update failed", zap.Error(err))
			return err
		}
		remaining -= take
	}

	s.logger.Info("advance credit consumed",
		zap.String("installer_id", installerID),
		zap.Int64("amount", amount),
	)
	return nil
}

// RestoreFIFO adds credit back oldest-first, clamped per advance at its
// original amount. Anything beyond total headroom is discarded.
func (s *service) RestoreFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error {
	if amount <= 0 {
		return advanceerrors.ErrInvalidAmount
	}

	qtx := s.repo.WithTx(tx)

	advances, err := qtx.ListByInstallerFIFO(ctx, companyID, installerID)
	if err != nil {
		s.logger.Error("restore advance list failed", zap.Error(err))
		return err
	}

	remaining := amount
	for _, adv := range advances {
		if remaining == 0 {
			break
		}
		headroom := adv.OriginalAmount - adv.AvailableAmount
		if headroom <= 0 {
			continue
		}
		give := headroom
		if give > remaining {
			give = remaining
		}
		if err := qtx.UpdateAvailable(ctx, adv.ID.String(), adv.AvailableAmount+give); err != nil {
			s.logger.Error("restore advance update failed", zap.Error(err))
			return err
		}
		remaining -= give
	}

	if remaining > 0 {
		s.logger.Warn("restore advance clamped",
			zap.String("installer_id", installerID),
			zap.Int64("discarded", remaining),
		)
	}

	s.logger.Info("advance credit restored",
		zap.String("installer_id", installerID),
		zap.Int64("amount", amount-remaining),
	)
	return nil
}

func (s *service) DeleteBySourceRequests(ctx context.Context, tx *sql.Tx, companyID string, sourceRequestIDs []string) error {
	if len(sourceRequestIDs) == 0 {
		return nil
	}
	if err := s.repo.WithTx(tx).DeleteBySourceRequests(ctx, companyID, sourceRequestIDs); err != nil {
		s.logger.Error("delete advances by source failed", zap.Error(err))
		return err
	}
	return nil
}

func mapToResponse(adv Advance) AdvanceResponse {
	return AdvanceResponse{
		ID:              adv.ID.String(),
		InstallerID:     adv.InstallerID.String(),
		ProjectID:       adv.ProjectID.String(),
		OriginalAmount:  adv.OriginalAmount,
		AvailableAmount: adv.AvailableAmount,
		SourceRequestID: adv.SourceRequestID.String(),
		CreatedAt:       adv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
