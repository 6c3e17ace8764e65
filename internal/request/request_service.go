package request

import (
	"context"
	"database/sql"
	"time"

	requesterrors "github.com/jamkie/appneoconcepto-sub000/internal/request/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdvanceLedger is the slice of the advance service this ledger needs to
// reverse an application.
type AdvanceLedger interface {
	RestoreFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
}

// BalanceLedger is the slice of the balance service this ledger needs to
// reverse a deduction.
type BalanceLedger interface {
	Restore(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, companyID, actorID string, req SubmitRequestRequest) (RequestResponse, error)
	Approve(ctx context.Context, companyID, approverID, id string) (RequestResponse, error)
	Reject(ctx context.Context, companyID, id, reason string) (RequestResponse, error)
	AssignToPeriod(ctx context.Context, companyID, id, periodID string) (RequestResponse, error)
	// Remove detaches an assigned request from its period and reverses
	// the side effects its assignment produced. Synthetic rows are
	// deleted outright; submitted requests return to PENDING.
	Remove(ctx context.Context, companyID, id string) error
	// RemoveInTx is Remove running inside a caller-owned transaction.
	// Used by period close to expel excluded installers.
	RemoveInTx(ctx context.Context, tx *sql.Tx, companyID, id string, deleteEmptyPeriod bool) error
	Delete(ctx context.Context, companyID, id string) error
	GetAll(ctx context.Context, companyID string, q ListRequestsQuery) ([]RequestResponse, error)
	GetByID(ctx context.Context, companyID, id string) (RequestResponse, error)
	GetUnassignedApproved(ctx context.Context, companyID string) ([]RequestResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	advances AdvanceLedger
	balances BalanceLedger
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	advances AdvanceLedger,
	balances BalanceLedger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		advances: advances,
		balances: balances,
		logger:   l,
	}
}

func (s *service) Submit(
	ctx context.Context,
	companyID, actorID string,
	req SubmitRequestRequest,
) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit request requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("type", req.Type),
		zap.Int64("amount", req.Amount),
	)

	reqType := RequestType(req.Type)
	if !reqType.Submittable() {
		s.logger.Warn("submit request invalid type", zap.String("type", req.Type))
		return RequestResponse{}, requesterrors.ErrInvalidRequestType
	}
	if req.Amount <= 0 {
		return RequestResponse{}, requesterrors.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pr := &PaymentRequest{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(companyID),
		InstallerID: uuid.MustParse(req.InstallerID),
		ProjectID:   uuid.MustParse(req.ProjectID),
		Type:        reqType,
		Amount:      req.Amount,
		Status:      StatusPending,
		Notes:       req.Notes,
		CreatedBy:   uuid.MustParse(actorID),
	}

	if err := qtx.Create(ctx, pr); err != nil {
		s.logger.Error("submit request persist failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit request commit failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("submit request success",
		zap.String("request_id", rid),
		zap.String("payment_request_id", pr.ID.String()),
		zap.String("type", string(pr.Type)),
	)

	return mapToResponse(*pr), nil
}

func (s *service) Approve(ctx context.Context, companyID, approverID, id string) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve request requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("payment_request_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("approve request fetch failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}
	if pr.Status != StatusPending {
		s.logger.Warn("approve request not pending",
			zap.String("payment_request_id", id),
			zap.String("status", string(pr.Status)),
		)
		return RequestResponse{}, requesterrors.ErrNotPending
	}

	// Advances are credit against future earnings, not a project charge.
	if pr.Type != TypeAdvance {
		budget, err := qtx.GetProjectBudget(ctx, companyID, pr.ProjectID.String())
		if err != nil {
			s.logger.Error("approve request budget lookup failed", zap.Error(err))
			return RequestResponse{}, err
		}
		charges, err := qtx.SumApprovedProjectCharges(ctx, companyID, pr.ProjectID.String())
		if err != nil {
			s.logger.Error("approve request charges lookup failed", zap.Error(err))
			return RequestResponse{}, err
		}
		if pr.Amount > budget-charges {
			s.logger.Warn("approve request exceeds project budget",
				zap.String("payment_request_id", id),
				zap.Int64("amount", pr.Amount),
				zap.Int64("remaining_budget", budget-charges),
			)
			return RequestResponse{}, requesterrors.ErrBudgetExceeded
		}
	}

	approver := uuid.MustParse(approverID)
	now := time.Now().UTC()
	pr.Status = StatusApproved
	pr.ApprovedBy = &approver
	pr.ApprovedAt = &now
	pr.RejectionReason = nil

	if err := qtx.Update(ctx, pr); err != nil {
		s.logger.Error("approve request persist failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("approve request success",
		zap.String("request_id", rid),
		zap.String("payment_request_id", id),
	)

	return mapToResponse(*pr), nil
}

func (s *service) Reject(ctx context.Context, companyID, id, reason string) (RequestResponse, error) {
	s.logger.Debug("reject request requested",
		zap.String("company_id", companyID),
		zap.String("payment_request_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reject request fetch failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}
	if pr.Status != StatusPending {
		return RequestResponse{}, requesterrors.ErrNotPending
	}

	pr.Status = StatusRejected
	pr.RejectionReason = &reason

	if err := qtx.Update(ctx, pr); err != nil {
		s.logger.Error("reject request persist failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("reject request success", zap.String("payment_request_id", id))

	return mapToResponse(*pr), nil
}

func (s *service) AssignToPeriod(ctx context.Context, companyID, id, periodID string) (RequestResponse, error) {
	s.logger.Debug("assign request requested",
		zap.String("company_id", companyID),
		zap.String("payment_request_id", id),
		zap.String("period_id", periodID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("assign request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("assign request fetch failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}
	if pr.Status != StatusApproved {
		return RequestResponse{}, requesterrors.ErrNotApproved
	}
	if pr.SettlementPeriodID != nil {
		return RequestResponse{}, requesterrors.ErrAlreadyAssigned
	}

	periodStatus, err := qtx.GetPeriodStatus(ctx, companyID, periodID)
	if err != nil {
		s.logger.Error("assign request period lookup failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if periodStatus == "" {
		return RequestResponse{}, requesterrors.ErrPeriodNotFound
	}
	if periodStatus != "OPEN" {
		s.logger.Warn("assign request period not open",
			zap.String("period_id", periodID),
			zap.String("period_status", periodStatus),
		)
		return RequestResponse{}, requesterrors.ErrPeriodNotOpen
	}

	period := uuid.MustParse(periodID)
	pr.SettlementPeriodID = &period

	if err := qtx.Update(ctx, pr); err != nil {
		s.logger.Error("assign request persist failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("assign request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("assign request success",
		zap.String("payment_request_id", id),
		zap.String("period_id", periodID),
	)

	return mapToResponse(*pr), nil
}

func (s *service) Remove(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("remove request begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.RemoveInTx(ctx, tx, companyID, id, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("remove request commit failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) RemoveInTx(ctx context.Context, tx *sql.Tx, companyID, id string, deleteEmptyPeriod bool) error {
	s.logger.Debug("remove request requested",
		zap.String("company_id", companyID),
		zap.String("payment_request_id", id),
	)

	qtx := s.repo.WithTx(tx)

	pr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("remove request fetch failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if pr.SettlementPeriodID == nil {
		return requesterrors.ErrNotAssigned
	}
	periodID := pr.SettlementPeriodID.String()
	installerID := pr.InstallerID.String()

	switch pr.Type {
	case TypeWork, TypeExtra, TypeAdvance:
		pr.SettlementPeriodID = nil
		pr.Status = StatusPending
		pr.ApprovedBy = nil
		pr.ApprovedAt = nil
		if err := qtx.Update(ctx, pr); err != nil {
			s.logger.Error("remove request persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}
	case TypeBalanceDeduction:
		if err := s.balances.Restore(ctx, tx, companyID, installerID, pr.Amount); err != nil {
			s.logger.Error("remove request balance restore failed", zap.Error(err))
			return err
		}
		if err := qtx.Delete(ctx, companyID, id); err != nil {
			s.logger.Error("remove request delete synthetic failed", zap.Error(err))
			return mapRepositoryError(err)
		}
	case TypeAdvanceApplication:
		if err := s.advances.RestoreFIFO(ctx, tx, companyID, installerID, pr.Amount); err != nil {
			s.logger.Error("remove request advance restore failed", zap.Error(err))
			return err
		}
		if err := qtx.Delete(ctx, companyID, id); err != nil {
			s.logger.Error("remove request delete synthetic failed", zap.Error(err))
			return mapRepositoryError(err)
		}
	default:
		return requesterrors.ErrInvalidRequestType
	}

	if deleteEmptyPeriod {
		if err := s.deletePeriodIfEmpty(ctx, qtx, companyID, periodID); err != nil {
			return err
		}
	}

	s.logger.Info("remove request success",
		zap.String("payment_request_id", id),
		zap.String("period_id", periodID),
		zap.String("type", string(pr.Type)),
	)
	return nil
}

func (s *service) deletePeriodIfEmpty(ctx context.Context, qtx Repository, companyID, periodID string) error {
	count, err := qtx.CountByPeriod(ctx, companyID, periodID)
	if err != nil {
		s.logger.Error("remove request count period failed", zap.Error(err))
		return err
	}
	if count > 0 {
		return nil
	}

	total, err := qtx.GetPeriodTotalAmount(ctx, companyID, periodID)
	if err != nil {
		s.logger.Error("remove request period total lookup failed", zap.Error(err))
		return err
	}
	if total != 0 {
		return nil
	}

	if err := qtx.DeletePeriod(ctx, companyID, periodID); err != nil {
		s.logger.Error("remove request delete empty period failed", zap.Error(err))
		return err
	}

	s.logger.Info("empty settlement period deleted", zap.String("period_id", periodID))
	return nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	s.logger.Debug("delete request requested",
		zap.String("company_id", companyID),
		zap.String("payment_request_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete request begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete request fetch failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if pr.Status != StatusPending || pr.SettlementPeriodID != nil {
		return requesterrors.ErrDeleteNotAllowed
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete request failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete request commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete request success", zap.String("payment_request_id", id))
	return nil
}

func (s *service) GetAll(ctx context.Context, companyID string, q ListRequestsQuery) ([]RequestResponse, error) {
	s.logger.Debug("get all requests requested", zap.String("company_id", companyID))
	reqs, err := s.repo.FindAllByCompany(ctx, companyID, q)
	if err != nil {
		s.logger.Error("get all requests failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(reqs), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (RequestResponse, error) {
	pr, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get request by id failed", zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*pr), nil
}

func (s *service) GetUnassignedApproved(ctx context.Context, companyID string) ([]RequestResponse, error) {
	reqs, err := s.repo.FindUnassignedApproved(ctx, companyID)
	if err != nil {
		s.logger.Error("get unassigned approved requests failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(reqs), nil
}

func mapToResponse(pr PaymentRequest) RequestResponse {
	resp := RequestResponse{
		ID:          pr.ID.String(),
		InstallerID: pr.InstallerID.String(),
		ProjectID:   pr.ProjectID.String(),
		Type:        string(pr.Type),
		Amount:      pr.Amount,
		Status:      string(pr.Status),
		Notes:       pr.Notes,
		CreatedBy:   pr.CreatedBy.String(),
		CreatedAt:   pr.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if pr.SettlementPeriodID != nil {
		resp.PeriodID = pr.SettlementPeriodID.String()
	}
	if pr.ApprovedBy != nil {
		resp.ApprovedBy = pr.ApprovedBy.String()
	}
	if pr.ApprovedAt != nil {
		resp.ApprovedAt = pr.ApprovedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if pr.RejectionReason != nil {
		resp.RejectionReason = *pr.RejectionReason
	}
	return resp
}

func mapToListResponse(reqs []PaymentRequest) []RequestResponse {
	res := make([]RequestResponse, len(reqs))
	for i, pr := range reqs {
		res[i] = mapToResponse(pr)
	}
	return res
}
