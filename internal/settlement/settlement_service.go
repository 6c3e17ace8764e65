package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/events"
	"github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka"
	"github.com/jamkie/appneoconcepto-sub000/internal/request"
	settlementerrors "github.com/jamkie/appneoconcepto-sub000/internal/settlement/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	periodCounterType = "settlement_period"
	periodNameFormat  = "CORTE-%06d"

	defaultPaymentMethod = "TRANSFER"
)

// RequestRemover expels a request from its period with full side
// effect reversal. Satisfied by request.Service.
type RequestRemover interface {
	RemoveInTx(ctx context.Context, tx *sql.Tx, companyID, id string, deleteEmptyPeriod bool) error
}

// AdvanceLedger is the slice of the advance service the close/reopen
// steps drive.
type AdvanceLedger interface {
	IssueAvailableCredit(ctx context.Context, tx *sql.Tx, companyID, installerID, projectID, sourceRequestID string, amount int64) error
	RestoreFIFO(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	DeleteBySourceRequests(ctx context.Context, tx *sql.Tx, companyID string, sourceRequestIDs []string) error
}

// BalanceLedger is the slice of the balance service the close/reopen
// steps drive.
type BalanceLedger interface {
	Overwrite(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	Restore(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
	DecreaseClamped(ctx context.Context, tx *sql.Tx, companyID, installerID string, amount int64) error
}

//go:generate mockgen -source=settlement_service.go -destination=mock/settlement_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error)
	Rename(ctx context.Context, companyID, id string, req UpdatePeriodRequest) (PeriodResponse, error)
	Close(ctx context.Context, companyID, closerID, id string, req ClosePeriodRequest) (ClosePeriodResponse, error)
	Reopen(ctx context.Context, companyID, actorID, id string, req ReopenPeriodRequest) (PeriodResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	Summary(ctx context.Context, companyID, id string) (SummaryResponse, error)
	// DispatchPayments stamps the period's payment records dispatched.
	// Driven by the settlement-closed consumer.
	DispatchPayments(ctx context.Context, companyID, periodID string) (int, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	counterRepo counter.Repository
	outboxRepo  kafka.OutboxRepository
	requests    RequestRemover
	advances    AdvanceLedger
	balances    BalanceLedger
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	requests RequestRemover,
	advances AdvanceLedger,
	balances BalanceLedger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("settlement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("settlement.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		counterRepo: counterRepo,
		outboxRepo:  outboxRepo,
		requests:    requests,
		advances:    advances,
		balances:    balances,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create settlement period requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.Bool("auto_assign", req.AutoAssign),
	)

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return PeriodResponse{}, settlementerrors.ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return PeriodResponse{}, settlementerrors.ErrInvalidDateRange
	}
	if end.Before(start) {
		return PeriodResponse{}, settlementerrors.ErrInvalidDateRange
	}

	name := req.Name
	if name == "" {
		next, err := s.counterRepo.GetNextValue(ctx, companyID, periodCounterType)
		if err != nil {
			s.logger.Error("create settlement period counter failed", zap.Error(err))
			return PeriodResponse{}, err
		}
		name = fmt.Sprintf(periodNameFormat, next)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create settlement period begin tx failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period := &SettlementPeriod{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    PeriodOpen,
		Version:   1,
		CreatedBy: uuid.MustParse(actorID),
	}

	if err := qtx.Create(ctx, period); err != nil {
		s.logger.Error("create settlement period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	var assigned int64
	if req.AutoAssign {
		assigned, err = qtx.AssignUnassignedApproved(ctx, companyID, period.ID.String())
		if err != nil {
			s.logger.Error("create settlement period auto assign failed", zap.Error(err))
			return PeriodResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create settlement period commit failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("create settlement period success",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.String("name", period.Name),
		zap.Int64("auto_assigned", assigned),
	)

	return mapPeriodToResponse(*period), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	periods, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all settlement periods failed", zap.Error(err))
		return nil, err
	}
	res := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		res[i] = mapPeriodToResponse(p)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get settlement period failed", zap.Error(err))
		return PeriodResponse{}, mapRepositoryError(err)
	}
	return mapPeriodToResponse(*period), nil
}

func (s *service) Rename(ctx context.Context, companyID, id string, req UpdatePeriodRequest) (PeriodResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("rename settlement period fetch failed", zap.Error(err))
		return PeriodResponse{}, mapRepositoryError(err)
	}

	period.Name = req.Name
	if err := s.repo.Update(ctx, period); err != nil {
		s.logger.Error("rename settlement period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("rename settlement period success",
		zap.String("period_id", id),
		zap.String("name", req.Name),
	)
	return mapPeriodToResponse(*period), nil
}

// installerActivity accumulates one installer's in-period figures
// while walking the request list.
type installerActivity struct {
	work         int64
	deductions   int64
	applications int64
	granted      int64
	perProject   map[string]int64
	settled      bool
}

func (s *service) Close(ctx context.Context, companyID, closerID, id string, req ClosePeriodRequest) (ClosePeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("close settlement period requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("period_id", id),
		zap.Int("version", req.Version),
		zap.Int("excluded", len(req.ExcludedInstallers)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("close settlement period begin tx failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("close settlement period fetch failed", zap.Error(err))
		return ClosePeriodResponse{}, mapRepositoryError(err)
	}
	if period.Status != PeriodOpen {
		return ClosePeriodResponse{}, settlementerrors.ErrPeriodNotOpen
	}
	if period.Version != req.Version {
		s.logger.Warn("close settlement period version conflict",
			zap.String("period_id", id),
			zap.Int("expected", req.Version),
			zap.Int("actual", period.Version),
		)
		return ClosePeriodResponse{}, settlementerrors.ErrVersionConflict
	}

	reqs, err := qtx.ListPeriodRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("close settlement period list requests failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}

	excluded := make(map[string]bool, len(req.ExcludedInstallers))
	for _, iid := range req.ExcludedInstallers {
		excluded[iid] = true
	}

	included := make([]PeriodRequest, 0, len(reqs))
	excludedCount := 0
	for _, pr := range reqs {
		if excluded[pr.InstallerID.String()] {
			if err := s.requests.RemoveInTx(ctx, tx, companyID, pr.ID.String(), false); err != nil {
				s.logger.Error("close settlement period exclusion failed",
					zap.String("payment_request_id", pr.ID.String()),
					zap.Error(err),
				)
				return ClosePeriodResponse{}, err
			}
			excludedCount++
			continue
		}
		included = append(included, pr)
	}

	if len(included) == 0 {
		s.logger.Warn("close settlement period nothing to settle", zap.String("period_id", id))
		return ClosePeriodResponse{}, settlementerrors.ErrNothingToSettle
	}

	activity := groupByInstaller(included)

	installerIDs := make([]string, 0, len(activity))
	for iid := range activity {
		installerIDs = append(installerIDs, iid)
	}
	infos, err := qtx.ListInstallerInfo(ctx, companyID, installerIDs)
	if err != nil {
		s.logger.Error("close settlement period installer lookup failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}
	salaries := make(map[string]int64, len(infos))
	for _, info := range infos {
		salaries[info.ID.String()] = info.WeeklySalary
	}

	now := time.Now().UTC()
	closer := uuid.MustParse(closerID)

	var totalDeposited int64
	snapshots := make([]SettlementSnapshot, 0, len(activity))
	records := make([]PaymentRecord, 0, len(activity))

	for _, pr := range included {
		iid := pr.InstallerID.String()
		act := activity[iid]
		if act.settled {
			continue
		}
		act.settled = true
		activity[iid] = act

		salary := salaries[iid]
		if edited, ok := req.EditedSalaries[iid]; ok {
			salary = edited
		}

		result := Reconcile(ReconciliationInput{
			AccumulatedWork: act.work,
			Salary:          salary,
			PriorBalance:    act.deductions,
			AppliedAdvances: act.applications,
		})
		totalDeposited += result.Deposited

		snapshots = append(snapshots, SettlementSnapshot{
			ID:                     uuid.New(),
			CompanyID:              period.CompanyID,
			PeriodID:               period.ID,
			InstallerID:            pr.InstallerID,
			AccumulatedWorkAmount:  act.work,
			SalaryAmount:           salary,
			PriorBalanceAmount:     act.deductions,
			AppliedAdvanceAmount:   act.applications,
			DepositedAmount:        result.Deposited,
			GeneratedBalanceAmount: result.GeneratedBalance,
		})

		if err := s.balances.Overwrite(ctx, tx, companyID, iid, result.GeneratedBalance); err != nil {
			s.logger.Error("close settlement period balance overwrite failed",
				zap.String("installer_id", iid),
				zap.Error(err),
			)
			return ClosePeriodResponse{}, err
		}

		for projectID, amount := range act.perProject {
			records = append(records, PaymentRecord{
				ID:          uuid.New(),
				CompanyID:   period.CompanyID,
				PeriodID:    period.ID,
				InstallerID: pr.InstallerID,
				ProjectID:   uuid.MustParse(projectID),
				Amount:      amount,
				Method:      defaultPaymentMethod,
			})
		}
	}

	if err := qtx.CreateSnapshots(ctx, snapshots); err != nil {
		s.logger.Error("close settlement period snapshots failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}
	if err := qtx.CreatePaymentRecords(ctx, records); err != nil {
		s.logger.Error("close settlement period payment records failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}

	for _, pr := range included {
		if pr.Type != request.TypeAdvance {
			continue
		}
		err := s.advances.IssueAvailableCredit(ctx, tx, companyID,
			pr.InstallerID.String(), pr.ProjectID.String(), pr.ID.String(), pr.Amount)
		if err != nil {
			s.logger.Error("close settlement period advance issue failed",
				zap.String("payment_request_id", pr.ID.String()),
				zap.Error(err),
			)
			return ClosePeriodResponse{}, err
		}
	}

	if err := qtx.RestampApproved(ctx, companyID, id, closerID, now); err != nil {
		s.logger.Error("close settlement period restamp failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}

	period.Status = PeriodClosed
	period.TotalAmount = totalDeposited
	period.ClosedBy = &closer
	period.ClosedAt = &now
	period.Version = req.Version + 1

	rows, err := qtx.UpdateVersioned(ctx, period, req.Version)
	if err != nil {
		s.logger.Error("close settlement period persist failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}
	if rows == 0 {
		return ClosePeriodResponse{}, settlementerrors.ErrVersionConflict
	}

	if err := s.enqueueClosedEvent(ctx, tx, period, closerID, len(snapshots)); err != nil {
		return ClosePeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("close settlement period commit failed", zap.Error(err))
		return ClosePeriodResponse{}, err
	}

	s.logger.Info("close settlement period success",
		zap.String("request_id", rid),
		zap.String("period_id", id),
		zap.Int64("total_deposited", totalDeposited),
		zap.Int("settled_installers", len(snapshots)),
		zap.Int("excluded_requests", excludedCount),
	)

	return ClosePeriodResponse{
		Period:    mapPeriodToResponse(*period),
		Settled:   len(snapshots),
		Excluded:  len(req.ExcludedInstallers),
		Deposited: totalDeposited,
	}, nil
}

func (s *service) Reopen(ctx context.Context, companyID, actorID, id string, req ReopenPeriodRequest) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("reopen settlement period requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("period_id", id),
		zap.Int("version", req.Version),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reopen settlement period begin tx failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reopen settlement period fetch failed", zap.Error(err))
		return PeriodResponse{}, mapRepositoryError(err)
	}
	if period.Status != PeriodClosed {
		return PeriodResponse{}, settlementerrors.ErrPeriodNotClosed
	}
	if period.Version != req.Version {
		s.logger.Warn("reopen settlement period version conflict",
			zap.String("period_id", id),
			zap.Int("expected", req.Version),
			zap.Int("actual", period.Version),
		)
		return PeriodResponse{}, settlementerrors.ErrVersionConflict
	}

	reqs, err := qtx.ListPeriodRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reopen settlement period list requests failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	for _, pr := range reqs {
		if pr.Type != request.TypeAdvanceApplication {
			continue
		}
		if err := s.advances.RestoreFIFO(ctx, tx, companyID, pr.InstallerID.String(), pr.Amount); err != nil {
			s.logger.Error("reopen settlement period advance restore failed", zap.Error(err))
			return PeriodResponse{}, err
		}
	}

	if err := qtx.DeletePaymentRecords(ctx, companyID, id); err != nil {
		s.logger.Error("reopen settlement period delete payment records failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	snapshots, err := qtx.ListSnapshots(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reopen settlement period list snapshots failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	for _, snap := range snapshots {
		if snap.GeneratedBalanceAmount == 0 {
			continue
		}
		err := s.balances.DecreaseClamped(ctx, tx, companyID,
			snap.InstallerID.String(), snap.GeneratedBalanceAmount)
		if err != nil {
			s.logger.Error("reopen settlement period balance rollback failed", zap.Error(err))
			return PeriodResponse{}, err
		}
	}
	if err := qtx.DeleteSnapshots(ctx, companyID, id); err != nil {
		s.logger.Error("reopen settlement period delete snapshots failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	var deductionIDs []string
	var advanceSourceIDs []string
	for _, pr := range reqs {
		switch pr.Type {
		case request.TypeBalanceDeduction:
			err := s.balances.Restore(ctx, tx, companyID, pr.InstallerID.String(), pr.Amount)
			if err != nil {
				s.logger.Error("reopen settlement period deduction restore failed", zap.Error(err))
				return PeriodResponse{}, err
			}
			deductionIDs = append(deductionIDs, pr.ID.String())
		case request.TypeAdvance:
			advanceSourceIDs = append(advanceSourceIDs, pr.ID.String())
		}
	}
	if err := qtx.DeleteRequests(ctx, companyID, deductionIDs); err != nil {
		s.logger.Error("reopen settlement period delete deductions failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	if err := s.advances.DeleteBySourceRequests(ctx, tx, companyID, advanceSourceIDs); err != nil {
		s.logger.Error("reopen settlement period delete advances failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	// Requests keep their APPROVED stamp after reopening. Re-closing
	// restamps them anyway, and downgrading to PENDING would force a
	// full re-approval round the business does not want.
	period.Status = PeriodOpen
	period.TotalAmount = 0
	period.ClosedBy = nil
	period.ClosedAt = nil
	period.Version = req.Version + 1

	rows, err := qtx.UpdateVersioned(ctx, period, req.Version)
	if err != nil {
		s.logger.Error("reopen settlement period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	if rows == 0 {
		return PeriodResponse{}, settlementerrors.ErrVersionConflict
	}

	if err := s.enqueueReopenedEvent(ctx, tx, period, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reopen settlement period commit failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("reopen settlement period success",
		zap.String("request_id", rid),
		zap.String("period_id", id),
	)

	return mapPeriodToResponse(*period), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	s.logger.Debug("delete settlement period requested",
		zap.String("company_id", companyID),
		zap.String("period_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete settlement period begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete settlement period fetch failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	assigned, err := qtx.CountAssigned(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete settlement period count failed", zap.Error(err))
		return err
	}
	if assigned > 0 || period.TotalAmount != 0 {
		s.logger.Warn("delete settlement period not empty",
			zap.String("period_id", id),
			zap.Int64("assigned", assigned),
			zap.Int64("total_amount", period.TotalAmount),
		)
		return settlementerrors.ErrPeriodNotEmpty
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete settlement period failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete settlement period commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete settlement period success", zap.String("period_id", id))
	return nil
}

func (s *service) Summary(ctx context.Context, companyID, id string) (SummaryResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("settlement summary fetch failed", zap.Error(err))
		return SummaryResponse{}, mapRepositoryError(err)
	}

	reqs, err := s.repo.ListPeriodRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("settlement summary list requests failed", zap.Error(err))
		return SummaryResponse{}, err
	}
	activity := groupByInstaller(reqs)

	installerIDs := make([]string, 0, len(activity))
	for iid := range activity {
		installerIDs = append(installerIDs, iid)
	}

	infos, err := s.repo.ListInstallerInfo(ctx, companyID, installerIDs)
	if err != nil {
		s.logger.Error("settlement summary installer lookup failed", zap.Error(err))
		return SummaryResponse{}, err
	}
	available, err := s.repo.SumAvailableAdvances(ctx, companyID, installerIDs)
	if err != nil {
		s.logger.Error("settlement summary advances lookup failed", zap.Error(err))
		return SummaryResponse{}, err
	}

	resp := SummaryResponse{
		PeriodID:    period.ID.String(),
		Name:        period.Name,
		Status:      string(period.Status),
		TotalAmount: period.TotalAmount,
	}

	if period.Status == PeriodClosed {
		snapshots, err := s.repo.ListSnapshots(ctx, companyID, id)
		if err != nil {
			s.logger.Error("settlement summary snapshots failed", zap.Error(err))
			return SummaryResponse{}, err
		}
		for _, snap := range snapshots {
			iid := snap.InstallerID.String()
			resp.Installers = append(resp.Installers, InstallerSummary{
				InstallerID:             iid,
				InstallerName:           installerName(infos, snap.InstallerID),
				AccumulatedWork:         snap.AccumulatedWorkAmount,
				Salary:                  snap.SalaryAmount,
				PriorBalance:            snap.PriorBalanceAmount,
				AdvancesGranted:         activity[iid].granted,
				AdvancesAvailable:       available[iid],
				AdvancesManuallyApplied: snap.AppliedAdvanceAmount,
				ToDeposit:               snap.DepositedAmount,
				GeneratedBalance:        snap.GeneratedBalanceAmount,
			})
		}
	} else {
		for _, info := range infos {
			iid := info.ID.String()
			act := activity[iid]
			result := Reconcile(ReconciliationInput{
				AccumulatedWork: act.work,
				Salary:          info.WeeklySalary,
				PriorBalance:    act.deductions,
				AppliedAdvances: act.applications,
			})
			resp.Installers = append(resp.Installers, InstallerSummary{
				InstallerID:             iid,
				InstallerName:           info.FullName,
				AccumulatedWork:         act.work,
				Salary:                  info.WeeklySalary,
				PriorBalance:            act.deductions,
				AdvancesGranted:         act.granted,
				AdvancesAvailable:       available[iid],
				AdvancesManuallyApplied: act.applications,
				ToDeposit:               result.Deposited,
				GeneratedBalance:        result.GeneratedBalance,
			})
		}
	}

	records, err := s.repo.ListPaymentRecords(ctx, companyID, id)
	if err != nil {
		s.logger.Error("settlement summary payment records failed", zap.Error(err))
		return SummaryResponse{}, err
	}
	for _, rec := range records {
		resp.PaymentRecords = append(resp.PaymentRecords, mapRecordToResponse(rec))
	}

	return resp, nil
}

func (s *service) DispatchPayments(ctx context.Context, companyID, periodID string) (int, error) {
	s.logger.Debug("dispatch payments requested",
		zap.String("company_id", companyID),
		zap.String("period_id", periodID),
	)

	period, err := s.repo.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		s.logger.Error("dispatch payments fetch failed", zap.Error(err))
		return 0, mapRepositoryError(err)
	}
	if period.Status != PeriodClosed {
		return 0, settlementerrors.ErrPeriodNotClosed
	}

	stamped, err := s.repo.MarkPaymentsDispatched(ctx, companyID, periodID, time.Now().UTC())
	if err != nil {
		s.logger.Error("dispatch payments stamp failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("dispatch payments success",
		zap.String("period_id", periodID),
		zap.Int64("stamped", stamped),
	)
	return int(stamped), nil
}

func (s *service) enqueueClosedEvent(ctx context.Context, tx *sql.Tx, period *SettlementPeriod, closerID string, workers int) error {
	evt := events.SettlementClosedEvent{
		EventType:   "settlement.closed",
		RequestID:   contextutil.GetRequestID(ctx),
		PeriodID:    period.ID.String(),
		CompanyID:   period.CompanyID.String(),
		ClosedBy:    closerID,
		TotalAmount: period.TotalAmount,
		Workers:     workers,
		OccurredAt:  time.Now().UTC(),
	}
	return s.enqueueEvent(ctx, tx, period, evt.EventType, events.SettlementClosedTopic, evt)
}

func (s *service) enqueueReopenedEvent(ctx context.Context, tx *sql.Tx, period *SettlementPeriod, actorID string) error {
	evt := events.SettlementReopenedEvent{
		EventType:  "settlement.reopened",
		RequestID:  contextutil.GetRequestID(ctx),
		PeriodID:   period.ID.String(),
		CompanyID:  period.CompanyID.String(),
		ReopenedBy: actorID,
		OccurredAt: time.Now().UTC(),
	}
	return s.enqueueEvent(ctx, tx, period, evt.EventType, events.SettlementReopenedTopic, evt)
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, period *SettlementPeriod, eventType, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("settlement event marshal failed", zap.Error(err))
		return err
	}
	err = s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "settlement_period",
		AggregateID:   period.ID.String(),
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("settlement event enqueue failed", zap.Error(err))
	}
	return err
}

func groupByInstaller(reqs []PeriodRequest) map[string]installerActivity {
	activity := make(map[string]installerActivity)
	for _, pr := range reqs {
		iid := pr.InstallerID.String()
		act := activity[iid]
		if act.perProject == nil {
			act.perProject = make(map[string]int64)
		}
		switch pr.Type {
		case request.TypeWork, request.TypeExtra:
			act.work += pr.Amount
			act.perProject[pr.ProjectID.String()] += pr.Amount
		case request.TypeBalanceDeduction:
			act.deductions += pr.Amount
		case request.TypeAdvanceApplication:
			act.applications += pr.Amount
		case request.TypeAdvance:
			act.granted += pr.Amount
		}
		activity[iid] = act
	}
	return activity
}

func installerName(infos []InstallerInfo, id uuid.UUID) string {
	for _, info := range infos {
		if info.ID == id {
			return info.FullName
		}
	}
	return ""
}

func mapPeriodToResponse(p SettlementPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		StartDate:   p.StartDate.Format("2006-01-02"),
		EndDate:     p.EndDate.Format("2006-01-02"),
		Status:      string(p.Status),
		TotalAmount: p.TotalAmount,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.ClosedBy != nil {
		resp.ClosedBy = p.ClosedBy.String()
	}
	if p.ClosedAt != nil {
		resp.ClosedAt = p.ClosedAt.Format(time.RFC3339)
	}
	return resp
}

func mapRecordToResponse(rec PaymentRecord) PaymentRecordResponse {
	resp := PaymentRecordResponse{
		ID:          rec.ID.String(),
		InstallerID: rec.InstallerID.String(),
		ProjectID:   rec.ProjectID.String(),
		Amount:      rec.Amount,
		Method:      rec.Method,
	}
	if rec.DispatchedAt != nil {
		resp.DispatchedAt = rec.DispatchedAt.Format(time.RFC3339)
	}
	return resp
}
