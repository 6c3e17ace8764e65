package settlement

import (
	"context"
	"database/sql"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/request"
	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PeriodRequest is the slice of a payment request the settlement math
// needs. Read straight off payment_requests, never written here except
// for the reopen-time delete of synthetic rows.
type PeriodRequest struct {
	ID          uuid.UUID
	InstallerID uuid.UUID
	ProjectID   uuid.UUID
	Type        request.RequestType
	Amount      int64
}

// InstallerInfo is the installer slice consulted at close and summary
// time.
type InstallerInfo struct {
	ID           uuid.UUID
	FullName     string
	WeeklySalary int64
}

//go:generate mockgen -source=settlement_repo.go -destination=mock/settlement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, period *SettlementPeriod) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*SettlementPeriod, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]SettlementPeriod, error)
	Update(ctx context.Context, period *SettlementPeriod) error
	// UpdateVersioned persists the period only when the stored version
	// still matches expectedVersion. Returns the number of rows hit.
	UpdateVersioned(ctx context.Context, period *SettlementPeriod, expectedVersion int) (int64, error)
	Delete(ctx context.Context, companyID, id string) error

	ListPeriodRequests(ctx context.Context, companyID, periodID string) ([]PeriodRequest, error)
	AssignUnassignedApproved(ctx context.Context, companyID, periodID string) (int64, error)
	RestampApproved(ctx context.Context, companyID, periodID, closerID string, at time.Time) error
	CountAssigned(ctx context.Context, companyID, periodID string) (int64, error)
	DeleteRequests(ctx context.Context, companyID string, ids []string) error

	CreateSnapshots(ctx context.Context, snaps []SettlementSnapshot) error
	ListSnapshots(ctx context.Context, companyID, periodID string) ([]SettlementSnapshot, error)
	DeleteSnapshots(ctx context.Context, companyID, periodID string) error

	CreatePaymentRecords(ctx context.Context, recs []PaymentRecord) error
	ListPaymentRecords(ctx context.Context, companyID, periodID string) ([]PaymentRecord, error)
	DeletePaymentRecords(ctx context.Context, companyID, periodID string) error
	MarkPaymentsDispatched(ctx context.Context, companyID, periodID string, at time.Time) (int64, error)

	ListInstallerInfo(ctx context.Context, companyID string, ids []string) ([]InstallerInfo, error)
	SumAvailableAdvances(ctx context.Context, companyID string, installerIDs []string) (map[string]int64, error)
	GetBalanceAmounts(ctx context.Context, companyID string, installerIDs []string) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db = db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, period *SettlementPeriod) error {
	return r.conn(ctx).Create(period).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*SettlementPeriod, error) {
	var period SettlementPeriod
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if r.tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&period, "id = ?", id).Error
	return &period, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SettlementPeriod, error) {
	var periods []SettlementPeriod
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) Update(ctx context.Context, period *SettlementPeriod) error {
	return r.conn(ctx).Save(period).Error
}

func (r *repository) UpdateVersioned(ctx context.Context, period *SettlementPeriod, expectedVersion int) (int64, error) {
	res := r.conn(ctx).
		Model(&SettlementPeriod{}).
		Where("id = ?", period.ID).
		Where("company_id = ?", period.CompanyID).
		Where("version = ?", expectedVersion).
		Updates(map[string]interface{}{
			"status":       period.Status,
			"total_amount": period.TotalAmount,
			"closed_by":    period.ClosedBy,
			"closed_at":    period.ClosedAt,
			"version":      period.Version,
			"updated_at":   time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&SettlementPeriod{}, "id = ?", id).Error
}

func (r *repository) ListPeriodRequests(ctx context.Context, companyID, periodID string) ([]PeriodRequest, error) {
	var reqs []PeriodRequest
	err := r.conn(ctx).
		Table("payment_requests").
		Select("id, installer_id, project_id, type, amount").
		Where("company_id = ?", companyID).
		Where("settlement_period_id = ?", periodID).
		Order("created_at ASC").
		Scan(&reqs).Error
	return reqs, err
}

func (r *repository) AssignUnassignedApproved(ctx context.Context, companyID, periodID string) (int64, error) {
	res := r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("status = ?", request.StatusApproved).
		Where("settlement_period_id IS NULL").
		Updates(map[string]interface{}{
			"settlement_period_id": periodID,
			"updated_at":           time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) RestampApproved(ctx context.Context, companyID, periodID, closerID string, at time.Time) error {
	return r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("settlement_period_id = ?", periodID).
		Updates(map[string]interface{}{
			"status":      request.StatusApproved,
			"approved_by": closerID,
			"approved_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) CountAssigned(ctx context.Context, companyID, periodID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("settlement_period_id = ?", periodID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteRequests(ctx context.Context, companyID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("id IN ?", ids).
		Delete(nil).Error
}

func (r *repository) CreateSnapshots(ctx context.Context, snaps []SettlementSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&snaps).Error
}

func (r *repository) ListSnapshots(ctx context.Context, companyID, periodID string) ([]SettlementSnapshot, error) {
	var snaps []SettlementSnapshot
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Find(&snaps).Error
	return snaps, err
}

func (r *repository) DeleteSnapshots(ctx context.Context, companyID, periodID string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Delete(&SettlementSnapshot{}).Error
}

func (r *repository) CreatePaymentRecords(ctx context.Context, recs []PaymentRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&recs).Error
}

func (r *repository) ListPaymentRecords(ctx context.Context, companyID, periodID string) ([]PaymentRecord, error) {
	var recs []PaymentRecord
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) DeletePaymentRecords(ctx context.Context, companyID, periodID string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Delete(&PaymentRecord{}).Error
}

func (r *repository) MarkPaymentsDispatched(ctx context.Context, companyID, periodID string, at time.Time) (int64, error) {
	res := r.conn(ctx).
		Model(&PaymentRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Where("dispatched_at IS NULL").
		Update("dispatched_at", at)
	return res.RowsAffected, res.Error
}

func (r *repository) ListInstallerInfo(ctx context.Context, companyID string, ids []string) ([]InstallerInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var infos []InstallerInfo
	err := r.conn(ctx).
		Table("installers").
		Select("id, full_name, weekly_salary").
		Where("company_id = ?", companyID).
		Where("id IN ?", ids).
		Scan(&infos).Error
	return infos, err
}

func (r *repository) SumAvailableAdvances(ctx context.Context, companyID string, installerIDs []string) (map[string]int64, error) {
	return r.sumByInstaller(ctx, companyID, installerIDs,
		"advances", "installer_id, COALESCE(SUM(available_amount), 0) AS total")
}

func (r *repository) GetBalanceAmounts(ctx context.Context, companyID string, installerIDs []string) (map[string]int64, error) {
	return r.sumByInstaller(ctx, companyID, installerIDs,
		"balances", "installer_id, COALESCE(SUM(accumulated_amount), 0) AS total")
}

func (r *repository) sumByInstaller(ctx context.Context, companyID string, installerIDs []string, table, sel string) (map[string]int64, error) {
	totals := make(map[string]int64, len(installerIDs))
	if len(installerIDs) == 0 {
		return totals, nil
	}
	var rows []struct {
		InstallerID uuid.UUID
		Total       int64
	}
	err := r.conn(ctx).
		Table(table).
		Select(sel).
		Where("company_id = ?", companyID).
		Where("installer_id IN ?", installerIDs).
		Group("installer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		totals[row.InstallerID.String()] = row.Total
	}
	return totals, nil
}
