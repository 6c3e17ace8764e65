package request

import (
	"context"
	"database/sql"

	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *PaymentRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PaymentRequest, error)
	FindAllByCompany(ctx context.Context, companyID string, q ListRequestsQuery) ([]PaymentRequest, error)
	FindUnassignedApproved(ctx context.Context, companyID string) ([]PaymentRequest, error)
	Update(ctx context.Context, req *PaymentRequest) error
	Delete(ctx context.Context, companyID, id string) error
	GetPeriodStatus(ctx context.Context, companyID, periodID string) (string, error)
	GetPeriodTotalAmount(ctx context.Context, companyID, periodID string) (int64, error)
	CountByPeriod(ctx context.Context, companyID, periodID string) (int64, error)
	DeletePeriod(ctx context.Context, companyID, periodID string) error
	GetProjectBudget(ctx context.Context, companyID, projectID string) (int64, error)
	SumApprovedProjectCharges(ctx context.Context, companyID, projectID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, req *PaymentRequest) error {
	return r.conn(ctx).Create(req).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PaymentRequest, error) {
	var req PaymentRequest
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if r.tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, q ListRequestsQuery) ([]PaymentRequest, error) {
	var reqs []PaymentRequest
	db := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC")
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.InstallerID != "" {
		db = db.Where("installer_id = ?", q.InstallerID)
	}
	if q.PeriodID != "" {
		db = db.Where("settlement_period_id = ?", q.PeriodID)
	}
	err := db.Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindUnassignedApproved(ctx context.Context, companyID string) ([]PaymentRequest, error) {
	var reqs []PaymentRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusApproved).
		Where("settlement_period_id IS NULL").
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) Update(ctx context.Context, req *PaymentRequest) error {
	return r.conn(ctx).Save(req).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PaymentRequest{}, "id = ?", id).Error
}

func (r *repository) GetPeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	var status string
	err := r.conn(ctx).
		Table("settlement_periods").
		Select("status").
		Where("id = ?", periodID).
		Where("company_id = ?", companyID).
		Scan(&status).Error
	return status, err
}

func (r *repository) GetPeriodTotalAmount(ctx context.Context, companyID, periodID string) (int64, error) {
	var total int64
	err := r.conn(ctx).
		Table("settlement_periods").
		Select("total_amount").
		Where("id = ?", periodID).
		Where("company_id = ?", companyID).
		Scan(&total).Error
	return total, err
}

func (r *repository) CountByPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&PaymentRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("settlement_period_id = ?", periodID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeletePeriod(ctx context.Context, companyID, periodID string) error {
	return r.conn(ctx).
		Table("settlement_periods").
		Where("id = ?", periodID).
		Where("company_id = ?", companyID).
		Delete(nil).Error
}

func (r *repository) GetProjectBudget(ctx context.Context, companyID, projectID string) (int64, error) {
	var budget int64
	err := r.conn(ctx).
		Table("projects").
		Select("budget").
		Where("id = ?", projectID).
		Where("company_id = ?", companyID).
		Scan(&budget).Error
	return budget, err
}

func (r *repository) SumApprovedProjectCharges(ctx context.Context, companyID, projectID string) (int64, error) {
	var total int64
	err := r.conn(ctx).
		Model(&PaymentRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Scopes(tenant.Scope(companyID)).
		Where("project_id = ?", projectID).
		Where("status = ?", StatusApproved).
		Where("type NOT IN ?", []RequestType{TypeAdvance, TypeAdvanceApplication, TypeBalanceDeduction}).
		Scan(&total).Error
	return total, err
}
