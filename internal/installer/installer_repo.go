package installer

import (
	"context"
	"database/sql"

	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=installer_repo.go -destination=mock/installer_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, inst *Installer) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Installer, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]Installer, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Installer, error)
	Update(ctx context.Context, inst *Installer) error
	CountPendingRequests(ctx context.Context, companyID, installerID string) (int64, error)
	CountOpenPeriodRequests(ctx context.Context, companyID, installerID string) (int64, error)
	GetBalanceAmount(ctx context.Context, companyID, installerID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, inst *Installer) error {
	return r.conn(ctx).Create(inst).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Installer, error) {
	var insts []Installer
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("full_name ASC").
		Find(&insts).Error
	return insts, err
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) ([]Installer, error) {
	var insts []Installer
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true).
		Order("full_name ASC").
		Find(&insts).Error
	return insts, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Installer, error) {
	var inst Installer
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&inst, "id = ?", id).Error
	return &inst, err
}

func (r *repository) Update(ctx context.Context, inst *Installer) error {
	return r.conn(ctx).Save(inst).Error
}

func (r *repository) CountPendingRequests(ctx context.Context, companyID, installerID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("installer_id = ?", installerID).
		Where("status = ?", "PENDING").
		Count(&count).Error
	return count, err
}

func (r *repository) CountOpenPeriodRequests(ctx context.Context, companyID, installerID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_requests").
		Joins("JOIN settlement_periods ON settlement_periods.id = payment_requests.settlement_period_id").
		Where("payment_requests.company_id = ?", companyID).
		Where("payment_requests.installer_id = ?", installerID).
		Where("settlement_periods.status = ?", "OPEN").
		Count(&count).Error
	return count, err
}

func (r *repository) GetBalanceAmount(ctx context.Context, companyID, installerID string) (int64, error) {
	var amount int64
	err := r.conn(ctx).
		Table("balances").
		Select("COALESCE(SUM(accumulated_amount), 0)").
		Where("company_id = ?", companyID).
		Where("installer_id = ?", installerID).
		Scan(&amount).Error
	return amount, err
}
