package project

import (
	"context"
	"database/sql"

	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=project_repo.go -destination=mock/project_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Project) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Project, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, companyID string, id string) error
	// SumApprovedCharges totals APPROVED non-advance request amounts
	// charged to the project.
	SumApprovedCharges(ctx context.Context, companyID, projectID string) (int64, error)
	CountRequests(ctx context.Context, companyID, projectID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, p *Project) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Project, error) {
	var projects []Project
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Project, error) {
	var p Project
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Project{}, "id = ?", id).Error
}

func (r *repository) SumApprovedCharges(ctx context.Context, companyID, projectID string) (int64, error) {
	var total int64
	err := r.conn(ctx).
		Table("payment_requests").
		Select("COALESCE(SUM(amount), 0)").
		Where("company_id = ?", companyID).
		Where("project_id = ?", projectID).
		Where("status = ?", "APPROVED").
		Where("type NOT IN ?", []string{"ADVANCE", "ADVANCE_APPLICATION", "BALANCE_DEDUCTION"}).
		Scan(&total).Error
	return total, err
}

func (r *repository) CountRequests(ctx context.Context, companyID, projectID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_requests").
		Where("company_id = ?", companyID).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
