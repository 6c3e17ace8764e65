package balance

import (
	"context"
	"database/sql"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRequestRow struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID `gorm:"type:uuid"`
	InstallerID        uuid.UUID `gorm:"type:uuid"`
	ProjectID          uuid.UUID `gorm:"type:uuid"`
	SettlementPeriodID *uuid.UUID
	Type               string
	Amount             int64
	Status             string
	ApprovedBy         *uuid.UUID
	ApprovedAt         *time.Time
	Notes              string
	CreatedBy          uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (paymentRequestRow) TableName() string { return "payment_requests" }

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByInstaller(ctx context.Context, companyID, installerID string) (*Balance, error)
	// Upsert writes the row keyed by (company, installer), overwriting
	// the accumulated amount on conflict.
	Upsert(ctx context.Context, b *Balance) error
	FindOpenPeriodID(ctx context.Context, companyID string) (string, error)
	CreateDeductionRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error)
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

func (r *repository) FindByInstaller(ctx context.Context, companyID, installerID string) (*Balance, error) {
	var b Balance
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("installer_id = ?", installerID)
	if r.tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&b).Error
	return &b, err
}

func (r *repository) Upsert(ctx context.Context, b *Balance) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "installer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"accumulated_amount", "updated_at"}),
		}).
		Create(b).Error
}

func (r *repository) FindOpenPeriodID(ctx context.Context, companyID string) (string, error) {
	var periodID string
	err := r.conn(ctx).
		Table("settlement_periods").
		Select("id").
		Where("company_id = ?", companyID).
		Where("status = ?", "OPEN").
		Order("created_at DESC").
		Limit(1).
		Scan(&periodID).Error
	return periodID, err
}

func (r *repository) CreateDeductionRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error) {
	now := time.Now().UTC()
	actor := uuid.MustParse(actorID)
	period := uuid.MustParse(periodID)
	row := &paymentRequestRow{
		ID:                 uuid.New(),
		CompanyID:          uuid.MustParse(companyID),
		InstallerID:        uuid.MustParse(installerID),
		ProjectID:          uuid.MustParse(projectID),
		SettlementPeriodID: &period,
		Type:               "BALANCE_DEDUCTION",
		Amount:             amount,
		Status:             "APPROVED",
		ApprovedBy:         &actor,
		ApprovedAt:         &now,
		Notes:              notes,
		CreatedBy:          actor,
	}
	if err := r.conn(ctx).Create(row).Error; err != nil {
		return "", err
	}
	return row.ID.String(), nil
}
