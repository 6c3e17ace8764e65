package advance

import (
	"context"
	"database/sql"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRequestRow mirrors the payment_requests table for the synthetic
// application rows this ledger writes.
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

//go:generate mockgen -source=advance_repo.go -destination=mock/advance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, adv *Advance) error
	ListByInstallerFIFO(ctx context.Context, companyID, installerID string) ([]Advance, error)
	UpdateAvailable(ctx context.Context, id string, available int64) error
	ExistsBySourceRequest(ctx context.Context, companyID, sourceRequestID string) (bool, error)
	DeleteBySourceRequests(ctx context.Context, companyID string, sourceRequestIDs []string) error
	SumAvailable(ctx context.Context, companyID, installerID string) (int64, error)
	FindOpenPeriodID(ctx context.Context, companyID string) (string, error)
	CreateApplicationRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error)
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

func (r *repository) Create(ctx context.Context, adv *Advance) error {
	return r.conn(ctx).Create(adv).Error
}

func (r *repository) ListByInstallerFIFO(ctx context.Context, companyID, installerID string) ([]Advance, error) {
	var advances []Advance
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("installer_id = ?", installerID).
		Order("created_at ASC")
	if r.tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Find(&advances).Error
	return advances, err
}

func (r *repository) UpdateAvailable(ctx context.Context, id string, available int64) error {
	return r.conn(ctx).
		Model(&Advance{}).
		Where("id = ?", id).
		Update("available_amount", available).Error
}

func (r *repository) ExistsBySourceRequest(ctx context.Context, companyID, sourceRequestID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Advance{}).
		Scopes(tenant.Scope(companyID)).
		Where("source_request_id = ?", sourceRequestID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) DeleteBySourceRequests(ctx context.Context, companyID string, sourceRequestIDs []string) error {
	if len(sourceRequestIDs) == 0 {
		return nil
	}
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("source_request_id IN ?", sourceRequestIDs).
		Delete(&Advance{}).Error
}

func (r *repository) SumAvailable(ctx context.Context, companyID, installerID string) (int64, error) {
	var total int64
	err := r.conn(ctx).
		Model(&Advance{}).
		Select("COALESCE(SUM(available_amount), 0)").
		Scopes(tenant.Scope(companyID)).
		Where("installer_id = ?", installerID).
		Scan(&total).Error
	return total, err
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

func (r *repository) CreateApplicationRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error) {
	now := time.Now().UTC()
	actor := uuid.MustParse(actorID)
	period := uuid.MustParse(periodID)
	row := &paymentRequestRow{
		ID:                 uuid.New(),
		CompanyID:          uuid.MustParse(companyID),
		InstallerID:        uuid.MustParse(installerID),
		ProjectID:          uuid.MustParse(projectID),
		SettlementPeriodID: &period,
		Type:               "ADVANCE_APPLICATION",
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
