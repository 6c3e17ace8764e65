package settlement

import (
	"time"

	"github.com/google/uuid"
)

type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

type SettlementPeriod struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Status      PeriodStatus
	TotalAmount int64
	ClosedBy    *uuid.UUID `gorm:"type:uuid"`
	ClosedAt    *time.Time
	// Version guards concurrent close/reopen. Every state flip
	// increments it; a stale caller gets a conflict instead of
	// double-settling.
	Version   int
	CreatedBy uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SettlementSnapshot freezes one installer's settled numbers at close
// time. Rows are immutable; reopen deletes them wholesale.
type SettlementSnapshot struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID              uuid.UUID `gorm:"type:uuid;index"`
	PeriodID               uuid.UUID `gorm:"type:uuid;index"`
	InstallerID            uuid.UUID `gorm:"type:uuid;index"`
	AccumulatedWorkAmount  int64
	SalaryAmount           int64
	PriorBalanceAmount     int64
	AppliedAdvanceAmount   int64
	DepositedAmount        int64
	GeneratedBalanceAmount int64
	CreatedAt              time.Time
}

// PaymentRecord carries the full accumulated work total per
// (installer, project), not the net deposit. Downstream payment export
// needs the gross figure per project.
type PaymentRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index"`
	PeriodID     uuid.UUID `gorm:"type:uuid;index"`
	InstallerID  uuid.UUID `gorm:"type:uuid;index"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index"`
	Amount       int64
	Method       string
	DispatchedAt *time.Time
	CreatedAt    time.Time
}
