package balance

import (
	"time"

	"github.com/google/uuid"
)

// Balance is the debt an installer carries into the next settlement.
// One row per (company, installer); AccumulatedAmount never goes below zero.
type Balance struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID         uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_balance_installer"`
	InstallerID       uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_balance_installer"`
	AccumulatedAmount int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
