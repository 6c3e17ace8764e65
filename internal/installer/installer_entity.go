package installer

import (
	"time"

	"github.com/google/uuid"
)

type Installer struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index"`
	FullName        string
	InstallerNumber string `gorm:"uniqueIndex:uq_installer_number"`
	Phone           string
	// WeeklySalary is the fixed weekly base pay in cents, deducted
	// from piece-rate earnings at settlement close.
	WeeklySalary int64
	Active       bool `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
