package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index"`
	Name       string    `gorm:"uniqueIndex:uq_project_name"`
	ClientName string
	// Budget caps the total approved piece-rate work chargeable to
	// the project, in cents. Advances do not count against it.
	Budget    int64
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
