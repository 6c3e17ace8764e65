package advance

import (
	"time"

	"github.com/google/uuid"
)

// Advance is credit issued to an installer when an ADVANCE request is
// settled. AvailableAmount is drawn down FIFO by applications and never
// leaves the [0, OriginalAmount] range.
type Advance struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index"`
	InstallerID     uuid.UUID `gorm:"type:uuid;index"`
	ProjectID       uuid.UUID `gorm:"type:uuid"`
	OriginalAmount  int64
	AvailableAmount int64
	SourceRequestID uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_advance_source_request"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
