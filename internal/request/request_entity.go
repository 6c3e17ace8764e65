package request

import (
	"time"

	"github.com/google/uuid"
)

type RequestType string

const (
	TypeWork               RequestType = "WORK"
	TypeExtra              RequestType = "EXTRA"
	TypeAdvance            RequestType = "ADVANCE"
	TypeBalanceDeduction   RequestType = "BALANCE_DEDUCTION"
	TypeAdvanceApplication RequestType = "ADVANCE_APPLICATION"
)

// Valid reports whether t is one of the five known types.
func (t RequestType) Valid() bool {
	switch t {
	case TypeWork, TypeExtra, TypeAdvance, TypeBalanceDeduction, TypeAdvanceApplication:
		return true
	}
	return false
}

// Submittable reports whether t may be created through Submit.
// Deductions and applications only exist as synthetic rows written by
// the balance and advance ledgers.
func (t RequestType) Submittable() bool {
	switch t {
	case TypeWork, TypeExtra, TypeAdvance:
		return true
	case TypeBalanceDeduction, TypeAdvanceApplication:
		return false
	}
	return false
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

type PaymentRequest struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID  `gorm:"type:uuid;index"`
	InstallerID        uuid.UUID  `gorm:"type:uuid;index"`
	ProjectID          uuid.UUID  `gorm:"type:uuid;index"`
	SettlementPeriodID *uuid.UUID `gorm:"type:uuid;index"`
	Type               RequestType
	Amount             int64
	Status             RequestStatus
	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt         *time.Time
	RejectionReason    *string
	Notes              string
	CreatedBy          uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
