package events

import "time"

const SettlementClosedTopic = "construction.settlement.closed.v1"

type SettlementClosedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PeriodID    string    `json:"period_id"`
	CompanyID   string    `json:"company_id"`
	ClosedBy    string    `json:"closed_by"`
	TotalAmount int64     `json:"total_amount"`
	Workers     int       `json:"workers"`
	OccurredAt  time.Time `json:"occurred_at"`
}
