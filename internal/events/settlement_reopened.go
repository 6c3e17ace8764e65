package events

import "time"

const SettlementReopenedTopic = "construction.settlement.reopened.v1"

type SettlementReopenedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	PeriodID   string    `json:"period_id"`
	CompanyID  string    `json:"company_id"`
	ReopenedBy string    `json:"reopened_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
