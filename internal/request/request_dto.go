package request

type SubmitRequestRequest struct {
	InstallerID string `json:"installer_id" binding:"required,uuid"`
	ProjectID   string `json:"project_id" binding:"required,uuid"`
	Type        string `json:"type" binding:"required,oneof=WORK EXTRA ADVANCE"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Notes       string `json:"notes"`
}

type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AssignRequestRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
}

type ListRequestsQuery struct {
	Status      string `form:"status"`
	Type        string `form:"type"`
	InstallerID string `form:"installer_id"`
	PeriodID    string `form:"period_id"`
}

type RequestResponse struct {
	ID              string `json:"id"`
	InstallerID     string `json:"installer_id"`
	ProjectID       string `json:"project_id"`
	PeriodID        string `json:"period_id,omitempty"`
	Type            string `json:"type"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	ApprovedAt      string `json:"approved_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CreatedBy       string `json:"created_by"`
	CreatedAt       string `json:"created_at"`
}
