package balance

type ApplyDeductionRequest struct {
	InstallerID string `json:"installer_id" binding:"required,uuid"`
	ProjectID   string `json:"project_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Notes       string `json:"notes"`
}

type BalanceResponse struct {
	InstallerID       string `json:"installer_id"`
	AccumulatedAmount int64  `json:"accumulated_amount"`
}

type ApplyDeductionResponse struct {
	RequestID        string `json:"request_id"`
	InstallerID      string `json:"installer_id"`
	PeriodID         string `json:"period_id"`
	Amount           int64  `json:"amount"`
	RemainingBalance int64  `json:"remaining_balance"`
}
