package advance

type ApplyAdvanceRequest struct {
	InstallerID string `json:"installer_id" binding:"required,uuid"`
	ProjectID   string `json:"project_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Notes       string `json:"notes"`
}

type AdvanceResponse struct {
	ID              string `json:"id"`
	InstallerID     string `json:"installer_id"`
	ProjectID       string `json:"project_id"`
	OriginalAmount  int64  `json:"original_amount"`
	AvailableAmount int64  `json:"available_amount"`
	SourceRequestID string `json:"source_request_id"`
	CreatedAt       string `json:"created_at"`
}

type InstallerCreditResponse struct {
	InstallerID    string            `json:"installer_id"`
	TotalAvailable int64             `json:"total_available"`
	Advances       []AdvanceResponse `json:"advances"`
}

type ApplyAdvanceResponse struct {
	RequestID   string `json:"request_id"`
	InstallerID string `json:"installer_id"`
	PeriodID    string `json:"period_id"`
	Amount      int64  `json:"amount"`
}
