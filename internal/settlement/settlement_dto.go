package settlement

type CreatePeriodRequest struct {
	Name       string `json:"name"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"required,datetime=2006-01-02"`
	AutoAssign bool   `json:"auto_assign"`
}

type UpdatePeriodRequest struct {
	Name string `json:"name" binding:"required"`
}

type ClosePeriodRequest struct {
	Version int `json:"version" binding:"required,min=1"`
	// Per-installer salary overrides for this close only, keyed by
	// installer id. Absent installers settle on their weekly salary.
	EditedSalaries     map[string]int64 `json:"edited_salaries"`
	ExcludedInstallers []string         `json:"excluded_installers"`
}

type ReopenPeriodRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

type PeriodResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	ClosedBy    string `json:"closed_by,omitempty"`
	ClosedAt    string `json:"closed_at,omitempty"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
}

type InstallerSummary struct {
	InstallerID             string `json:"installer_id"`
	InstallerName           string `json:"installer_name"`
	AccumulatedWork         int64  `json:"accumulated_work"`
	Salary                  int64  `json:"salary"`
	PriorBalance            int64  `json:"prior_balance"`
	AdvancesGranted         int64  `json:"advances_granted"`
	AdvancesAvailable       int64  `json:"advances_available"`
	AdvancesManuallyApplied int64  `json:"advances_manually_applied"`
	ToDeposit               int64  `json:"to_deposit"`
	GeneratedBalance        int64  `json:"generated_balance"`
}

type PaymentRecordResponse struct {
	ID           string `json:"id"`
	InstallerID  string `json:"installer_id"`
	ProjectID    string `json:"project_id"`
	Amount       int64  `json:"amount"`
	Method       string `json:"method"`
	DispatchedAt string `json:"dispatched_at,omitempty"`
}

type SummaryResponse struct {
	PeriodID       string                  `json:"period_id"`
	Name           string                  `json:"name"`
	Status         string                  `json:"status"`
	TotalAmount    int64                   `json:"total_amount"`
	Installers     []InstallerSummary      `json:"installers"`
	PaymentRecords []PaymentRecordResponse `json:"payment_records"`
}

type ClosePeriodResponse struct {
	Period    PeriodResponse `json:"period"`
	Settled   int            `json:"settled_installers"`
	Excluded  int            `json:"excluded_installers"`
	Deposited int64          `json:"total_deposited"`
}
