package project

type CreateProjectRequest struct {
	Name       string `json:"name" binding:"required"`
	ClientName string `json:"client_name"`
	Budget     int64  `json:"budget" binding:"required,gt=0"`
}

type UpdateProjectRequest struct {
	Name       string `json:"name" binding:"required"`
	ClientName string `json:"client_name"`
	Budget     int64  `json:"budget" binding:"required,gt=0"`
}

type ProjectResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"client_name,omitempty"`
	Budget     int64  `json:"budget"`
	Active     bool   `json:"active"`
	CompanyID  string `json:"company_id"`
}

type ProjectBudgetResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Budget          int64  `json:"budget"`
	ApprovedCharges int64  `json:"approved_charges"`
	RemainingBudget int64  `json:"remaining_budget"`
}
