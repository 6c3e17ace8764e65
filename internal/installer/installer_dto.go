package installer

type CreateInstallerRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	InstallerNumber string `json:"installer_number"`
	Phone           string `json:"phone"`
	WeeklySalary    int64  `json:"weekly_salary" binding:"required,gt=0"`
}

type UpdateInstallerRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone"`
	WeeklySalary int64  `json:"weekly_salary" binding:"required,gt=0"`
}

type InstallerResponse struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	InstallerNumber string `json:"installer_number"`
	Phone           string `json:"phone,omitempty"`
	WeeklySalary    int64  `json:"weekly_salary"`
	Active          bool   `json:"active"`
	CompanyID       string `json:"company_id"`
}
