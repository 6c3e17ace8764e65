package installererrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrInstallerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Installer not found",
		http.StatusNotFound,
	)
	ErrInstallerNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Installer number already exists in this company",
		http.StatusConflict,
	)
	ErrInstallerInactive = apperror.New(
		apperror.CodeBusinessRule,
		"Installer is deactivated",
		http.StatusConflict,
	)
	ErrInstallerHasPendingRequests = apperror.New(
		apperror.CodeBusinessRule,
		"Installer has pending requests and cannot be deactivated",
		http.StatusConflict,
	)
	ErrInstallerHasOpenPeriodActivity = apperror.New(
		apperror.CodeBusinessRule,
		"Installer has requests in an open settlement period and cannot be deactivated",
		http.StatusConflict,
	)
	ErrInstallerHasOutstandingBalance = apperror.New(
		apperror.CodeBusinessRule,
		"Installer has an outstanding balance and cannot be deactivated",
		http.StatusConflict,
	)
	ErrInvalidInstallerID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid installer ID",
		http.StatusBadRequest,
	)
)
