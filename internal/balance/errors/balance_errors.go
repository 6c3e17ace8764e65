package balanceerrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"No balance recorded for this installer",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeBusinessRule,
		"Deduction exceeds the installer's accumulated balance",
		http.StatusConflict,
	)
	ErrNoOpenPeriod = apperror.New(
		apperror.CodeBusinessRule,
		"No open settlement period to assign the deduction to",
		http.StatusConflict,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Amount must be greater than zero",
		http.StatusBadRequest,
	)
)
