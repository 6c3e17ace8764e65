package advanceerrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrAdvanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Advance not found",
		http.StatusNotFound,
	)
	ErrInsufficientAdvance = apperror.New(
		apperror.CodeInsufficientAdvance,
		"Requested amount exceeds the installer's available advance credit",
		http.StatusUnprocessableEntity,
	)
	ErrAdvanceAlreadyIssued = apperror.New(
		apperror.CodeConflict,
		"An advance was already issued for this request",
		http.StatusConflict,
	)
	ErrNoOpenPeriod = apperror.New(
		apperror.CodeBusinessRule,
		"No open settlement period to assign the application to",
		http.StatusConflict,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Amount must be greater than zero",
		http.StatusBadRequest,
	)
)
