package settlementerrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Settlement period not found",
		http.StatusNotFound,
	)
	ErrPeriodNotOpen = apperror.New(
		apperror.CodeInvalidState,
		"Settlement period is not open",
		http.StatusConflict,
	)
	ErrPeriodNotClosed = apperror.New(
		apperror.CodeInvalidState,
		"Settlement period is not closed",
		http.StatusConflict,
	)
	ErrNothingToSettle = apperror.New(
		apperror.CodeInvalidState,
		"No settleable activity in this period",
		http.StatusConflict,
	)
	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"Settlement period was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrPeriodNotEmpty = apperror.New(
		apperror.CodeInvalidState,
		"Settlement period still has assigned requests or a settled total",
		http.StatusConflict,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"Period end date must not precede the start date",
		http.StatusBadRequest,
	)
)
