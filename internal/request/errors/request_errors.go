package requesterrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payment request not found",
		http.StatusNotFound,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Settlement period not found",
		http.StatusNotFound,
	)
	ErrInvalidRequestType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid request type",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending requests can be approved or rejected",
		http.StatusConflict,
	)
	ErrNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"Only approved requests can be assigned to a period",
		http.StatusConflict,
	)
	ErrAlreadyAssigned = apperror.New(
		apperror.CodeInvalidState,
		"Request is already assigned to a period",
		http.StatusConflict,
	)
	ErrNotAssigned = apperror.New(
		apperror.CodeInvalidState,
		"Request is not assigned to a period",
		http.StatusConflict,
	)
	ErrPeriodNotOpen = apperror.New(
		apperror.CodeInvalidState,
		"Settlement period is not open",
		http.StatusConflict,
	)
	ErrBudgetExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"Approving this request would exceed the project budget",
		http.StatusBadRequest,
	)
	ErrDeleteNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"Only pending unassigned requests can be deleted",
		http.StatusConflict,
	)
)
