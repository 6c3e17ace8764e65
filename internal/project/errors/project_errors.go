package projecterrors

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
)

var (
	ErrProjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"Project not found",
		http.StatusNotFound,
	)
	ErrProjectNameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Project with the same name already exists",
		http.StatusConflict,
	)
	ErrProjectBudgetExceeded = apperror.New(
		apperror.CodeBusinessRule,
		"Approving this request would exceed the project budget",
		http.StatusConflict,
	)
	ErrProjectHasRequests = apperror.New(
		apperror.CodeBusinessRule,
		"Project has requests and cannot be deleted",
		http.StatusConflict,
	)
	ErrInvalidProjectID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid project ID",
		http.StatusBadRequest,
	)
)
