package advance

import (
	"net/http"

	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("advance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("advance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("advance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("user_id")
	h.logger.Debug("http apply advance", zap.String("company_id", companyID))
	var req ApplyAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http apply advance validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetInstallerCredit(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	installerID := c.Param("installerId")
	h.logger.Debug("http get installer credit",
		zap.String("company_id", companyID),
		zap.String("installer_id", installerID),
	)

	resp, err := h.service.GetInstallerCredit(ctx, companyID, installerID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
