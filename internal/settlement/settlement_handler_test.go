package settlement_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"
	settlementerrors "github.com/jamkie/appneoconcepto-sub000/internal/settlement/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSettlementService struct {
	CreateFn           func(ctx context.Context, companyID, actorID string, req settlement.CreatePeriodRequest) (settlement.PeriodResponse, error)
	GetAllFn           func(ctx context.Context, companyID string) ([]settlement.PeriodResponse, error)
	GetByIDFn          func(ctx context.Context, companyID, id string) (settlement.PeriodResponse, error)
	RenameFn           func(ctx context.Context, companyID, id string, req settlement.UpdatePeriodRequest) (settlement.PeriodResponse, error)
	CloseFn            func(ctx context.Context, companyID, closerID, id string, req settlement.ClosePeriodRequest) (settlement.ClosePeriodResponse, error)
	ReopenFn           func(ctx context.Context, companyID, actorID, id string, req settlement.ReopenPeriodRequest) (settlement.PeriodResponse, error)
	DeleteFn           func(ctx context.Context, companyID, id string) error
	SummaryFn          func(ctx context.Context, companyID, id string) (settlement.SummaryResponse, error)
	DispatchPaymentsFn func(ctx context.Context, companyID, periodID string) (int, error)
}

func (f *fakeSettlementService) Create(ctx context.Context, companyID, actorID string, req settlement.CreatePeriodRequest) (settlement.PeriodResponse, error) {
	return f.CreateFn(ctx, companyID, actorID, req)
}
func (f *fakeSettlementService) GetAll(ctx context.Context, companyID string) ([]settlement.PeriodResponse, error) {
	return f.GetAllFn(ctx, companyID)
}
func (f *fakeSettlementService) GetByID(ctx context.Context, companyID, id string) (settlement.PeriodResponse, error) {
	return f.GetByIDFn(ctx, companyID, id)
}
func (f *fakeSettlementService) Rename(ctx context.Context, companyID, id string, req settlement.UpdatePeriodRequest) (settlement.PeriodResponse, error) {
	return f.RenameFn(ctx, companyID, id, req)
}
func (f *fakeSettlementService) Close(ctx context.Context, companyID, closerID, id string, req settlement.ClosePeriodRequest) (settlement.ClosePeriodResponse, error) {
	return f.CloseFn(ctx, companyID, closerID, id, req)
}
func (f *fakeSettlementService) Reopen(ctx context.Context, companyID, actorID, id string, req settlement.ReopenPeriodRequest) (settlement.PeriodResponse, error) {
	return f.ReopenFn(ctx, companyID, actorID, id, req)
}
func (f *fakeSettlementService) Delete(ctx context.Context, companyID, id string) error {
	return f.DeleteFn(ctx, companyID, id)
}
func (f *fakeSettlementService) Summary(ctx context.Context, companyID, id string) (settlement.SummaryResponse, error) {
	return f.SummaryFn(ctx, companyID, id)
}
func (f *fakeSettlementService) DispatchPayments(ctx context.Context, companyID, periodID string) (int, error) {
	return f.DispatchPaymentsFn(ctx, companyID, periodID)
}

func TestSettlementHandler_Close(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		closerID := uuid.New().String()
		periodID := uuid.New().String()

		svc := &fakeSettlementService{
			CloseFn: func(ctx context.Context, cid, uid, id string, req settlement.ClosePeriodRequest) (settlement.ClosePeriodResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, closerID, uid)
				assert.Equal(t, periodID, id)
				assert.Equal(t, 1, req.Version)
				return settlement.ClosePeriodResponse{
					Period:    settlement.PeriodResponse{ID: id, Status: "CLOSED", Version: 2},
					Settled:   2,
					Deposited: 3500,
				}, nil
			},
		}

		h := settlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"version":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/"+periodID+"/close", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: periodID}}
		c.Set("company_id", companyID)
		c.Set("user_id", closerID)

		h.Close(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "CLOSED")
		assert.Contains(t, w.Body.String(), "3500")
	})

	t.Run("missing version rejected", func(t *testing.T) {
		svc := &fakeSettlementService{}
		h := settlement.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/x/close", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", uuid.New().String())
		c.Set("user_id", uuid.New().String())

		h.Close(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		svc := &fakeSettlementService{
			CloseFn: func(ctx context.Context, cid, uid, id string, req settlement.ClosePeriodRequest) (settlement.ClosePeriodResponse, error) {
				return settlement.ClosePeriodResponse{}, settlementerrors.ErrVersionConflict
			},
		}

		h := settlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/x/close", strings.NewReader(`{"version":1}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Set("company_id", uuid.New().String())
		c.Set("user_id", uuid.New().String())

		h.Close(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeConflict)
	})
}

func TestSettlementHandler_Summary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		periodID := uuid.New().String()

		svc := &fakeSettlementService{
			SummaryFn: func(ctx context.Context, cid, id string) (settlement.SummaryResponse, error) {
				assert.Equal(t, companyID, cid)
				return settlement.SummaryResponse{
					PeriodID: id,
					Status:   "OPEN",
					Installers: []settlement.InstallerSummary{
						{InstallerName: "Ana", ToDeposit: 3500},
					},
				}, nil
			},
		}

		h := settlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/settlements/"+periodID+"/summary", nil)
		c.Params = gin.Params{{Key: "id", Value: periodID}}
		c.Set("company_id", companyID)

		h.Summary(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Ana")
		assert.Contains(t, w.Body.String(), "3500")
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &fakeSettlementService{
			SummaryFn: func(ctx context.Context, cid, id string) (settlement.SummaryResponse, error) {
				return settlement.SummaryResponse{}, settlementerrors.ErrPeriodNotFound
			},
		}

		h := settlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/settlements/x/summary", nil)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Set("company_id", uuid.New().String())

		h.Summary(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeNotFound)
	})
}
