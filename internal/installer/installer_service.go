package installer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	installererrors "github.com/jamkie/appneoconcepto-sub000/internal/installer/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const InstallerOptionsKeyPrefix = "installers:options:"

func GetInstallerOptionsKey(companyID string) string {
	return InstallerOptionsKeyPrefix + companyID
}

//go:generate mockgen -source=installer_service.go -destination=mock/installer_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateInstallerRequest) (InstallerResponse, error)
	GetAll(ctx context.Context, companyID string) ([]InstallerResponse, error)
	GetOptions(ctx context.Context, companyID string) ([]InstallerResponse, error)
	GetByID(ctx context.Context, companyID, id string) (InstallerResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateInstallerRequest) (InstallerResponse, error)
	Deactivate(ctx context.Context, companyID, id string) (InstallerResponse, error)
	Reactivate(ctx context.Context, companyID, id string) (InstallerResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("installer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("installer.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateInstallerRequest,
) (InstallerResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create installer requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("full_name", req.FullName),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create installer begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return InstallerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if req.InstallerNumber == "" {
		nextVal, err := s.counter.GetNextValue(ctx, companyID, "installer_number")
		if err != nil {
			s.logger.Error("create installer generate number failed", zap.Error(err))
			return InstallerResponse{}, err
		}
		req.InstallerNumber = fmt.Sprintf("INST-%06d", nextVal)
	}

	inst := &Installer{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(companyID),
		FullName:        req.FullName,
		InstallerNumber: req.InstallerNumber,
		Phone:           req.Phone,
		WeeklySalary:    req.WeeklySalary,
		Active:          true,
	}

	if err := qtx.Create(ctx, inst); err != nil {
		s.logger.Error("create installer persist failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create installer commit failed", zap.String("request_id", rid), zap.Error(err))
		return InstallerResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)

	s.logger.Info("create installer success",
		zap.String("request_id", rid),
		zap.String("installer_id", inst.ID.String()),
		zap.String("installer_number", inst.InstallerNumber),
	)

	return mapToResponse(*inst), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]InstallerResponse, error) {
	s.logger.Debug("get all installers requested", zap.String("company_id", companyID))
	insts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all installers failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(insts), nil
}

func (s *service) GetOptions(ctx context.Context, companyID string) ([]InstallerResponse, error) {
	cacheKey := GetInstallerOptionsKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []InstallerResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Collapse concurrent misses into a single DB hit.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		insts, err := s.repo.FindActiveByCompany(ctx, companyID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(insts)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]InstallerResponse), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (InstallerResponse, error) {
	s.logger.Debug("get installer by id requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", id),
	)
	inst, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get installer by id failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*inst), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateInstallerRequest,
) (InstallerResponse, error) {
	s.logger.Debug("update installer requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update installer begin tx failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inst, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("update installer fetch existing failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	inst.FullName = req.FullName
	inst.Phone = req.Phone
	inst.WeeklySalary = req.WeeklySalary

	if err := qtx.Update(ctx, inst); err != nil {
		s.logger.Error("update installer persist failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update installer commit failed", zap.Error(err))
		return InstallerResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)

	s.logger.Info("update installer success", zap.String("installer_id", id))

	return mapToResponse(*inst), nil
}

// Deactivate refuses while the installer still has pending requests,
// requests sitting in an open settlement period, or a nonzero balance.
func (s *service) Deactivate(ctx context.Context, companyID, id string) (InstallerResponse, error) {
	s.logger.Debug("deactivate installer requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("deactivate installer begin tx failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inst, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("deactivate installer fetch failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	pending, err := qtx.CountPendingRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("deactivate installer count pending failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	if pending > 0 {
		s.logger.Warn("deactivate installer blocked by pending requests",
			zap.String("installer_id", id),
			zap.Int64("pending", pending),
		)
		return InstallerResponse{}, installererrors.ErrInstallerHasPendingRequests
	}

	openPeriod, err := qtx.CountOpenPeriodRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("deactivate installer count open period failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	if openPeriod > 0 {
		s.logger.Warn("deactivate installer blocked by open period activity",
			zap.String("installer_id", id),
			zap.Int64("requests", openPeriod),
		)
		return InstallerResponse{}, installererrors.ErrInstallerHasOpenPeriodActivity
	}

	balance, err := qtx.GetBalanceAmount(ctx, companyID, id)
	if err != nil {
		s.logger.Error("deactivate installer balance lookup failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	if balance != 0 {
		s.logger.Warn("deactivate installer blocked by outstanding balance",
			zap.String("installer_id", id),
			zap.Int64("balance", balance),
		)
		return InstallerResponse{}, installererrors.ErrInstallerHasOutstandingBalance
	}

	inst.Active = false
	if err := qtx.Update(ctx, inst); err != nil {
		s.logger.Error("deactivate installer persist failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("deactivate installer commit failed", zap.Error(err))
		return InstallerResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)

	s.logger.Info("deactivate installer success", zap.String("installer_id", id))

	return mapToResponse(*inst), nil
}

func (s *service) Reactivate(ctx context.Context, companyID, id string) (InstallerResponse, error) {
	s.logger.Debug("reactivate installer requested",
		zap.String("company_id", companyID),
		zap.String("installer_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reactivate installer begin tx failed", zap.Error(err))
		return InstallerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inst, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reactivate installer fetch failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	inst.Active = true
	if err := qtx.Update(ctx, inst); err != nil {
		s.logger.Error("reactivate installer persist failed", zap.Error(err))
		return InstallerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reactivate installer commit failed", zap.Error(err))
		return InstallerResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)

	s.logger.Info("reactivate installer success", zap.String("installer_id", id))

	return mapToResponse(*inst), nil
}

func (s *service) invalidateOptions(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetInstallerOptionsKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate installer options cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func mapToResponse(inst Installer) InstallerResponse {
	return InstallerResponse{
		ID:              inst.ID.String(),
		FullName:        inst.FullName,
		InstallerNumber: inst.InstallerNumber,
		Phone:           inst.Phone,
		WeeklySalary:    inst.WeeklySalary,
		Active:          inst.Active,
		CompanyID:       inst.CompanyID.String(),
	}
}

func mapToListResponse(insts []Installer) []InstallerResponse {
	res := make([]InstallerResponse, len(insts))
	for i, inst := range insts {
		res[i] = mapToResponse(inst)
	}
	return res
}
