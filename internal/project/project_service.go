package project

import (
	"context"
	"database/sql"

	projecterrors "github.com/jamkie/appneoconcepto-sub000/internal/project/errors"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=project_service.go -destination=mock/project_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateProjectRequest) (ProjectResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ProjectResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ProjectResponse, error)
	GetBudget(ctx context.Context, companyID, id string) (ProjectBudgetResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateProjectRequest) (ProjectResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("project.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("project.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateProjectRequest,
) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create project requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("name", req.Name),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create project begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p := &Project{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		Name:       req.Name,
		ClientName: req.ClientName,
		Budget:     req.Budget,
		Active:     true,
	}

	if err := qtx.Create(ctx, p); err != nil {
		s.logger.Error("create project persist failed", zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create project commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("create project success",
		zap.String("request_id", rid),
		zap.String("project_id", p.ID.String()),
	)

	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ProjectResponse, error) {
	s.logger.Debug("get all projects requested", zap.String("company_id", companyID))
	projects, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all projects failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(projects), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ProjectResponse, error) {
	s.logger.Debug("get project by id requested",
		zap.String("company_id", companyID),
		zap.String("project_id", id),
	)
	p, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get project by id failed", zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*p), nil
}

func (s *service) GetBudget(ctx context.Context, companyID, id string) (ProjectBudgetResponse, error) {
	s.logger.Debug("get project budget requested",
		zap.String("company_id", companyID),
		zap.String("project_id", id),
	)

	p, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get project budget fetch failed", zap.Error(err))
		return ProjectBudgetResponse{}, mapRepositoryError(err)
	}

	charges, err := s.repo.SumApprovedCharges(ctx, companyID, id)
	if err != nil {
		s.logger.Error("get project budget sum charges failed", zap.Error(err))
		return ProjectBudgetResponse{}, err
	}

	return ProjectBudgetResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Budget:          p.Budget,
		ApprovedCharges: charges,
		RemainingBudget: p.Budget - charges,
	}, nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateProjectRequest,
) (ProjectResponse, error) {
	s.logger.Debug("update project requested",
		zap.String("company_id", companyID),
		zap.String("project_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update project begin tx failed", zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Error("update project fetch existing failed", zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	p.Name = req.Name
	p.ClientName = req.ClientName
	p.Budget = req.Budget

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("update project persist failed", zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update project commit failed", zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("update project success", zap.String("project_id", id))

	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	s.logger.Debug("delete project requested",
		zap.String("company_id", companyID),
		zap.String("project_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete project begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	requests, err := qtx.CountRequests(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete project count requests failed", zap.Error(err))
		return err
	}
	if requests > 0 {
		s.logger.Warn("delete project blocked by existing requests",
			zap.String("project_id", id),
			zap.Int64("requests", requests),
		)
		return projecterrors.ErrProjectHasRequests
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete project failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete project commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete project success", zap.String("project_id", id))
	return nil
}

func mapToResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		ClientName: p.ClientName,
		Budget:     p.Budget,
		Active:     p.Active,
		CompanyID:  p.CompanyID.String(),
	}
}

func mapToListResponse(projects []Project) []ProjectResponse {
	res := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		res[i] = mapToResponse(p)
	}
	return res
}
