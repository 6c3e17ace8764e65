package project_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jamkie/appneoconcepto-sub000/internal/project"
	projecterrors "github.com/jamkie/appneoconcepto-sub000/internal/project/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeProjectRepository struct {
	withTxFn             func(tx *sql.Tx) project.Repository
	createFn             func(ctx context.Context, p *project.Project) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]project.Project, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*project.Project, error)
	updateFn             func(ctx context.Context, p *project.Project) error
	deleteFn             func(ctx context.Context, companyID, id string) error
	sumApprovedChargesFn func(ctx context.Context, companyID, projectID string) (int64, error)
	countRequestsFn      func(ctx context.Context, companyID, projectID string) (int64, error)
}

func (f *fakeProjectRepository) WithTx(tx *sql.Tx) project.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeProjectRepository) Create(ctx context.Context, p *project.Project) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakeProjectRepository) FindAllByCompany(ctx context.Context, companyID string) ([]project.Project, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeProjectRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*project.Project, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}

func (f *fakeProjectRepository) Update(ctx context.Context, p *project.Project) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}
	return nil
}

func (f *fakeProjectRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakeProjectRepository) SumApprovedCharges(ctx context.Context, companyID, projectID string) (int64, error) {
	if f.sumApprovedChargesFn != nil {
		return f.sumApprovedChargesFn(ctx, companyID, projectID)
	}
	return 0, nil
}

func (f *fakeProjectRepository) CountRequests(ctx context.Context, companyID, projectID string) (int64, error) {
	if f.countRequestsFn != nil {
		return f.countRequestsFn(ctx, companyID, projectID)
	}
	return 0, nil
}

type projectServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service project.Service
	repo    *fakeProjectRepository
}

func setupProjectServiceTest(t *testing.T) *projectServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeProjectRepository{}
	svc := project.NewService(db, repo)

	return &projectServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := project.CreateProjectRequest{
			Name:       "Torre Norte",
			ClientName: "Constructora Apex",
			Budget:     50000000,
		}

		deps.repo.createFn = func(ctx context.Context, p *project.Project) error {
			assert.Equal(t, "Torre Norte", p.Name)
			assert.Equal(t, int64(50000000), p.Budget)
			assert.True(t, p.Active)
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, req)

		assert.NoError(t, err)
		assert.Equal(t, "Torre Norte", resp.Name)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, p *project.Project) error {
			return errors.New(`duplicate key value violates unique constraint "uq_project_name"`)
		}

		_, err := deps.service.Create(ctx, companyID, project.CreateProjectRequest{
			Name:   "Torre Norte",
			Budget: 100,
		})

		assert.ErrorIs(t, err, projecterrors.ErrProjectNameAlreadyExists)
	})
}

func TestProjectService_GetBudget(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	projectID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*project.Project, error) {
			return &project.Project{
				ID:     projectID,
				Name:   "Torre Norte",
				Budget: 1000000,
			}, nil
		}
		deps.repo.sumApprovedChargesFn = func(ctx context.Context, cid, pid string) (int64, error) {
			assert.Equal(t, projectID.String(), pid)
			return 350000, nil
		}

		resp, err := deps.service.GetBudget(ctx, companyID, projectID.String())

		assert.NoError(t, err)
		assert.Equal(t, int64(1000000), resp.Budget)
		assert.Equal(t, int64(350000), resp.ApprovedCharges)
		assert.Equal(t, int64(650000), resp.RemainingBudget)
	})

	t.Run("negative project not found", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*project.Project, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.GetBudget(ctx, companyID, projectID.String())

		assert.ErrorIs(t, err, projecterrors.ErrProjectNotFound)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	projectID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.deleteFn = func(ctx context.Context, cid, id string) error {
			assert.Equal(t, projectID, id)
			return nil
		}

		err := deps.service.Delete(ctx, companyID, projectID)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative existing requests block deletion", func(t *testing.T) {
		deps := setupProjectServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.countRequestsFn = func(ctx context.Context, cid, pid string) (int64, error) {
			return 5, nil
		}

		err := deps.service.Delete(ctx, companyID, projectID)

		assert.ErrorIs(t, err, projecterrors.ErrProjectHasRequests)
	})
}
