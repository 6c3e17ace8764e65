package installer_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/installer"
	installererrors "github.com/jamkie/appneoconcepto-sub000/internal/installer/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeInstallerRepository struct {
	withTxFn                  func(tx *sql.Tx) installer.Repository
	createFn                  func(ctx context.Context, inst *installer.Installer) error
	findAllByCompanyFn        func(ctx context.Context, companyID string) ([]installer.Installer, error)
	findActiveByCompanyFn     func(ctx context.Context, companyID string) ([]installer.Installer, error)
	findByIDAndCompanyFn      func(ctx context.Context, companyID, id string) (*installer.Installer, error)
	updateFn                  func(ctx context.Context, inst *installer.Installer) error
	countPendingRequestsFn    func(ctx context.Context, companyID, installerID string) (int64, error)
	countOpenPeriodRequestsFn func(ctx context.Context, companyID, installerID string) (int64, error)
	getBalanceAmountFn        func(ctx context.Context, companyID, installerID string) (int64, error)
}

func (f *fakeInstallerRepository) WithTx(tx *sql.Tx) installer.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeInstallerRepository) Create(ctx context.Context, inst *installer.Installer) error {
	if f.createFn != nil {
		return f.createFn(ctx, inst)
	}
	return nil
}

func (f *fakeInstallerRepository) FindAllByCompany(ctx context.Context, companyID string) ([]installer.Installer, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeInstallerRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]installer.Installer, error) {
	if f.findActiveByCompanyFn != nil {
		return f.findActiveByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeInstallerRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*installer.Installer, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}

func (f *fakeInstallerRepository) Update(ctx context.Context, inst *installer.Installer) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, inst)
	}
	return nil
}

func (f *fakeInstallerRepository) CountPendingRequests(ctx context.Context, companyID, installerID string) (int64, error) {
	if f.countPendingRequestsFn != nil {
		return f.countPendingRequestsFn(ctx, companyID, installerID)
	}
	return 0, nil
}

func (f *fakeInstallerRepository) CountOpenPeriodRequests(ctx context.Context, companyID, installerID string) (int64, error) {
	if f.countOpenPeriodRequestsFn != nil {
		return f.countOpenPeriodRequestsFn(ctx, companyID, installerID)
	}
	return 0, nil
}

func (f *fakeInstallerRepository) GetBalanceAmount(ctx context.Context, companyID, installerID string) (int64, error) {
	if f.getBalanceAmountFn != nil {
		return f.getBalanceAmountFn(ctx, companyID, installerID)
	}
	return 0, nil
}

type fakeCounterRepository struct {
	getNextValueFn func(ctx context.Context, companyID string, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	if f.getNextValueFn != nil {
		return f.getNextValueFn(ctx, companyID, counterType)
	}
	return 1, nil
}

type installerServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   installer.Service
	repo      *fakeInstallerRepository
	counter   *fakeCounterRepository
	redisMock redismock.ClientMock
}

func setupInstallerServiceTest(t *testing.T) *installerServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeInstallerRepository{}
	counterRepo := &fakeCounterRepository{}
	svc := installer.NewService(db, repo, counterRepo, rdb)

	return &installerServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		counter:   counterRepo,
		redisMock: redisMock,
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

func TestInstallerService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success - auto generate installer number", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := installer.CreateInstallerRequest{
			FullName:     "Marco Delgado",
			WeeklySalary: 250000,
		}

		deps.counter.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, "installer_number", counterType)
			return 42, nil
		}
		deps.repo.createFn = func(ctx context.Context, inst *installer.Installer) error {
			assert.Equal(t, "Marco Delgado", inst.FullName)
			assert.Equal(t, "INST-000042", inst.InstallerNumber)
			assert.Equal(t, int64(250000), inst.WeeklySalary)
			assert.True(t, inst.Active)
			return nil
		}
		deps.redisMock.ExpectDel(installer.GetInstallerOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, req)

		assert.NoError(t, err)
		assert.Equal(t, "INST-000042", resp.InstallerNumber)
		assert.True(t, resp.Active)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success - explicit installer number skips counter", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := installer.CreateInstallerRequest{
			FullName:        "Luis Peña",
			InstallerNumber: "INST-900001",
			WeeklySalary:    180000,
		}

		deps.counter.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
			t.Fatal("counter should not be used when installer number is provided")
			return 0, nil
		}
		deps.redisMock.ExpectDel(installer.GetInstallerOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, req)

		assert.NoError(t, err)
		assert.Equal(t, "INST-900001", resp.InstallerNumber)
	})

	t.Run("negative duplicate installer number", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		req := installer.CreateInstallerRequest{
			FullName:        "Marco Delgado",
			InstallerNumber: "INST-000042",
			WeeklySalary:    250000,
		}

		deps.repo.createFn = func(ctx context.Context, inst *installer.Installer) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_installer_number"}
		}

		_, err := deps.service.Create(ctx, companyID, req)

		assert.Error(t, err)
		assert.ErrorIs(t, err, installererrors.ErrInstallerNumberAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestInstallerService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		companyID := uuid.New().String()
		cacheKey := installer.GetInstallerOptionsKey(companyID)
		expected := []installer.InstallerResponse{
			{ID: uuid.New().String(), FullName: "Marco Delgado", InstallerNumber: "INST-000001"},
		}
		jsonResp, _ := json.Marshal(expected)
		deps.redisMock.ExpectGet(cacheKey).SetVal(string(jsonResp))

		deps.repo.findActiveByCompanyFn = func(ctx context.Context, cid string) ([]installer.Installer, error) {
			t.Fatal("repository should not be hit on cache hit")
			return nil, nil
		}

		resp, err := deps.service.GetOptions(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Marco Delgado", resp[0].FullName)
	})

	t.Run("cache miss falls through to repository", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		companyID := uuid.New().String()
		cacheKey := installer.GetInstallerOptionsKey(companyID)
		deps.redisMock.ExpectGet(cacheKey).RedisNil()

		insts := []installer.Installer{
			{ID: uuid.New(), FullName: "Luis Peña", InstallerNumber: "INST-000002", Active: true},
		}
		deps.repo.findActiveByCompanyFn = func(ctx context.Context, cid string) ([]installer.Installer, error) {
			assert.Equal(t, companyID, cid)
			return insts, nil
		}
		deps.redisMock.Regexp().ExpectSet(cacheKey, `.*`, 1*time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "INST-000002", resp[0].InstallerNumber)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		companyID := uuid.New().String()
		deps.redisMock.ExpectGet(installer.GetInstallerOptionsKey(companyID)).RedisNil()
		deps.repo.findActiveByCompanyFn = func(ctx context.Context, cid string) ([]installer.Installer, error) {
			return nil, errors.New("database connection lost")
		}

		resp, err := deps.service.GetOptions(ctx, companyID)

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestInstallerService_Deactivate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New()

	existing := func() *installer.Installer {
		return &installer.Installer{
			ID:           installerID,
			CompanyID:    uuid.MustParse(companyID),
			FullName:     "Marco Delgado",
			WeeklySalary: 250000,
			Active:       true,
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return existing(), nil
		}
		deps.repo.updateFn = func(ctx context.Context, inst *installer.Installer) error {
			assert.False(t, inst.Active)
			return nil
		}
		deps.redisMock.ExpectDel(installer.GetInstallerOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Deactivate(ctx, companyID, installerID.String())

		assert.NoError(t, err)
		assert.False(t, resp.Active)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative pending requests block deactivation", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return existing(), nil
		}
		deps.repo.countPendingRequestsFn = func(ctx context.Context, cid, iid string) (int64, error) {
			return 2, nil
		}

		_, err := deps.service.Deactivate(ctx, companyID, installerID.String())

		assert.ErrorIs(t, err, installererrors.ErrInstallerHasPendingRequests)
	})

	t.Run("negative open period activity blocks deactivation", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return existing(), nil
		}
		deps.repo.countOpenPeriodRequestsFn = func(ctx context.Context, cid, iid string) (int64, error) {
			return 1, nil
		}

		_, err := deps.service.Deactivate(ctx, companyID, installerID.String())

		assert.ErrorIs(t, err, installererrors.ErrInstallerHasOpenPeriodActivity)
	})

	t.Run("negative outstanding balance blocks deactivation", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return existing(), nil
		}
		deps.repo.getBalanceAmountFn = func(ctx context.Context, cid, iid string) (int64, error) {
			return 7500, nil
		}

		_, err := deps.service.Deactivate(ctx, companyID, installerID.String())

		assert.ErrorIs(t, err, installererrors.ErrInstallerHasOutstandingBalance)
	})
}

func TestInstallerService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	installerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := installer.UpdateInstallerRequest{
			FullName:     "Marco Delgado Jr",
			Phone:        "5512345678",
			WeeklySalary: 300000,
		}

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return &installer.Installer{
				ID:        installerID,
				CompanyID: companyID,
				FullName:  "Marco Delgado",
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, inst *installer.Installer) error {
			assert.Equal(t, "Marco Delgado Jr", inst.FullName)
			assert.Equal(t, int64(300000), inst.WeeklySalary)
			return nil
		}
		deps.redisMock.ExpectDel(installer.GetInstallerOptionsKey(companyID.String())).SetVal(1)

		resp, err := deps.service.Update(ctx, companyID.String(), installerID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, "Marco Delgado Jr", resp.FullName)
	})

	t.Run("negative installer not found", func(t *testing.T) {
		deps := setupInstallerServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*installer.Installer, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Update(ctx, companyID.String(), installerID.String(), installer.UpdateInstallerRequest{
			FullName:     "X",
			WeeklySalary: 1,
		})

		assert.ErrorIs(t, err, installererrors.ErrInstallerNotFound)
	})
}
