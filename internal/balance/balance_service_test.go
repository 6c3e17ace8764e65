package balance_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jamkie/appneoconcepto-sub000/internal/balance"
	balanceerrors "github.com/jamkie/appneoconcepto-sub000/internal/balance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	withTxFn                 func(tx *sql.Tx) balance.Repository
	findByInstallerFn        func(ctx context.Context, companyID, installerID string) (*balance.Balance, error)
	upsertFn                 func(ctx context.Context, b *balance.Balance) error
	findOpenPeriodIDFn       func(ctx context.Context, companyID string) (string, error)
	createDeductionRequestFn func(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) FindByInstaller(ctx context.Context, companyID, installerID string) (*balance.Balance, error) {
	if f.findByInstallerFn != nil {
		return f.findByInstallerFn(ctx, companyID, installerID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) Upsert(ctx context.Context, b *balance.Balance) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) FindOpenPeriodID(ctx context.Context, companyID string) (string, error) {
	if f.findOpenPeriodIDFn != nil {
		return f.findOpenPeriodIDFn(ctx, companyID)
	}
	return "", nil
}

func (f *fakeBalanceRepository) CreateDeductionRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error) {
	if f.createDeductionRequestFn != nil {
		return f.createDeductionRequestFn(ctx, companyID, installerID, projectID, periodID, actorID, amount, notes)
	}
	return uuid.New().String(), nil
}

type balanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service balance.Service
	repo    *fakeBalanceRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBalanceRepository{}
	svc := balance.NewService(db, repo)

	return &balanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func beginTestTx(t *testing.T, deps *balanceServiceDeps) *sql.Tx {
	t.Helper()
	deps.sqlMock.ExpectBegin()
	tx, err := deps.db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	return tx
}

func TestBalanceService_ApplyDeduction(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	installerID := uuid.New()
	projectID := uuid.New().String()
	periodID := uuid.New().String()

	t.Run("success subtracts at apply time", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return periodID, nil
		}
		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{
				ID:                uuid.New(),
				CompanyID:         uuid.MustParse(companyID),
				InstallerID:       installerID,
				AccumulatedAmount: 800,
			}, nil
		}
		deps.repo.upsertFn = func(ctx context.Context, b *balance.Balance) error {
			assert.Equal(t, int64(500), b.AccumulatedAmount)
			return nil
		}
		requestID := uuid.New().String()
		deps.repo.createDeductionRequestFn = func(ctx context.Context, cid, iid, pid, perID, aid string, amount int64, notes string) (string, error) {
			assert.Equal(t, periodID, perID)
			assert.Equal(t, int64(300), amount)
			return requestID, nil
		}

		resp, err := deps.service.ApplyDeduction(ctx, companyID, actorID, balance.ApplyDeductionRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      300,
		})

		assert.NoError(t, err)
		assert.Equal(t, requestID, resp.RequestID)
		assert.Equal(t, int64(500), resp.RemainingBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative deduction exceeds balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return periodID, nil
		}
		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{AccumulatedAmount: 200}, nil
		}

		_, err := deps.service.ApplyDeduction(ctx, companyID, actorID, balance.ApplyDeductionRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      300,
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})

	t.Run("negative no balance row", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return periodID, nil
		}

		_, err := deps.service.ApplyDeduction(ctx, companyID, actorID, balance.ApplyDeductionRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      100,
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})

	t.Run("negative no open period", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.ApplyDeduction(ctx, companyID, actorID, balance.ApplyDeductionRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      100,
		})

		assert.ErrorIs(t, err, balanceerrors.ErrNoOpenPeriod)
	})
}

func TestBalanceService_Restore(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New().String()

	t.Run("adds to existing balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{AccumulatedAmount: 150}, nil
		}
		deps.repo.upsertFn = func(ctx context.Context, b *balance.Balance) error {
			assert.Equal(t, int64(450), b.AccumulatedAmount)
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.Restore(ctx, tx, companyID, installerID, 300)

		assert.NoError(t, err)
	})

	t.Run("creates row when absent", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.upsertFn = func(ctx context.Context, b *balance.Balance) error {
			assert.Equal(t, int64(300), b.AccumulatedAmount)
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.Restore(ctx, tx, companyID, installerID, 300)

		assert.NoError(t, err)
	})
}

func TestBalanceService_DecreaseClamped(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New().String()

	t.Run("clamps at zero", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{AccumulatedAmount: 200}, nil
		}
		deps.repo.upsertFn = func(ctx context.Context, b *balance.Balance) error {
			assert.Equal(t, int64(0), b.AccumulatedAmount)
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.DecreaseClamped(ctx, tx, companyID, installerID, 500)

		assert.NoError(t, err)
	})

	t.Run("subtracts exactly when within balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{AccumulatedAmount: 700}, nil
		}
		deps.repo.upsertFn = func(ctx context.Context, b *balance.Balance) error {
			assert.Equal(t, int64(200), b.AccumulatedAmount)
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.DecreaseClamped(ctx, tx, companyID, installerID, 500)

		assert.NoError(t, err)
	})
}

func TestBalanceService_GetByInstaller(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New().String()

	t.Run("absent row reads as zero", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		resp, err := deps.service.GetByInstaller(ctx, companyID, installerID)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), resp.AccumulatedAmount)
	})

	t.Run("existing row", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByInstallerFn = func(ctx context.Context, cid, iid string) (*balance.Balance, error) {
			return &balance.Balance{AccumulatedAmount: 1234}, nil
		}

		resp, err := deps.service.GetByInstaller(ctx, companyID, installerID)

		assert.NoError(t, err)
		assert.Equal(t, int64(1234), resp.AccumulatedAmount)
	})
}
