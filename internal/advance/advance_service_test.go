package advance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jamkie/appneoconcepto-sub000/internal/advance"
	advanceerrors "github.com/jamkie/appneoconcepto-sub000/internal/advance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeAdvanceRepository struct {
	withTxFn                   func(tx *sql.Tx) advance.Repository
	createFn                   func(ctx context.Context, adv *advance.Advance) error
	listByInstallerFIFOFn      func(ctx context.Context, companyID, installerID string) ([]advance.Advance, error)
	updateAvailableFn          func(ctx context.Context, id string, available int64) error
	existsBySourceRequestFn    func(ctx context.Context, companyID, sourceRequestID string) (bool, error)
	deleteBySourceRequestsFn   func(ctx context.Context, companyID string, sourceRequestIDs []string) error
	sumAvailableFn             func(ctx context.Context, companyID, installerID string) (int64, error)
	findOpenPeriodIDFn         func(ctx context.Context, companyID string) (string, error)
	createApplicationRequestFn func(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error)
}

func (f *fakeAdvanceRepository) WithTx(tx *sql.Tx) advance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeAdvanceRepository) Create(ctx context.Context, adv *advance.Advance) error {
	if f.createFn != nil {
		return f.createFn(ctx, adv)
	}
	return nil
}

func (f *fakeAdvanceRepository) ListByInstallerFIFO(ctx context.Context, companyID, installerID string) ([]advance.Advance, error) {
	if f.listByInstallerFIFOFn != nil {
		return f.listByInstallerFIFOFn(ctx, companyID, installerID)
	}
	return nil, nil
}

func (f *fakeAdvanceRepository) UpdateAvailable(ctx context.Context, id string, available int64) error {
	if f.updateAvailableFn != nil {
		return f.updateAvailableFn(ctx, id, available)
	}
	return nil
}

func (f *fakeAdvanceRepository) ExistsBySourceRequest(ctx context.Context, companyID, sourceRequestID string) (bool, error) {
	if f.existsBySourceRequestFn != nil {
		return f.existsBySourceRequestFn(ctx, companyID, sourceRequestID)
	}
	return false, nil
}

func (f *fakeAdvanceRepository) DeleteBySourceRequests(ctx context.Context, companyID string, sourceRequestIDs []string) error {
	if f.deleteBySourceRequestsFn != nil {
		return f.deleteBySourceRequestsFn(ctx, companyID, sourceRequestIDs)
	}
	return nil
}

func (f *fakeAdvanceRepository) SumAvailable(ctx context.Context, companyID, installerID string) (int64, error) {
	if f.sumAvailableFn != nil {
		return f.sumAvailableFn(ctx, companyID, installerID)
	}
	return 0, nil
}

func (f *fakeAdvanceRepository) FindOpenPeriodID(ctx context.Context, companyID string) (string, error) {
	if f.findOpenPeriodIDFn != nil {
		return f.findOpenPeriodIDFn(ctx, companyID)
	}
	return "", nil
}

func (f *fakeAdvanceRepository) CreateApplicationRequest(ctx context.Context, companyID, installerID, projectID, periodID, actorID string, amount int64, notes string) (string, error) {
	if f.createApplicationRequestFn != nil {
		return f.createApplicationRequestFn(ctx, companyID, installerID, projectID, periodID, actorID, amount, notes)
	}
	return uuid.New().String(), nil
}

type advanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service advance.Service
	repo    *fakeAdvanceRepository
}

func setupAdvanceServiceTest(t *testing.T) *advanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAdvanceRepository{}
	svc := advance.NewService(db, repo)

	return &advanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

// beginTestTx hands the ledger methods a live tx over the mocked driver.
func beginTestTx(t *testing.T, deps *advanceServiceDeps) *sql.Tx {
	t.Helper()
	deps.sqlMock.ExpectBegin()
	tx, err := deps.db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	return tx
}

func twoAdvances(installerID uuid.UUID, availableA, availableB int64) []advance.Advance {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return []advance.Advance{
		{
			ID:              uuid.New(),
			InstallerID:     installerID,
			OriginalAmount:  1000,
			AvailableAmount: availableA,
			CreatedAt:       base,
		},
		{
			ID:              uuid.New(),
			InstallerID:     installerID,
			OriginalAmount:  500,
			AvailableAmount: availableB,
			CreatedAt:       base.Add(24 * time.Hour),
		},
	}
}

func TestAdvanceService_ConsumeFIFO(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New()

	t.Run("drains oldest advance first", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		advances := twoAdvances(installerID, 1000, 500)
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return advances, nil
		}

		updates := map[string]int64{}
		deps.repo.updateAvailableFn = func(ctx context.Context, id string, available int64) error {
			updates[id] = available
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.ConsumeFIFO(ctx, tx, companyID, installerID.String(), 1200)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), updates[advances[0].ID.String()])
		assert.Equal(t, int64(300), updates[advances[1].ID.String()])
	})

	t.Run("exact drain of a single advance stops there", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		advances := twoAdvances(installerID, 1000, 500)
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return advances, nil
		}

		updates := map[string]int64{}
		deps.repo.updateAvailableFn = func(ctx context.Context, id string, available int64) error {
			updates[id] = available
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.ConsumeFIFO(ctx, tx, companyID, installerID.String(), 1000)

		assert.NoError(t, err)
		assert.Len(t, updates, 1)
		assert.Equal(t, int64(0), updates[advances[0].ID.String()])
	})

	t.Run("negative insufficient credit", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return twoAdvances(installerID, 1000, 500), nil
		}
		deps.repo.updateAvailableFn = func(ctx context.Context, id string, available int64) error {
			t.Fatal("no advance should be touched when credit is insufficient")
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.ConsumeFIFO(ctx, tx, companyID, installerID.String(), 1501)

		assert.ErrorIs(t, err, advanceerrors.ErrInsufficientAdvance)
	})

	t.Run("negative zero amount", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		tx := beginTestTx(t, deps)
		err := deps.service.ConsumeFIFO(ctx, tx, companyID, installerID.String(), 0)

		assert.ErrorIs(t, err, advanceerrors.ErrInvalidAmount)
	})
}

func TestAdvanceService_RestoreFIFO(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New()

	t.Run("refills oldest first up to original amount", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		advances := twoAdvances(installerID, 0, 300)
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return advances, nil
		}

		updates := map[string]int64{}
		deps.repo.updateAvailableFn = func(ctx context.Context, id string, available int64) error {
			updates[id] = available
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.RestoreFIFO(ctx, tx, companyID, installerID.String(), 1200)

		assert.NoError(t, err)
		assert.Equal(t, int64(1000), updates[advances[0].ID.String()])
		assert.Equal(t, int64(500), updates[advances[1].ID.String()])
	})

	t.Run("restore beyond headroom is discarded", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		advances := twoAdvances(installerID, 900, 500)
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return advances, nil
		}

		updates := map[string]int64{}
		deps.repo.updateAvailableFn = func(ctx context.Context, id string, available int64) error {
			updates[id] = available
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.RestoreFIFO(ctx, tx, companyID, installerID.String(), 500)

		assert.NoError(t, err)
		assert.Len(t, updates, 1)
		assert.Equal(t, int64(1000), updates[advances[0].ID.String()])
	})
}

func TestAdvanceService_IssueAvailableCredit(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	installerID := uuid.New().String()
	projectID := uuid.New().String()
	sourceRequestID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.createFn = func(ctx context.Context, adv *advance.Advance) error {
			assert.Equal(t, int64(2500), adv.OriginalAmount)
			assert.Equal(t, int64(2500), adv.AvailableAmount)
			assert.Equal(t, sourceRequestID, adv.SourceRequestID.String())
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.IssueAvailableCredit(ctx, tx, companyID, installerID, projectID, sourceRequestID, 2500)

		assert.NoError(t, err)
	})

	t.Run("idempotent when advance already exists", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.existsBySourceRequestFn = func(ctx context.Context, cid, srid string) (bool, error) {
			return true, nil
		}
		deps.repo.createFn = func(ctx context.Context, adv *advance.Advance) error {
			t.Fatal("no duplicate advance may be created")
			return nil
		}

		tx := beginTestTx(t, deps)
		err := deps.service.IssueAvailableCredit(ctx, tx, companyID, installerID, projectID, sourceRequestID, 2500)

		assert.NoError(t, err)
	})
}

func TestAdvanceService_Apply(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	installerID := uuid.New()
	projectID := uuid.New().String()
	periodID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return periodID, nil
		}
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return twoAdvances(installerID, 1000, 500), nil
		}
		requestID := uuid.New().String()
		deps.repo.createApplicationRequestFn = func(ctx context.Context, cid, iid, pid, perID, aid string, amount int64, notes string) (string, error) {
			assert.Equal(t, periodID, perID)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, int64(1200), amount)
			return requestID, nil
		}

		resp, err := deps.service.Apply(ctx, companyID, actorID, advance.ApplyAdvanceRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      1200,
		})

		assert.NoError(t, err)
		assert.Equal(t, requestID, resp.RequestID)
		assert.Equal(t, periodID, resp.PeriodID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative no open period", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return "", nil
		}

		_, err := deps.service.Apply(ctx, companyID, actorID, advance.ApplyAdvanceRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      100,
		})

		assert.ErrorIs(t, err, advanceerrors.ErrNoOpenPeriod)
	})

	t.Run("negative insufficient credit rolls back", func(t *testing.T) {
		deps := setupAdvanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findOpenPeriodIDFn = func(ctx context.Context, cid string) (string, error) {
			return periodID, nil
		}
		deps.repo.listByInstallerFIFOFn = func(ctx context.Context, cid, iid string) ([]advance.Advance, error) {
			return twoAdvances(installerID, 100, 0), nil
		}

		_, err := deps.service.Apply(ctx, companyID, actorID, advance.ApplyAdvanceRequest{
			InstallerID: installerID.String(),
			ProjectID:   projectID,
			Amount:      500,
		})

		assert.ErrorIs(t, err, advanceerrors.ErrInsufficientAdvance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
