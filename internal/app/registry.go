package app

import (
	"database/sql"
	"path/filepath"

	"github.com/jamkie/appneoconcepto-sub000/internal/advance"
	"github.com/jamkie/appneoconcepto-sub000/internal/auth"
	"github.com/jamkie/appneoconcepto-sub000/internal/balance"
	"github.com/jamkie/appneoconcepto-sub000/internal/installer"
	"github.com/jamkie/appneoconcepto-sub000/internal/messaging/kafka"
	"github.com/jamkie/appneoconcepto-sub000/internal/project"
	"github.com/jamkie/appneoconcepto-sub000/internal/rbac"
	"github.com/jamkie/appneoconcepto-sub000/internal/rbac/infra"
	"github.com/jamkie/appneoconcepto-sub000/internal/request"
	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"
	"github.com/jamkie/appneoconcepto-sub000/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	installerRepo := installer.NewRepository(gormDB)
	projectRepo := project.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	advanceRepo := advance.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	settlementRepo := settlement.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService)
	installerService := installer.NewService(db, installerRepo, counterRepo, rdb)
	projectService := project.NewService(db, projectRepo)
	advanceService := advance.NewService(db, advanceRepo)
	balanceService := balance.NewService(db, balanceRepo)
	requestService := request.NewService(db, requestRepo, advanceService, balanceService)
	settlementService := settlement.NewService(
		db, settlementRepo, counterRepo, outboxRepo,
		requestService, advanceService, balanceService,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	installerHandler := installer.NewHandler(installerService)
	projectHandler := project.NewHandler(projectService)
	advanceHandler := advance.NewHandler(advanceService)
	balanceHandler := balance.NewHandler(balanceService)
	requestHandler := request.NewHandler(requestService)
	settlementHandler := settlement.NewHandler(settlementService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		installer.RegisterRoutes(api, installerHandler, rbacService, logger)
		project.RegisterRoutes(api, projectHandler, rbacService, logger)
		request.RegisterRoutes(api, requestHandler, rbacService, rdb, logger)
		advance.RegisterRoutes(api, advanceHandler, rbacService, rdb, logger)
		balance.RegisterRoutes(api, balanceHandler, rbacService, rdb, logger)
		settlement.RegisterRoutes(api, settlementHandler, rbacService, rdb, logger)
	}

	rbac.RegisterRoutes(router, rbacHandler)

	return nil
}
