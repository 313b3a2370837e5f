package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/exposure_sheet_service/internal/config"
	"github.com/locvowork/exposure_sheet_service/internal/database"
	"github.com/locvowork/exposure_sheet_service/internal/domain"
	"github.com/locvowork/exposure_sheet_service/internal/handler"
	"github.com/locvowork/exposure_sheet_service/internal/logger"
	"github.com/locvowork/exposure_sheet_service/internal/repository"
	"github.com/locvowork/exposure_sheet_service/internal/service"
	"github.com/locvowork/exposure_sheet_service/pkg/sheetio"
)

type App struct {
	Echo     *echo.Echo
	DB       *sql.DB
	ESClient *database.ElasticSearchClient
	DSClient *database.DatastoreClient
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Style template for rendered workbooks
	styleCfg, err := sheetio.LoadStyleConfig(cfg.STYLE_TEMPLATE_PATH)
	if err != nil {
		return fmt.Errorf("failed to load style template: %w", err)
	}

	// Optional persistence backends. A backend that fails to connect is
	// logged and skipped; processing itself has no hard dependencies.
	repo := a.initPostgres(ctx)
	indexer := a.initElastic(ctx)
	runs := a.initDatastore(ctx)

	procSvc := service.NewProcessService(styleCfg, cfg.NUM_WORKERS, repo, indexer, runs)
	wbHandler := handler.NewWorkbookHandler(procSvc)
	resHandler := handler.NewResultHandler(repo, a.ESClient, a.DSClient)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(wbHandler, resHandler)

	return nil
}

func (a *App) initPostgres(ctx context.Context) domain.SheetResultRepository {
	cfg := config.DefaultEnvConfig
	if !cfg.DB_ENABLED {
		return nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	})
	if err != nil {
		logger.ErrorLog(ctx, "result storage disabled", err)
		return nil
	}
	a.DB = db
	return repository.NewSheetResultRepository(db)
}

func (a *App) initElastic(ctx context.Context) service.ResultIndexer {
	cfg := config.DefaultEnvConfig
	if !cfg.ES_ENABLED {
		return nil
	}

	es, err := database.NewElasticSearchClient(cfg.ES_URL)
	if err != nil {
		logger.ErrorLog(ctx, "search indexing disabled", err)
		return nil
	}
	a.ESClient = es
	return es
}

func (a *App) initDatastore(ctx context.Context) service.RunRecorder {
	cfg := config.DefaultEnvConfig
	if !cfg.DS_ENABLED || cfg.GCP_PROJECT_ID == "" {
		return nil
	}

	ds, err := database.NewDatastoreClient(ctx, cfg.GCP_PROJECT_ID)
	if err != nil {
		logger.ErrorLog(ctx, "run auditing disabled", err)
		return nil
	}
	a.DSClient = ds
	return ds
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(wbHandler *handler.WorkbookHandler, resHandler *handler.ResultHandler) {
	wbGroup := a.Echo.Group("/workbooks")
	wbGroup.POST("/sheets", wbHandler.SheetsHandler)
	wbGroup.POST("/process", wbHandler.ProcessHandler)
	wbGroup.POST("/format", wbHandler.FormatHandler)

	a.Echo.GET("/results", resHandler.ListHandler)
	a.Echo.GET("/results/:sheet", resHandler.GetHandler)
	a.Echo.DELETE("/results/:sheet", resHandler.DeleteHandler)
	a.Echo.GET("/search", resHandler.SearchHandler)
	a.Echo.GET("/runs", resHandler.RunsHandler)
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.DSClient != nil {
		a.DSClient.Close()
	}
}
