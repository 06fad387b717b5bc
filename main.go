package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dish-battle-server/config"
	"dish-battle-server/engine"
	"dish-battle-server/handlers"
	"dish-battle-server/middleware"
	"dish-battle-server/models"
	"dish-battle-server/services"
	"dish-battle-server/utils"
	"dish-battle-server/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(cfg config.Config) (*gorm.DB, error) {
	dialector := postgres.Open(cfg.DatabaseURL)
	if cfg.UsesSQLite() {
		dialector = sqlite.Open(cfg.DatabaseURL)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.BattleRecord{},
		&models.TeamPoolEntry{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func loadCatalog(cfg config.Config) (*engine.Catalog, error) {
	if cfg.DishCatalogPath == "" {
		return engine.DefaultCatalog(), nil
	}
	return engine.LoadCatalogFile(cfg.DishCatalogPath)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal("failed to load dish catalog:", err)
	}
	log.Printf("[Main] Dish catalog: %d dishes", catalog.Len())

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}

	for _, dir := range []string{cfg.OpponentsPath(), cfg.TempPath(), cfg.ResultsPath(), cfg.DebugPath()} {
		if err := utils.EnsureDir(dir); err != nil {
			log.Fatal("failed to ensure output dir:", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mmSeed, err := engine.NewSeed()
	if err != nil {
		log.Fatal("failed to seed matchmaker:", err)
	}

	files := utils.NewFileStore(cfg.FileOperationRetries)
	store := services.NewGormBattleStore(db)
	queue := services.NewCommandQueue()
	matchmaker := services.NewMatchmaker(store, mmSeed)
	simulator := &services.Simulator{
		Catalog:       catalog,
		MaxIterations: cfg.MaxIterations(),
		Timeout:       cfg.Timeout(),
	}
	paths := services.RunnerPaths{
		Results:         cfg.ResultsPath(),
		Temp:            cfg.TempPath(),
		Debug:           cfg.DebugPath(),
		ResultRetention: cfg.ResultRetentionCount,
		TempRetention:   cfg.TempFileRetentionCount,
	}
	runner := services.NewBattleRunner(queue, store, matchmaker, simulator, files, paths)

	if cfg.R2Enabled() {
		uploader, err := utils.InitR2(ctx, utils.R2Settings{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2BucketName,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		runner.Uploader = uploader
		log.Printf("[Main] Uploading battle reports to bucket %s", cfg.R2BucketName)
	}

	opponents := services.OpponentDir{Dir: cfg.OpponentsPath(), Files: files}
	battleService := services.NewBattleService(cfg, catalog, queue, runner, store, opponents, matchmaker)

	// The handler answers oversized bodies with its own 413 envelope, so
	// fiber's hard limit sits above it. Past that limit ErrorHandler answers.
	app := fiber.New(fiber.Config{
		BodyLimit:    2 * cfg.MaxRequestBodySize,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken, "/health"))
	if cfg.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigin,
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Service-Token, X-User-ID",
			MaxAge:       86400,
		}))
	}
	app.Use(middleware.UserContextMiddleware(false))
	handlers.SetupBattleRoutes(app, battleService)

	go workers.RunBattleWorker(ctx, runner, queue, cfg.WorkerPollInterval)
	workers.NewOpponentSyncWorker(store, opponents, cfg.OpponentSyncInterval).Start(ctx)

	sched, err := services.StartRetentionScheduler(&services.RetentionJob{
		Store:     store,
		Paths:     paths,
		BattleTTL: cfg.BattleRecordTTL,
		PoolTTL:   cfg.PoolEntryTTL,
	}, cfg.RetentionInterval)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("[Main] Dish battle server on :%d (base path %s, %d opponent file(s))",
		cfg.Port, cfg.BasePath, opponents.Count())

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
}
