package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"slm/cache"
	"slm/config"
	controllers "slm/controllers/learning"
	"slm/curriculum"
	"slm/database"
	"slm/jobs"
	"slm/logger"
	"slm/media"
	"slm/middleware"
	"slm/report"
	learningRoutes "slm/routers/learningRoutes"
	"slm/services/cascade"
	"slm/services/catalog"
	"slm/services/completion"
	"slm/services/content"
	"slm/services/ordering"
	"slm/services/quiz"
	"slm/services/support"
	"slm/services/unlock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDb(cfg, logg)
	if err != nil {
		logg.Fatal("database unavailable", "error", err)
	}

	// A nil interface disables quiz caching; never pass a typed nil *cache.Cache.
	var definitions quiz.DefinitionCache
	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(ctx, cfg.RedisURL, "slm:")
		if err != nil {
			logg.Warn("quiz cache disabled", "error", err)
		} else {
			definitions = redisCache
			defer redisCache.Close()
		}
	}

	engine := ordering.NewEngine(db, logg, cfg.OrderingMaxRetries)
	store := completion.NewStore(db, logg)
	quizzes := quiz.NewService(db, definitions, time.Duration(cfg.QuizCacheTTLSeconds)*time.Second, logg)
	contentSvc := content.NewService(db, engine, quizzes, logg)
	handler := &controllers.Handler{
		Catalog:  catalog.NewService(db, store, unlock.NewResolver(db, store, logg), media.New(cfg.MediaServiceURL, cfg.MediaServiceKey, logg), logg),
		Content:  contentSvc,
		Cascade:  cascade.New(db, store, logg, cfg.OrderingMaxRetries),
		Quizzes:  quizzes,
		Importer: curriculum.NewImporter(contentSvc, logg),
		Reports:  report.NewService(db, logg),
		Ordering: engine,
		Support:  support.NewService(db, logg),
		Log:      logg,
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err == nil && redisCache != nil {
			err = redisCache.HealthCheck(c.UserContext())
		}
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "unhealthy", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	})

	learningRoutes.Setup(app, handler, middleware.JWTMiddleware(cfg.JWTKey, contentSvc))

	scheduler := jobs.NewScheduler(logg)
	if _, err := scheduler.AddOrderingAudit(cfg.OrderingAuditCron, engine); err != nil {
		logg.Fatal("invalid ORDERING_AUDIT_CRON", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info("server is running", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("server stopped", "error", err)
	}
	logg.Info("shutdown complete")
}
