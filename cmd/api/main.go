package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/stockflow-api/internal/application/documents"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/application/purchasing"
	"github.com/jhoicas/stockflow-api/internal/application/sales"
	appsignals "github.com/jhoicas/stockflow-api/internal/application/signals"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
	domainsignals "github.com/jhoicas/stockflow-api/internal/domain/signals"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/stockflow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/stockflow-api/internal/interfaces/http"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Idempotency-Key: Redis si está configurado; si no, memoria local (una sola instancia).
	var idem interface {
		ports.IdempotencyStore
		Close() error
	}
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idem = redisStore
		log.Info().Msg("idempotencia en Redis")
	} else {
		idem = cache.NewInMemoryIdempotencyStore(time.Minute)
		log.Warn().Msg("REDIS_URL vacío: idempotencia en memoria")
	}
	defer func() { _ = idem.Close() }()

	rules := domainsignals.DefaultRules(domainsignals.Thresholds{
		OverdueCriticalDays: cfg.Signals.OverdueCriticalDays,
		StaleDealDays:       cfg.Signals.StaleDealDays,
		StaleLeadDays:       cfg.Signals.StaleLeadDays,
	})

	warehouseUC := usecase.NewWarehouseUseCase(repos, txRunner)
	productUC := usecase.NewProductUseCase(repos.Products)
	stockUC := inventory.NewStockUseCase(repos, txRunner, log.Named("inventory"))
	salesUC := sales.NewSalesOrderUseCase(repos, txRunner, log.Named("sales"))
	purchaseUC := purchasing.NewPurchaseOrderUseCase(repos, txRunner, log.Named("purchasing"))
	signalsUC := appsignals.NewSignalsUseCase(repos, txRunner, rules, log.Named("signals"))
	documentsUC := documents.NewDocumentsUseCase(repos, infrapdf.NewMarotoPDFGenerator(), ubl.NewOrderEncoder(), cfg.App.Issuer)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.DocsEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stockflow API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:     warehouseUC,
		ProductUC:       productUC,
		StockUC:         stockUC,
		SalesOrderUC:    salesUC,
		PurchaseOrderUC: purchaseUC,
		SignalsUC:       signalsUC,
		DocumentsUC:     documentsUC,
		Idempotency:     idem,
		IdempotencyTTL:  cfg.Idempotency.TTL(),
		JWTSecret:       cfg.JWT.Secret,
		Logger:          log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
