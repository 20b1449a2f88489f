package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/dulcerialilis/lilis-api/internal/application/analytics"
	"github.com/dulcerialilis/lilis-api/internal/application/auth"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/purchasing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/export"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/mail"
	infrapdf "github.com/dulcerialilis/lilis-api/internal/infrastructure/pdf"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/postgres"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/storage"
	httpRouter "github.com/dulcerialilis/lilis-api/internal/interfaces/http"
	"github.com/dulcerialilis/lilis-api/pkg/config"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	if cfg.DB.Migrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		_ = migrator.Close()
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	resetRepo := postgres.NewPasswordResetRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	brandRepo := postgres.NewBrandRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	media, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de archivos")
	}
	sheets := export.NewExcelWriter()
	mailer := mail.NewResendMailer(cfg.Mail, log)

	authUC := auth.NewAuthUseCase(auth.Deps{
		Users:    userRepo,
		Roles:    roleRepo,
		Sessions: sessionRepo,
		Resets:   resetRepo,
		Mailer:   mailer,
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		Reset: auth.ResetConfig{
			URL:         cfg.Mail.PasswordResetURL,
			TTL:         time.Duration(cfg.Mail.PasswordResetTTL) * time.Minute,
			CompanyName: cfg.App.CompanyName,
		},
		Log: log,
	})
	authorizer := auth.NewAuthorizer(userRepo, roleRepo)

	userUC := usecase.NewUserUseCase(usecase.UserDeps{
		Users: userRepo, Roles: roleRepo, Sessions: sessionRepo,
		Storage: media, Sheets: sheets, Log: log,
	})
	roleUC := usecase.NewRoleUseCase(roleRepo, log)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo, sheets, log)
	productUC := usecase.NewProductUseCase(usecase.ProductDeps{
		Products: productRepo, Categories: categoryRepo, Brands: brandRepo, Units: unitRepo,
		Alerts: alertRepo, Tx: txRunner, Storage: media, Sheets: sheets, Log: log,
	})
	catalogUC := usecase.NewCatalogUseCase(usecase.CatalogDeps{
		Categories: categoryRepo, Brands: brandRepo, Units: unitRepo, Lots: lotRepo,
		Products: productRepo, Warehouses: warehouseRepo, Suppliers: supplierRepo,
	})
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	movementUC := inventory.NewMovementUseCase(inventory.MovementDeps{
		Tx:         txRunner,
		Movements:  movementRepo,
		Products:   productRepo,
		Warehouses: warehouseRepo,
		Suppliers:  supplierRepo,
		Units:      unitRepo,
		Lots:       lotRepo,
		Stock:      stockRepo,
		Sheets:     sheets,
		Log:        log,
	})
	alertUC := inventory.NewAlertUseCase(txRunner, alertRepo, cfg.Inventory.LotExpiryWarningDays, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(productRepo)

	orderUC := purchasing.NewOrderUseCase(purchasing.OrderDeps{
		Tx:          txRunner,
		Orders:      orderRepo,
		Suppliers:   supplierRepo,
		Products:    productRepo,
		Warehouses:  warehouseRepo,
		Lots:        lotRepo,
		Movements:   movementUC,
		PDF:         infrapdf.NewMarotoPDFGenerator(),
		CompanyName: cfg.App.CompanyName,
		Log:         log,
	})
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    usecase.MaxImageBytes + 1<<20,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.HTTP.Debug}))
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Disposition",
	}))
	// login y reseteo de contraseña: 10 intentos por minuto por IP
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "demasiados intentos, espere un minuto")
		},
	})
	app.Use("/api/auth/login", authLimiter)
	app.Use("/api/auth/password-reset", authLimiter)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Dulcería Lilis API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	if local, ok := media.(*storage.LocalStorage); ok {
		app.Static(storage.MediaPrefix, local.Root())
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		Authorizer:      authorizer,
		UserUC:          userUC,
		RoleUC:          roleUC,
		SupplierUC:      supplierUC,
		ProductUC:       productUC,
		CatalogUC:       catalogUC,
		WarehouseUC:     warehouseUC,
		MovementUC:      movementUC,
		AlertUC:         alertUC,
		ReplenishmentUC: replenishmentUC,
		OrderUC:         orderUC,
		DashboardUC:     dashboardUC,
		JWTSecret:       cfg.JWT.Secret,
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
