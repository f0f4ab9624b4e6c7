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
	"github.com/jhoicas/Conversa-api/internal/application/auth"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain/purge"
	"github.com/jhoicas/Conversa-api/internal/infrastructure/cache"
	"github.com/jhoicas/Conversa-api/internal/infrastructure/evolution"
	"github.com/jhoicas/Conversa-api/internal/infrastructure/meta"
	"github.com/jhoicas/Conversa-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Conversa-api/internal/interfaces/http"
	"github.com/jhoicas/Conversa-api/pkg/config"
	"github.com/jhoicas/Conversa-api/pkg/logger"

	_ "github.com/jhoicas/Conversa-api/docs" // swagger generado por swag
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	// El plan de purga se valida al arranque: un ciclo o una referencia rota en
	// el registro de tablas impide levantar el servicio.
	purgePlan, err := purge.BuildPlan()
	if err != nil {
		log.Fatal().Err(err).Msg("plan de purga inválido")
	}

	redisCache, err := cache.New(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisCache.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	instanceRepo := postgres.NewInstanceRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	seedRepo := postgres.NewSeedRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	purgeExecutor := postgres.NewPurgeExecutor(pool, purgePlan)

	gatewayClient := evolution.NewClient(cfg.Evolution.BaseURL)
	graphClient := meta.NewGraphClient(cfg.Meta.BaseURL, cfg.Meta.Version)

	instanceUC := usecase.NewInstanceUseCase(
		instanceRepo, companyRepo, gatewayClient, redisCache, cfg.Evolution.APIKey, log,
	)
	companyUC := usecase.NewCompanyUseCase(
		companyRepo, instanceUC, seedRepo, planRepo, subscriptionRepo,
		auditRepo, graphClient, redisCache, log,
	)
	purgeUC := usecase.NewPurgeUseCase(companyRepo, purgeExecutor, auditRepo, redisCache, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Conversa Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded", "service": cfg.App.Name,
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:   companyUC,
		InstanceUC:  instanceUC,
		PurgeUC:     purgeUC,
		AuthUC:      authUC,
		CompanyRepo: companyRepo,
		JWTSecret:   cfg.JWT.Secret,
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
