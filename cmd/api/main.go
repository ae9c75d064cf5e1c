package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/application/request"
	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/infrastructure/broadcast"
	"github.com/jhoicas/suministros-api/internal/infrastructure/calendar"
	"github.com/jhoicas/suministros-api/internal/infrastructure/captcha"
	"github.com/jhoicas/suministros-api/internal/infrastructure/mongo"
	"github.com/jhoicas/suministros-api/internal/infrastructure/worldclock"
	httpRouter "github.com/jhoicas/suministros-api/internal/interfaces/http"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
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
	client, err := mongo.NewClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a MongoDB")
	}
	defer client.Close(context.Background())

	itemRepo := mongo.NewItemRepository(client)
	userRepo := mongo.NewUserRepository(client)
	requestRepo := mongo.NewRequestRepository(client)
	auditRepo := mongo.NewAuditRepository(client)

	met := metrics.New("suministros")

	// Reloj: servicio de hora externo con caída transparente al reloj local.
	var clock ports.Clock = ports.SystemClock{}
	if cfg.Clock.BaseURL != "" {
		clock = worldclock.New(cfg.Clock, log)
	}

	// Gateway de alertas sobre el servicio de calendario; sin API key la
	// aplicación opera sin alertas externas.
	var gateway appstock.NotificationGateway
	if cfg.Calendar.BaseURL != "" && cfg.Calendar.APIKey != "" {
		gateway = calendar.NewGateway(cfg.Calendar, log)
	} else {
		log.Warn().Msg("gateway de calendario deshabilitado; las alertas de stock solo se registran en el log")
		gateway = calendar.NewNoop(log)
	}

	dedup := appstock.NewDedupStore(gateway, log, met)
	engine := appstock.NewTransitionEngine(dedup, clock, log, met)

	registry := broadcast.NewRegistry(log)
	locks := lock.NewManager(userRepo, registry, clock, log, met)

	captchaVerifier := captcha.New(cfg.Captcha, log)

	inventoryUC := inventory.NewUseCase(itemRepo, auditRepo, engine, log)
	requestUC := request.NewUseCase(requestRepo, itemRepo, auditRepo, engine, captchaVerifier, log, met)
	userUC := usecase.NewUserUseCase(userRepo, auditRepo, locks, log)

	// Métricas Prometheus en un listener aparte del tráfico de la API.
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", met.Handler())
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("listener de métricas iniciado")
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error().Err(err).Msg("listener de métricas finalizado")
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Suministros API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := client.HealthCheck(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		RequestUC:   requestUC,
		UserUC:      userUC,
		AuditRepo:   auditRepo,
		Registry:    registry,
		Log:         log,
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
