package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventory-alerts/internal/application/alerting"
	"github.com/jhoicas/inventory-alerts/internal/application/auth"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/realtime"
	infraredis "github.com/jhoicas/inventory-alerts/internal/infrastructure/redis"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/inventory-alerts/internal/interfaces/http"
	"github.com/jhoicas/inventory-alerts/pkg/config"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	jobCheckLowStock        = "check_low_stock"
	jobCleanupNotifications = "cleanup_notifications"
	swaggerFile             = "./docs/swagger.json"
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

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userRepo := postgres.NewUserRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Entrega en tiempo real: registro local, opcionalmente repartido entre instancias vía Redis.
	registry := realtime.NewRegistry(m, log.Component("ws"))
	var sink notification.Sink = registry
	if cfg.Redis.Enabled {
		client := infraredis.NewClient(cfg.Redis)
		defer client.Close()
		if err := infraredis.Ping(ctx, client); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		relay := infraredis.NewRelay(client, cfg.Redis.Channel, registry, log.Component("relay"))
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("relay de notificaciones finalizado")
			}
		}()
		sink = relay
	}

	dispatcher := notification.NewDispatcher(sink, cfg.Notifications.DeliveryQueueSize, m, log.Component("dispatcher"))
	dispatcher.Start(ctx)

	notificationSvc := notification.NewService(notificationRepo, dispatcher, cfg.Notifications.TTLDays, m, log.Component("notifications"))
	engine := alerting.NewEngine(levelRepo, txRunner, m, log.Component("alerts"))
	notifier := alerting.NewNotifier(userRepo, notificationSvc, cfg.Notifications.SuppressionWindow, m, log.Component("alerts"))
	lowStockUC := alerting.NewLowStockCheckUseCase(engine, notifier, log.Component("alerts"))

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Tareas programadas
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del scheduler")
	}
	sched := scheduler.New(loc, m, log.Component("scheduler"))
	if cfg.Scheduler.Enabled {
		lowStockSpec := fmt.Sprintf("@every %s", cfg.Scheduler.LowStockInterval)
		if err := sched.Register(jobCheckLowStock, lowStockSpec, func(ctx context.Context) error {
			res, err := lowStockUC.Run(ctx)
			if err != nil {
				return err
			}
			log.Info().Str("job", jobCheckLowStock).Int("alerts_created", res.AlertsCreated).
				Int("notifications_created", res.NotificationsCreated).Msg("revisión de stock programada")
			return nil
		}); err != nil {
			log.Fatal().Err(err).Msg("programar revisión de stock")
		}
		if err := sched.Register(jobCleanupNotifications, cfg.Scheduler.CleanupCron, func(ctx context.Context) error {
			deleted, err := notificationSvc.SweepExpired(ctx)
			if err != nil {
				return err
			}
			log.Info().Str("job", jobCleanupNotifications).Int("deleted", deleted).Msg("notificaciones vencidas eliminadas")
			return nil
		}); err != nil {
			log.Fatal().Err(err).Msg("programar limpieza de notificaciones")
		}
		sched.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventory Alerts API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		LowStockUC:    lowStockUC,
		Notifications: notificationSvc,
		Activity:      activityRepo,
		Registry:      registry,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log,
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

	if err := sched.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del scheduler")
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	dispatcher.Stop()

	log.Info().Msg("aplicación detenida")
}
