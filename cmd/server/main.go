package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/adapter/cache"
	"github.com/csms-go/csms/internal/adapter/http/fiber/handlers"
	"github.com/csms-go/csms/internal/adapter/http/fiber/middleware"
	"github.com/csms-go/csms/internal/adapter/queue"
	"github.com/csms-go/csms/internal/adapter/storage/postgres"
	"github.com/csms-go/csms/internal/observability/telemetry"
	"github.com/csms-go/csms/internal/ocpp/router"
	"github.com/csms-go/csms/internal/ocpp/session"
	v16 "github.com/csms-go/csms/internal/ocpp/v16"
	v201 "github.com/csms-go/csms/internal/ocpp/v201"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/service/auth"
	"github.com/csms-go/csms/internal/service/reservation"
	sessionsvc "github.com/csms-go/csms/internal/service/session"
	"github.com/csms-go/csms/internal/service/station"
	"github.com/csms-go/csms/internal/service/tariff"
	tenantsvc "github.com/csms-go/csms/internal/service/tenant"
	"github.com/csms-go/csms/internal/service/user"
	sessionevt "github.com/csms-go/csms/internal/session"
	"github.com/csms-go/csms/internal/tenant"
	"github.com/csms-go/csms/pkg/config"
)

const (
	serviceName    = "csms"
	serviceVersion = "v1.0.0"
)

// stationDisconnector adapts the station repository's connected-flag update
// to the session manager's Disconnector callback, which carries no context
// or error return (spec §4.3 Register/close notifies, it doesn't block).
type stationDisconnector struct {
	stations ports.StationRepository
	log      *zap.Logger
}

func (d *stationDisconnector) OnStationDisconnected(tenantID, stationID string) {
	if err := d.stations.SetConnected(context.Background(), stationID, false); err != nil {
		d.log.Warn("failed to mark station disconnected", zap.String("station_id", stationID), zap.Error(err))
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("starting CSMS", zap.String("service", serviceName), zap.String("version", serviceVersion))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	tracerProvider, err := telemetry.InitTracer(serviceName)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := tenant.RegisterHooks(db); err != nil {
		logger.Fatal("failed to register tenant gorm hooks", zap.Error(err))
	}

	appCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("redis not available, falling back to in-process cache", zap.Error(err))
		appCache = cache.NewLocalCache(5*time.Minute, logger)
	}
	defer appCache.Close()

	natsQueue, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
	if err != nil {
		logger.Warn("NATS not available, reservation-expiry notifications disabled", zap.Error(err))
		natsQueue = nil
	} else {
		defer natsQueue.Close()
	}

	rabbitQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, continuing without it", zap.Error(err))
		rabbitQueue = nil
	} else {
		defer rabbitQueue.Close()
	}

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db, logger)
	stationRepo := postgres.NewStationRepository(db, logger)
	connectorRepo := postgres.NewConnectorRepository(db, logger)
	sessionRepo := postgres.NewSessionRepository(db, logger)
	tariffRepo := postgres.NewTariffRepository(db, logger)
	userRepo := postgres.NewUserRepository(db, logger)
	roleRepo := postgres.NewRoleRepository(db, logger)
	tokenRepo := postgres.NewAuthTokenRepository(db, logger)
	reservationRepo := postgres.NewReservationRepository(db, logger)

	// Tenant kernel: one Service doubling as both administration API and
	// the tenant.Registry consulted by HTTP/OCPP handshake resolution.
	tenantService := tenantsvc.NewService(tenantRepo, logger)

	// OCPP gateway: session manager, router, shared state-machine engine.
	sessionManager := session.NewManager(logger, &stationDisconnector{stations: stationRepo, log: logger})
	sessionManager.Start()
	defer sessionManager.Stop()

	rt := router.New(logger)
	events := sessionevt.NewEvents(sessionRepo, connectorRepo, tokenRepo, tariffRepo, reservationRepo, logger)
	v16.RegisterHandlers(rt, stationRepo, events)
	v201.RegisterHandlers(rt, stationRepo, events)

	// Business services
	stationService := station.NewService(stationRepo, connectorRepo, sessionManager, rt, logger)
	sessionService := sessionsvc.NewService(sessionRepo, logger)
	tariffService := tariff.NewService(tariffRepo, logger)
	authService := auth.NewService(userRepo, appCache, cfg.JWT.Secret, logger)
	userService := user.NewService(userRepo, roleRepo, tokenRepo, logger)
	reservationService := reservation.NewService(reservationRepo, connectorRepo, logger)

	// OCPP 1.6 legacy transport: its own net/http mux on a dedicated port,
	// as the teacher's server does.
	v16Server := v16.NewServer(sessionManager, rt, tenantService, logger)
	v16Mux := v16Server.Mux("/ocpp/1.6/")
	go func() {
		addr := fmt.Sprintf(":%d", cfg.OCPP.Port16)
		logger.Info("starting OCPP 1.6 server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, v16Mux); err != nil {
			logger.Fatal("OCPP 1.6 server failed", zap.Error(err))
		}
	}()

	// Fiber app: HTTP edge + OCPP 2.0.1 WebSocket upgrade, mounted together.
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	if cfg.RateLimiting.Enabled {
		app.Use(limiter.New(limiter.Config{Max: cfg.RateLimiting.MaxRequests, Expiration: cfg.RateLimiting.Window}))
	}
	app.Use(middleware.CircuitBreakerWithLogger(logger))

	v201Server := v201.NewServer(sessionManager, rt, tenantService, logger)
	v201Server.Mount(app, "/ocpp/2.0.1/:stationId")

	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("OK") })
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := appCache.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("cache not ready")
		}
		return c.SendString("Ready")
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(c.Context())
		return nil
	})

	// Public auth routes resolve tenant from header/query/subdomain/custom
	// domain/path only — there is no bearer token yet to fall back to.
	v1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService, logger)
	publicAuth := v1.Group("", tenant.Middleware(tenantService))
	publicAuth.Post("/auth/login", authHandler.Login)
	publicAuth.Post("/auth/register", authHandler.Register)
	publicAuth.Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes run auth first so tenant resolution can fall back
	// to the validated token's tenantId when no explicit tenant is given.
	protected := v1.Group("", middleware.AuthRequired(authService), tenant.Middleware(tenantService))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)

	tenantHandler := handlers.NewTenantHandler(tenantService, logger)
	protected.Post("/tenants", tenantHandler.Create)
	protected.Get("/tenants", tenantHandler.List)
	protected.Get("/tenants/:id", tenantHandler.Get)
	protected.Post("/tenants/:id/suspend", tenantHandler.Suspend)
	protected.Post("/tenants/:id/reactivate", tenantHandler.Reactivate)

	stationHandler := handlers.NewStationHandler(stationService, logger)
	protected.Get("/stations", stationHandler.List)
	protected.Get("/stations/search", stationHandler.Search)
	protected.Get("/stations/nearby", stationHandler.Nearby)
	protected.Get("/stations/statistics", stationHandler.Statistics)
	protected.Post("/stations", stationHandler.Register)
	protected.Get("/stations/:id", stationHandler.Get)
	protected.Post("/stations/:id/maintenance/start", stationHandler.StartMaintenance)
	protected.Post("/stations/:id/maintenance/end", stationHandler.EndMaintenance)
	protected.Post("/stations/:id/remote-start", stationHandler.RemoteStart)
	protected.Post("/stations/:id/remote-stop", stationHandler.RemoteStop)

	sessionHandler := handlers.NewSessionHandler(sessionService, tariffService, logger)
	protected.Get("/sessions/statistics", sessionHandler.Statistics)
	protected.Get("/sessions", sessionHandler.ListByUser)
	protected.Get("/sessions/:uuid", sessionHandler.Get)
	protected.Get("/sessions/:uuid/cost-estimate", sessionHandler.EstimateCost)

	tariffHandler := handlers.NewTariffHandler(tariffService, logger)
	protected.Get("/tariffs", tariffHandler.List)
	protected.Get("/tariffs/:id", tariffHandler.Get)
	protected.Post("/tariffs", tariffHandler.Save)

	userHandler := handlers.NewUserHandler(userService, logger)
	protected.Post("/users", userHandler.Create)
	protected.Get("/users/:id", userHandler.Get)
	protected.Post("/roles", userHandler.CreateRole)
	protected.Get("/roles", userHandler.ListRoles)
	protected.Post("/tokens", userHandler.IssueToken)
	protected.Get("/users/:id/tokens", userHandler.ListTokens)

	reservationHandler := reservation.NewHandler(reservationService)
	reservationHandler.RegisterRoutes(protected)

	// Reservation-expiry sweep: its own ticker at cfg.Reaper.SweepInterval
	// (60s when unset), separate from the session manager's reaper,
	// notifying over NATS if available.
	go runReservationSweep(reservationService, natsQueue, cfg.Reaper.SweepInterval, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

func runReservationSweep(svc ports.ReservationService, mq queue.MessageQueue, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		count, err := svc.SweepExpired(context.Background(), 5*time.Minute)
		if err != nil {
			log.Error("reservation sweep failed", zap.Error(err))
			continue
		}
		if count > 0 && mq != nil {
			_ = mq.Publish("reservation.expired", []byte(fmt.Sprintf(`{"count":%d}`, count)))
		}
	}
}
