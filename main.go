package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/cache"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/config"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/database"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/handlers"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/metrics"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/middleware"
	natsx "github.com/gabrielmaialva33/juridicai-sub002/internal/nats"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/scheduler"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

func main() {
	cfg := config.New()
	logger := initLogger(cfg.App)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}
	logger.Info("Connected to database")

	var redisClient *redis.Client
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, tenant resolution will hit the database directly")
	} else {
		redisClient = rc
		logger.Info("Connected to Redis")
	}

	var natsClient *natsx.Client
	if cfg.NATS.Enabled {
		natsCfg := natsx.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsClient, err = natsx.NewClient(natsCfg, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, audit event streaming disabled")
		}
	}

	store := tenantctx.NewStore()
	m := metrics.New()

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	rbacRepo := repository.NewRBACRepository(db, store)
	auditRepo := repository.NewAuditRepository(db, store)
	clientRepo := repository.NewClientRepository(db, store)
	caseRepo := repository.NewCaseRepository(db, store)
	deadlineRepo := repository.NewDeadlineRepository(db, store)
	timeEntryRepo := repository.NewTimeEntryRepository(db, store)
	documentRepo := repository.NewDocumentRepository(db, store)

	// Services
	var publisher services.AuditPublisher
	if natsClient != nil {
		publisher = natsx.NewPublisher(natsClient, logger)
	}
	auditSvc := services.NewAuditService(auditRepo, logger, publisher)
	permissionSvc := services.NewPermissionService(rbacRepo, tenantRepo, auditSvc, store, logger)
	tenantCache := cache.NewTenantCache(redisClient, logger, cfg.Redis.TenantTTL)
	tenantSvc := services.NewTenantService(db, tenantRepo, tenantCache, logger)
	rbacSvc := services.NewRBACService(rbacRepo, store, logger)
	membershipSvc := services.NewMembershipService(tenantRepo, store, logger)
	clientSvc := services.NewClientService(clientRepo, auditSvc, store, logger)
	caseSvc := services.NewCaseService(caseRepo, clientRepo, auditSvc, store, logger)
	deadlineSvc := services.NewDeadlineService(deadlineRepo, caseRepo, logger)
	timeEntrySvc := services.NewTimeEntryService(timeEntryRepo, caseRepo, store, logger)
	documentSvc := services.NewDocumentService(documentRepo, caseRepo, store, logger)

	if err := rbacSvc.EnsureCatalog(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to seed permission catalog")
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, natsClient, redisClient)
	tenantHandler := handlers.NewTenantHandler(tenantSvc, rbacSvc, store)
	membershipHandler := handlers.NewMembershipHandler(membershipSvc)
	rbacHandler := handlers.NewRBACHandler(rbacSvc)
	clientHandler := handlers.NewClientHandler(clientSvc)
	caseHandler := handlers.NewCaseHandler(caseSvc)
	deadlineHandler := handlers.NewDeadlineHandler(deadlineSvc)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntrySvc)
	documentHandler := handlers.NewDocumentHandler(documentSvc)
	auditHandler := handlers.NewAuditHandler(auditSvc)
	adminHandler := handlers.NewAdminHandler(tenantSvc, auditSvc, clientRepo, caseRepo)

	jobs := scheduler.New(auditSvc, deadlineSvc, cfg.Retention, logger)
	if err := jobs.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer jobs.Stop()

	router := buildRouter(routerDeps{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		metrics:       m,
		tenantSvc:     tenantSvc,
		permissionSvc: permissionSvc,
		health:        healthHandler,
		tenant:        tenantHandler,
		membership:    membershipHandler,
		rbac:          rbacHandler,
		client:        clientHandler,
		caseHandler:   caseHandler,
		deadline:      deadlineHandler,
		timeEntry:     timeEntryHandler,
		document:      documentHandler,
		audit:         auditHandler,
		admin:         adminHandler,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	if natsClient != nil {
		natsClient.Close()
	}
	logger.Info("Server exited")
}

type routerDeps struct {
	cfg           *config.Config
	logger        *logrus.Logger
	store         *tenantctx.Store
	metrics       *metrics.Metrics
	tenantSvc     *services.TenantService
	permissionSvc *services.PermissionService
	health        *handlers.HealthHandler
	tenant        *handlers.TenantHandler
	membership    *handlers.MembershipHandler
	rbac          *handlers.RBACHandler
	client        *handlers.ClientHandler
	caseHandler   *handlers.CaseHandler
	deadline      *handlers.DeadlineHandler
	timeEntry     *handlers.TimeEntryHandler
	document      *handlers.DocumentHandler
	audit         *handlers.AuditHandler
	admin         *handlers.AdminHandler
}

func buildRouter(d routerDeps) *gin.Engine {
	if d.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(d.logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.SetupCORS())
	router.Use(d.metrics.Middleware())
	router.Use(middleware.Identity())
	router.Use(middleware.TenantHint(d.store))
	router.Use(middleware.StructuredLogger(d.logger))

	router.GET("/healthz", d.health.Liveness)
	router.GET("/readyz", d.health.Readiness)
	router.GET("/metrics", d.metrics.Handler())

	// Signup runs before any tenant exists.
	router.POST("/api/v1/signup", d.tenant.Signup)

	// Tenant-scoped API: resolution binds the tenant context for everything
	// in this group.
	api := router.Group("/api/v1")
	api.Use(middleware.ResolveTenant(d.tenantSvc, d.store, d.metrics, d.logger))
	{
		api.GET("/tenant", d.tenant.Current)
		api.PATCH("/tenant",
			middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "tenant", Action: "manage"}),
			d.tenant.UpdateCurrent)

		members := api.Group("/members")
		{
			members.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "read"}),
				d.membership.List)
			members.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "manage"}),
				d.membership.Invite)
			members.PATCH("/:userId/role",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "manage"}),
				d.membership.ChangeRole)
			members.DELETE("/:userId",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "manage"}),
				d.membership.Deactivate)
			members.GET("/:userId/permissions",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "read"}),
				d.rbac.ListGrants)
			members.POST("/:userId/permissions",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "manage"}),
				d.rbac.Grant)
			members.DELETE("/:userId/permissions/:grantId",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "members", Action: "manage"}),
				d.rbac.Revoke)
		}

		clients := api.Group("/clients")
		{
			clients.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "clients", Action: "read"}),
				d.client.List)
			clients.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "clients", Action: "create"}),
				d.client.Create)
			clients.GET("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "clients", Action: "read"}),
				d.client.Get)
			clients.PATCH("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "clients", Action: "update"}),
				d.client.Update)
			clients.POST("/:id/archive",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "clients", Action: "archive"}),
				d.client.Archive)
		}

		cases := api.Group("/cases")
		{
			cases.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "read"}),
				d.caseHandler.List)
			cases.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "create"}),
				d.caseHandler.Open)
			cases.GET("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "read"}),
				d.caseHandler.Get)
			cases.PATCH("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "update"}),
				d.caseHandler.Update)
			cases.POST("/:id/close",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "close"}),
				d.caseHandler.Close)
			cases.GET("/:id/events",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "read"}),
				d.caseHandler.Timeline)
			cases.POST("/:id/events",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "cases", Action: "update"}),
				d.caseHandler.AddEvent)
		}

		deadlines := api.Group("/deadlines")
		{
			deadlines.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "deadlines", Action: "read"}),
				d.deadline.List)
			deadlines.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "deadlines", Action: "create"}),
				d.deadline.Create)
			deadlines.POST("/:id/complete",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "deadlines", Action: "update"}),
				d.deadline.Complete)
			deadlines.DELETE("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "deadlines", Action: "delete"}),
				d.deadline.Delete)
		}

		timeEntries := api.Group("/time-entries")
		{
			timeEntries.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "time_entries", Action: "read"}),
				d.timeEntry.List)
			timeEntries.GET("/summary",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "time_entries", Action: "read"}),
				d.timeEntry.Summary)
			timeEntries.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "time_entries", Action: "create"}),
				d.timeEntry.Log)
			timeEntries.DELETE("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "time_entries", Action: "delete"}),
				d.timeEntry.Delete)
		}

		documents := api.Group("/documents")
		{
			documents.GET("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "documents", Action: "read"}),
				d.document.List)
			documents.POST("",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "documents", Action: "create"}),
				d.document.Register)
			documents.GET("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "documents", Action: "read"}),
				d.document.Get)
			documents.DELETE("/:id",
				middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "documents", Action: "delete"}),
				d.document.Delete)
		}

		api.GET("/audit",
			middleware.RequirePermission(d.permissionSvc, d.metrics, services.PermissionCheck{Resource: "audit", Action: "read"}),
			d.audit.List)
	}

	// Cross-tenant administrative surface. No tenant resolution; gated by
	// the admin API key instead.
	admin := router.Group("/admin/v1")
	admin.Use(middleware.AdminAPIKey(d.cfg.Admin.APIKeyHash))
	{
		admin.GET("/tenants", d.admin.ListTenants)
		admin.GET("/tenants/:tenantId", d.admin.GetTenant)
		admin.POST("/tenants/:tenantId/suspend", d.admin.SuspendTenant)
		admin.GET("/tenants/:tenantId/clients", d.admin.ListTenantClients)
		admin.GET("/tenants/:tenantId/cases", d.admin.ListTenantCases)
		admin.GET("/tenants/:tenantId/audit", d.admin.ListTenantAudit)
	}

	return router
}

func initLogger(app config.AppConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(app.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
