package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/college-portal-api/internal/handler"
	"github.com/noah-isme/college-portal-api/internal/middleware"
	"github.com/noah-isme/college-portal-api/internal/repository"
	"github.com/noah-isme/college-portal-api/internal/service"
	rediscache "github.com/noah-isme/college-portal-api/pkg/cache"
	"github.com/noah-isme/college-portal-api/pkg/config"
	"github.com/noah-isme/college-portal-api/pkg/database"
	"github.com/noah-isme/college-portal-api/pkg/export"
	"github.com/noah-isme/college-portal-api/pkg/jobs"
	"github.com/noah-isme/college-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/college-portal-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		// the dashboard cache degrades to per-request rebuilds without redis
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// repositories
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// artifact stores
	certStore, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init certificate storage", "error", err)
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	certSigner := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL)
	reportSigner := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	// services
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	configSvc := service.NewConfigurationService(configRepo, userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, userRepo, validate, logr)
	summarySvc := service.NewSummaryService(studentRepo, ledgerRepo, configSvc, nil, logr)
	scholarshipSvc := service.NewScholarshipService(studentRepo, ledgerRepo, configSvc, userRepo, validate, nil, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	dashboardSvc := service.NewDashboardService(studentRepo, ledgerRepo, configSvc, cacheSvc, nil, logr, service.DashboardConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})

	certSvc := service.NewCertificateService(studentRepo, certRepo, configSvc, export.NewCertificatePDF(), certStore, certSigner, userRepo, validate, nil, logr, service.CertificateConfig{
		CollegeName:  cfg.Certificates.CollegeName,
		CollegePlace: cfg.Certificates.CollegePlace,
	})

	reportSvc := service.NewReportService(reportRepo, studentRepo, ledgerRepo, configSvc, nil, export.NewCSVExporter(), reportStore, reportSigner, validate, nil, logr)
	queue := jobs.NewQueue("reports", reportSvc.ProcessJob, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc.SetQueue(queue)

	queueCtx, stopQueue := context.WithCancel(context.Background())
	queue.Start(queueCtx)

	// router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Summaries:     handler.NewSummaryHandler(summarySvc),
		Scholarships:  handler.NewScholarshipHandler(scholarshipSvc),
		Certificates:  handler.NewCertificateHandler(certSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Configuration: handler.NewConfigurationHandler(configSvc, dashboardSvc),
		Clerks:        handler.NewClerkHandler(userSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),

		AuthService:      authSvc,
		DashboardService: dashboardSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}

	stopQueue()
	queue.Stop()

	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}
