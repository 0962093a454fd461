package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advocase-backend/config"
	"advocase-backend/extract"
	"advocase-backend/handlers"
	"advocase-backend/llm"
	"advocase-backend/middleware"
	"advocase-backend/pkg/logger"
	"advocase-backend/repository"
	"advocase-backend/service"
	"advocase-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to initialize Postgres", "error", err)
	}
	defer db.Close()
	appLogger.Info("Postgres connection established")

	fileStorage, err := storage.NewFromEnv()
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", "error", err)
	}
	appLogger.Info("Storage initialized", "type", os.Getenv("STORAGE_TYPE"))

	geminiClient, err := llm.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini client", "error", err)
	}
	defer geminiClient.Close()
	appLogger.Info("Gemini client initialized", "model", geminiClient.ModelName())

	// Repositories
	caseRepo := repository.NewCaseRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	// Services
	bundleService := service.NewBundleService(caseRepo, docRepo)
	classifier := service.NewDocumentClassifier(geminiClient)

	riskAssessor := service.NewRiskAssessor(geminiClient)
	reliefEvaluator := service.NewReliefEvaluator(geminiClient)
	precedentValidator := service.NewPrecedentValidator(geminiClient)
	rightsMapper := service.NewRightsMapper(geminiClient)
	bundleAnalyzer := service.NewBundleAnalyzer(geminiClient)

	insightService := service.NewInsightService(
		service.InsightWithCaseStore(caseRepo),
		service.InsightWithInsightStore(insightRepo),
		service.InsightWithBundleService(bundleService),
		service.InsightWithAnalyzers(riskAssessor, reliefEvaluator, precedentValidator, rightsMapper, bundleAnalyzer),
		service.InsightWithTTLs(cfg.InsightTTL, cfg.BundleInsightTTL),
		service.InsightWithLogger(appLogger),
	)

	batchService := service.NewBatchService(
		service.BatchWithCaseStore(caseRepo),
		service.BatchWithInsightStore(insightRepo),
		service.BatchWithBundleService(bundleService),
		service.BatchWithAnalyzers(riskAssessor, reliefEvaluator, precedentValidator, rightsMapper),
		service.BatchWithTTL(cfg.InsightTTL),
		service.BatchWithLogger(appLogger),
	)

	suggestService := service.NewSuggestService(caseRepo, bundleService, geminiClient, appLogger)
	caseService := service.NewCaseService(caseRepo, docRepo)

	extractor := extract.NewTextExtractor()

	ingestService := service.NewIngestService(
		caseRepo, docRepo, insightRepo,
		fileStorage, extractor, classifier,
		cfg.MinTextLength, appLogger,
	)

	sweepService := service.NewSweepService(
		docRepo, insightRepo,
		fileStorage, extractor, classifier,
		cfg.SweepBatchSize, cfg.MinTextLength, appLogger,
	)

	// Handlers
	aiHandler := handlers.NewAIHandler(insightService, batchService, suggestService, appLogger)
	docHandler := handlers.NewDocumentHandler(ingestService, cfg.MaxUploadSize, appLogger)
	caseHandler := handlers.NewCaseHandler(caseService, appLogger)
	cronHandler := handlers.NewCronHandler(sweepService, appLogger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLogger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authed := api.Group("")
	authed.Use(middleware.RequireIdentity())
	{
		authed.GET("/cases", caseHandler.List)
		authed.GET("/cases/:caseId", caseHandler.Get)

		authed.GET("/cases/:caseId/bundle-analysis", aiHandler.BundleAnalysis)
		authed.POST("/cases/:caseId/bundle-analysis", aiHandler.BundleAnalysis)

		authed.GET("/ai/:caseId/precedents", aiHandler.Precedents)
		authed.POST("/ai/:caseId/precedents", aiHandler.Precedents)
		authed.GET("/ai/:caseId/risk-assessment", aiHandler.RiskAssessment)
		authed.POST("/ai/:caseId/risk-assessment", aiHandler.RiskAssessment)
		authed.GET("/ai/:caseId/relief-evaluation", aiHandler.ReliefEvaluation)
		authed.POST("/ai/:caseId/relief-evaluation", aiHandler.ReliefEvaluation)
		authed.GET("/ai/:caseId/rights-mapping", aiHandler.RightsMapping)
		authed.POST("/ai/:caseId/rights-mapping", aiHandler.RightsMapping)

		authed.POST("/cases/:caseId/ai-insights/batch", aiHandler.Batch)
		authed.POST("/cases/:caseId/ai-insights/contextual", aiHandler.Contextual)

		authed.POST("/cases/:caseId/documents/upload", docHandler.Upload)
		authed.POST("/cases/:caseId/documents/classify", docHandler.Classify)
	}

	cron := api.Group("/cron")
	cron.Use(middleware.RequireCronSecret(cfg.CronSecret))
	{
		cron.GET("/process-documents", cronHandler.ProcessDocuments)
		cron.POST("/process-documents", cronHandler.ProcessDocuments)
	}

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", "error", err)
	}
	appLogger.Info("Server stopped")
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}
	return pool, nil
}
