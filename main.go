package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"pid-keeper/config"
	"pid-keeper/models"
	"pid-keeper/pidgen"
	"pid-keeper/services"
	"pid-keeper/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	documentsCreatedCounter prometheus.Counter
	outcomesCounter         *prometheus.CounterVec
	duplicateIDsGauge       prometheus.Gauge
)

func init() {
	documentsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pid_documents_created_total",
			Help: "Total number of new documents registered.",
		},
	)
	outcomesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pid_resolution_outcomes_total",
			Help: "Resolution outcomes by status code.",
		},
		[]string{"operation", "status"},
	)
	duplicateIDsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pid_duplicate_identifiers",
			Help: "Identifier values found in more than one record by the integrity audit.",
		},
	)
	prometheus.MustRegister(documentsCreatedCounter, outcomesCounter, duplicateIDsGauge)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // Unique-Verletzungen als gorm.ErrDuplicatedKey
	})
	if err != nil {
		logging.Fatal("Failed to connect to pid database", zap.Error(err))
	}
	logging.Info("Successfully connected to pid database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	store := storage.NewStore(db, logging, cfg.PageSize)
	if err := store.AutoMigrate(); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Services
	generator := pidgen.NewRandomGenerator(cfg.V3Length, cfg.V3Charset)
	engine := services.NewResolutionEngine(cfg, store, generator, logging)
	auditor := services.NewIntegrityAuditor(store, logging, duplicateIDsGauge)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupDocumentRoutes(router, engine, store, logging)

	// Setup Cron: nächtlicher Integritäts-Audit
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.AuditCronSchedule, func() {
		logging.Info("Running scheduled integrity audit...")
		count, err := auditor.Run(context.Background())
		if err != nil {
			logging.Error("Integrity audit failed", zap.Error(err))
		} else {
			logging.Info("Integrity audit completed", zap.Int("suspect_identifiers", count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// respond zählt das Outcome und schreibt die vom Assembler gebaute Antwort.
func respond(c *gin.Context, operation string, out services.Outcome) {
	outcomesCounter.WithLabelValues(operation, string(out.Status)).Inc()
	if out.Status == services.StatusCreated {
		documentsCreatedCounter.Inc()
	}
	code, payload := services.AssembleResponse(out)
	c.JSON(code, payload)
}

func setupDocumentRoutes(router *gin.Engine, engine *services.ResolutionEngine, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/documents")

	// Einfacher GET-Endpunkt für eine Seite aller Dokumente
	rg.GET("/", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))
		docs, err := store.ListDocuments(c.Request.Context(), page, perPage)
		if err != nil {
			log.Error("Database query for documents failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, docs)
	})

	// Suche nach einem Dokument über Identifier bzw. Relaxed-Match
	rg.POST("/search", func(c *gin.Context) {
		var bundle models.AttributeBundle
		if err := c.ShouldBindJSON(&bundle); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		respond(c, "search", engine.SearchDocument(c.Request.Context(), bundle))
	})

	// Prüfen, ob das Dokument registriert ist
	rg.POST("/check", func(c *gin.Context) {
		var bundle models.AttributeBundle
		if err := c.ShouldBindJSON(&bundle); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		respond(c, "check", engine.CheckDocument(c.Request.Context(), bundle))
	})

	// Neues Dokument registrieren
	rg.POST("/", func(c *gin.Context) {
		var bundle models.AttributeBundle
		if err := c.ShouldBindJSON(&bundle); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		respond(c, "register", engine.RegisterNewDocument(c.Request.Context(), bundle))
	})

	// Bestehendes Dokument aktualisieren
	rg.PUT("/:id", func(c *gin.Context) {
		var bundle models.AttributeBundle
		if err := c.ShouldBindJSON(&bundle); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		respond(c, "update", engine.UpdateExistingDocument(c.Request.Context(), bundle, c.Param("id")))
	})

	// Kombinierte Operation für Pipelines, die nicht wissen, ob das
	// Dokument schon existiert
	rg.POST("/manage", func(c *gin.Context) {
		type manageRequest struct {
			models.AttributeBundle
			GenerateV3 bool `json:"generate_v3"`
		}
		var req manageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		respond(c, "manage", engine.Manage(c.Request.Context(), req.AttributeBundle, req.GenerateV3))
	})
}
