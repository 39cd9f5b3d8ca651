package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvconvert-backend/internal/convert"
	"cvconvert-backend/internal/ledger"
	"cvconvert-backend/internal/llm"
	"cvconvert-backend/internal/llm/gemini"
	"cvconvert-backend/internal/shared/config"
	"cvconvert-backend/internal/shared/metrics"
	"cvconvert-backend/internal/shared/server/middleware"
	"cvconvert-backend/internal/shared/server/respond"
	"cvconvert-backend/internal/shared/storage/db"
	"cvconvert-backend/internal/shared/storage/object"
	localstore "cvconvert-backend/internal/shared/storage/object/local"
	s3store "cvconvert-backend/internal/shared/storage/object/s3"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig()),
	)

	// Dependencies
	store := newObjectStore(cfg)
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	ledgerSvc := ledger.NewService(newLedgerStore(cfg, sqlDB))
	ledgerHandler := ledger.NewHandler(ledgerSvc)

	var convRepo convert.Repo
	if sqlDB != nil {
		convRepo = &convert.PGRepo{DB: sqlDB}
	} else {
		convRepo = convert.NewMemoryRepo()
	}
	convSvc := &convert.Service{
		Repo:   convRepo,
		Ledger: ledgerSvc,
		Store:  store,
		LLM:    newLLMClient(cfg),
	}
	convHandler := convert.NewHandler(convSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	convHandler.RegisterRoutes(api)
	ledgerHandler.RegisterRoutes(api)
	r.GET("/metrics", metrics.Handler())

	return r
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err == nil {
			return store
		}
		log.Printf("failed to init s3 store, falling back to local: %v", err)
	}
	return localstore.New(cfg.LocalStoreDir)
}

func newLedgerStore(cfg config.Config, sqlDB *sql.DB) ledger.Store {
	if sqlDB != nil {
		return &ledger.PGStore{DB: sqlDB}
	}
	if cfg.LedgerFile != "" {
		store, err := ledger.NewFileStore(cfg.LedgerFile)
		if err == nil {
			return store
		}
		log.Printf("failed to open ledger file, falling back to memory: %v", err)
	}
	return ledger.NewMemoryStore()
}

func newLLMClient(cfg config.Config) llm.Client {
	if cfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY not set, conversions will fail")
		return llm.PlaceholderClient{}
	}
	client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		log.Printf("failed to init gemini client: %v", err)
		return llm.PlaceholderClient{}
	}
	return client
}

// rateLimitConfig gives status polling more headroom than mutating requests.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet {
				switch c.FullPath() {
				case "/api/v1/conversions/:id", "/api/v1/conversions":
					return "POLLING"
				}
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 2, Burst: 10},
			"POLLING": {Rate: 10, Burst: 30},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
