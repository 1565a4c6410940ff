package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	v1 "prodline/internal/api/v1"
	"prodline/internal/config"
	"prodline/internal/llm"
	"prodline/internal/parser"
	"prodline/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  store.ItemStore
	v1     *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "prodline.db")

	sqliteStore, err := store.NewSQLite(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	engine := buildEngine(cfg)
	v1Handler := v1.NewHandler(sqliteStore, engine)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		v1:     v1Handler,
	}

	s.setupRoutes()

	return s
}

// buildEngine 按配置组装提取引擎
func buildEngine(cfg *config.AppConfig) *parser.Engine {
	vocab := parser.DefaultVocabulary()
	if len(cfg.Extract.StageOrder) > 0 {
		vocab.StageOrder = cfg.Extract.StageOrder
	}

	opts := parser.Options{
		Vocabulary:     vocab,
		HeaderScanRows: cfg.Extract.HeaderScanRows,
		MinHeaderHits:  cfg.Extract.MinHeaderHits,
		FuzzyThreshold: cfg.Extract.FuzzyThreshold,
	}

	// 配置了 API Key 才启用 LLM 分类策略，否则纯规则匹配
	if apiKey := config.OpenAIAPIKey(); apiKey != "" {
		llmConfig := llm.DefaultConfig()
		llmConfig.APIKey = apiKey
		if cfg.LLM.BaseURL != "" {
			llmConfig.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.Model != "" {
			llmConfig.Model = cfg.LLM.Model
		}
		if cfg.LLM.TimeoutSeconds > 0 {
			llmConfig.TimeoutSeconds = cfg.LLM.TimeoutSeconds
		}

		classifier, err := llm.NewClassifier(llmConfig)
		if err != nil {
			log.Printf("LLM 分类器初始化失败，使用规则匹配: %v", err)
		} else {
			opts.Strategy = classifier
		}
	}

	return parser.NewEngine(opts)
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 健康检查（含存储连通性）
	s.router.GET("/health", func(c *gin.Context) {
		if _, err := s.store.Count(store.ListOptions{}); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	// 根路径返回服务信息
	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "prodline",
			"api":     "/api",
		})
	})
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放存储资源
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() store.ItemStore {
	return s.store
}
