package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fyerfyer/doc-analyzer-system/api"
	"github.com/fyerfyer/doc-analyzer-system/api/handler"
	"github.com/fyerfyer/doc-analyzer-system/api/middleware"
	appconfig "github.com/fyerfyer/doc-analyzer-system/config"
	"github.com/fyerfyer/doc-analyzer-system/internal/analyzer"
	"github.com/fyerfyer/doc-analyzer-system/internal/cache"
	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
	"github.com/fyerfyer/doc-analyzer-system/internal/services"
	"github.com/fyerfyer/doc-analyzer-system/pkg/storage"
)

// 命令行参数
type flags struct {
	ConfigFile string // 配置文件路径
	Mode       string // 运行模式 (debug/release)
	Port       int    // 覆盖配置文件中的端口，0表示不覆盖
}

func main() {
	f := parseFlags()

	// 加载.env文件（如果存在），让本地开发不用手动导出环境变量
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env file")
	}

	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if f.Port > 0 {
		cfg.Server.Port = f.Port
	}

	gin.SetMode(f.Mode)

	logger := setupLogger(cfg.Logging)
	middleware.SetLogger(logger)
	logger.Info("Starting document analyzer service...")

	// 模型客户端
	llmClient, err := setupLLM(cfg.LLM)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}
	logger.WithField("model", llmClient.Name()).Info("LLM client initialized")

	// 文件存储
	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 文档分析器
	docAnalyzer := analyzer.NewAnalyzer(llmClient,
		analyzer.WithConfig(analyzer.Config{
			MaxContentTokens:     cfg.Analyzer.MaxContentTokens,
			MaxChunkChars:        cfg.Analyzer.MaxChunkChars,
			LookBack:             cfg.Analyzer.LookBack,
			ExtractionMaxTokens:  cfg.Analyzer.ExtractionMaxTokens,
			SummaryMaxTokens:     cfg.Analyzer.SummaryMaxTokens,
			SummaryFallbackLimit: cfg.Analyzer.SummaryFallbackLimit,
		}),
		analyzer.WithLogger(logger),
	)

	// 分析服务
	serviceOptions := []services.AnalysisOption{
		services.WithLogger(logger),
		services.WithTimeout(time.Duration(cfg.Analyzer.AnalysisTimeout) * time.Second),
	}

	if cfg.Cache.Enable {
		cacheService, err := setupCache(cfg.Cache)
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
		serviceOptions = append(serviceOptions,
			services.WithCache(cacheService),
			services.WithCacheTTL(time.Duration(cfg.Cache.TTL)*time.Second),
		)
		logger.WithField("type", cfg.Cache.Type).Info("Analysis cache enabled")
	}

	analysisService := services.NewAnalysisService(fileStorage, docAnalyzer, serviceOptions...)

	// 路由和HTTP服务器
	router := api.SetupRouter(handler.NewAnalyzeHandler(analysisService))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // 分析请求同步等待模型响应
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&f.Mode, "mode", "release", "Run mode (debug/release)")
	flag.IntVar(&f.Port, "port", 0, "Server port (overrides config file)")

	flag.Parse()
	return f
}

// setupLogger 根据日志配置初始化logrus
// 配置了日志文件时用lumberjack做滚动切割，同时输出到stdout
func setupLogger(cfg appconfig.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// setupLLM 创建大语言模型客户端
func setupLLM(cfg appconfig.LLMConfig) (llm.Client, error) {
	if cfg.APIKey == "" || cfg.APIKey == "${DASHSCOPE_API_KEY}" {
		return nil, fmt.Errorf("LLM API key is required (set DASHSCOPE_API_KEY or llm.api_key)")
	}

	opts := []llm.Option{
		llm.WithAPIKey(cfg.APIKey),
		llm.WithModel(cfg.Model),
		llm.WithTemperature(cfg.Temperature),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, llm.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, llm.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, llm.WithMaxRetries(cfg.MaxRetries))
	}

	return llm.NewClient(cfg.Provider, opts...)
}

// setupStorage 创建文件存储服务
func setupStorage(cfg appconfig.StorageConfig) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type: cfg.Type,
		Local: storage.LocalConfig{
			Path: cfg.Path,
		},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
}

// setupCache 创建分析结果缓存
func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	return cache.NewCache(cache.Config{
		Type:          cfg.Type,
		RedisAddr:     cfg.Address,
		RedisPassword: cfg.Password,
		RedisDB:       cfg.DB,
		DefaultTTL:    time.Duration(cfg.TTL) * time.Second,
	})
}
