package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"oneof=local minio"`
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// CacheConfig 分析结果缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Type     string `mapstructure:"type" validate:"oneof=memory redis"`
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // 提供商：tongyi等
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Temperature float32       `mapstructure:"temperature"`
}

// AnalyzerConfig 文档分析配置
type AnalyzerConfig struct {
	MaxContentTokens     int `mapstructure:"max_content_tokens" validate:"min=1"`     // 估算token数超过该值时分块
	MaxChunkChars        int `mapstructure:"max_chunk_chars" validate:"min=1"`        // 分块的字符预算
	LookBack             int `mapstructure:"look_back"`                               // 句子边界的回溯窗口
	ExtractionMaxTokens  int `mapstructure:"extraction_max_tokens"`                   // 抽取请求的最大生成token数
	SummaryMaxTokens     int `mapstructure:"summary_max_tokens"`                      // 摘要合并请求的最大生成token数
	SummaryFallbackLimit int `mapstructure:"summary_fallback_limit" validate:"min=1"` // 摘要回退拼接的长度上限
	AnalysisTimeout      int `mapstructure:"analysis_timeout"`                        // 单篇文档的分析超时(秒)
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`        // 日志文件路径，为空时输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 单个日志文件的最大大小
	MaxBackups int    `mapstructure:"max_backups"` // 保留的历史日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值，环境变量可以覆盖任意配置项，
// 形如${VAR}的配置值会被替换为对应的环境变量
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	expandEnvironment(&config)

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return &config, nil
}

// expandEnvironment 替换配置值里形如${VAR}的环境变量引用
func expandEnvironment(cfg *Config) {
	cfg.LLM.APIKey = expandEnvValue(cfg.LLM.APIKey)
	cfg.Storage.AccessKey = expandEnvValue(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandEnvValue(cfg.Storage.SecretKey)
	cfg.Cache.Password = expandEnvValue(cfg.Cache.Password)
}

func expandEnvValue(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "doc-analyzer")
	v.SetDefault("storage.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 86400) // 24小时

	// LLM默认配置
	v.SetDefault("llm.provider", "tongyi")
	v.SetDefault("llm.model", "qwen-turbo")
	v.SetDefault("llm.api_key", "${DASHSCOPE_API_KEY}")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.temperature", 0.1)

	// 分析默认配置
	v.SetDefault("analyzer.max_content_tokens", 3000)
	v.SetDefault("analyzer.max_chunk_chars", 12000)
	v.SetDefault("analyzer.look_back", 200)
	v.SetDefault("analyzer.extraction_max_tokens", 4000)
	v.SetDefault("analyzer.summary_max_tokens", 500)
	v.SetDefault("analyzer.summary_fallback_limit", 600)
	v.SetDefault("analyzer.analysis_timeout", 300)

	// 日志默认配置
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)
}
