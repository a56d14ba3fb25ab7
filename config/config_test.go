package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadDefaults 测试配置文件不存在时的默认配置
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, "tongyi", cfg.LLM.Provider)
	assert.Equal(t, "qwen-turbo", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3000, cfg.Analyzer.MaxContentTokens)
	assert.Equal(t, 12000, cfg.Analyzer.MaxChunkChars)
	assert.Equal(t, 200, cfg.Analyzer.LookBack)
	assert.Equal(t, 600, cfg.Analyzer.SummaryFallbackLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

// TestLoadFromFile 测试从配置文件加载
func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
llm:
  model: qwen-plus
analyzer:
  max_chunk_chars: 8000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "qwen-plus", cfg.LLM.Model)
	assert.Equal(t, 8000, cfg.Analyzer.MaxChunkChars)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// 未覆盖的配置项保持默认值
	assert.Equal(t, 3000, cfg.Analyzer.MaxContentTokens)
}

// TestLoadEnvExpansion 测试${VAR}形式的环境变量替换
func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_ANALYZER_API_KEY", "sk-from-env")

	path := writeConfigFile(t, `
llm:
  api_key: ${TEST_ANALYZER_API_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
}

// TestLoadEnvExpansionMissing 测试引用的环境变量不存在时保留原值
func TestLoadEnvExpansionMissing(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  api_key: ${NO_SUCH_ENV_VAR_FOR_TEST}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${NO_SUCH_ENV_VAR_FOR_TEST}", cfg.LLM.APIKey)
}

// TestLoadValidation 测试非法配置被拒绝
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"InvalidPort", "server:\n  port: 0\n"},
		{"InvalidStorageType", "storage:\n  type: tape\n"},
		{"InvalidLogLevel", "logging:\n  level: verbose\n"},
		{"InvalidChunkChars", "analyzer:\n  max_chunk_chars: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}
