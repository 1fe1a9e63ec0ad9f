package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "thedesk/internal/llmClient"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "DATABASE_URL",
		"ARTIFACT_MINIO_ENDPOINT", "ARTIFACT_S3_ENDPOINT", "ARTIFACT_S3_USE_SSL", "ARTIFACT_S3_REGION",
		"ARTIFACT_S3_ACCESS_KEY", "ARTIFACT_S3_SECRET_KEY", "ARTIFACT_S3_BUCKET",
		"MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD",
		"GEMINI_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY",
		"INSIGHT_MODELS", "INSIGHT_ATTEMPT_TIMEOUT", "INSIGHT_RPS", "INSIGHT_BURST", "INSIGHT_HISTORY_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.Media.CanUseS3())
	assert.Equal(t, llmclient.DefaultChain, cfg.Insight.Models)
	assert.False(t, cfg.Insight.HasCredentials())
	assert.Equal(t, 20*time.Second, cfg.Insight.AttemptTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "thedesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
env: production
databaseUrl: postgres://file
media:
  endpoint: s3.example.com
  accessKey: ak
  secretKey: sk
insight:
  models:
    - provider: groq
      model: llama-3.3-70b-versatile
  apiKeys:
    groq: file-key
  attemptTimeout: 5s
  historySize: 3
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("INSIGHT_RPS", "0.5")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.True(t, cfg.Media.CanUseS3())
	assert.True(t, cfg.Media.UseSSL)
	assert.Equal(t, "thedesk-media", cfg.Media.Bucket)
	assert.Equal(t, []llmclient.ModelSpec{{Provider: "groq", Model: "llama-3.3-70b-versatile"}}, cfg.Insight.Models)
	assert.Equal(t, "file-key", cfg.Insight.APIKeys["groq"])
	assert.Equal(t, "g-key", cfg.Insight.APIKeys["gemini"])
	assert.True(t, cfg.Insight.HasCredentials())
	assert.Equal(t, 5*time.Second, cfg.Insight.AttemptTimeout)
	assert.Equal(t, 0.5, cfg.Insight.RPS)
	assert.Equal(t, 3, cfg.Insight.HistorySize)
}

func TestLoadEnvErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSIGHT_MODELS", "gemini")
	_, err := LoadFile("")
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("INSIGHT_ATTEMPT_TIMEOUT", "soon")
	_, err = LoadFile("")
	require.Error(t, err)

	clearEnv(t)
	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLocalMediaUsesMinio(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARTIFACT_MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ROOT_USER", "desk")
	t.Setenv("MINIO_ROOT_PASSWORD", "desk123")
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.True(t, cfg.Media.CanUseS3())
	assert.False(t, cfg.Media.UseSSL)
	assert.Equal(t, "desk", cfg.Media.AccessKey)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8080", NormalizePort("8080"))
	assert.Equal(t, "127.0.0.1:80", NormalizePort("127.0.0.1:80"))
	assert.Equal(t, ":8081", NormalizePort(" "))
}
