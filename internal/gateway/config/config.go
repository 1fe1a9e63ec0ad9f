package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	llmclient "thedesk/internal/llmClient"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "THEDESK_CONFIG"

type Config struct {
	Port        string        `yaml:"port"`
	Env         string        `yaml:"env"`
	DatabaseURL string        `yaml:"databaseUrl"`
	Media       MediaConfig   `yaml:"media"`
	Insight     InsightConfig `yaml:"insight"`
}

// IsLocal reports whether the gateway runs in local development mode.
func (c Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

type MediaConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
}

// CanUseS3 reports whether every field needed to reach the bucket is set.
func (m MediaConfig) CanUseS3() bool {
	return m.Enabled &&
		strings.TrimSpace(m.Endpoint) != "" &&
		strings.TrimSpace(m.AccessKey) != "" &&
		strings.TrimSpace(m.SecretKey) != "" &&
		strings.TrimSpace(m.Bucket) != ""
}

type InsightConfig struct {
	// Models is the ordered remote fallback chain.
	Models []llmclient.ModelSpec `yaml:"models"`
	// APIKeys maps provider name to credential.
	APIKeys        map[string]string `yaml:"apiKeys"`
	AttemptTimeout time.Duration     `yaml:"attemptTimeout"`
	RPS            float64           `yaml:"rps"`
	Burst          int               `yaml:"burst"`
	HistorySize    int               `yaml:"historySize"`
}

// HasCredentials reports whether any model in the chain has a key.
func (c InsightConfig) HasCredentials() bool {
	for _, m := range c.Models {
		if strings.TrimSpace(c.APIKeys[m.Provider]) != "" {
			return true
		}
	}
	return false
}

func defaults() Config {
	return Config{
		Port: ":8081",
		Env:  "local",
		Media: MediaConfig{
			Region: "us-east-1",
			Bucket: "thedesk-media",
			UseSSL: true,
		},
		Insight: InsightConfig{
			Models:         append([]llmclient.ModelSpec(nil), llmclient.DefaultChain...),
			APIKeys:        map[string]string{},
			AttemptTimeout: 20 * time.Second,
			RPS:            1,
			Burst:          2,
			HistorySize:    20,
		},
	}
}

// Load reads .env, then the optional YAML file named by THEDESK_CONFIG, then
// environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load without the .env step. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if cfg.Insight.APIKeys == nil {
			cfg.Insight.APIKeys = map[string]string{}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if envPort := env("PORT"); envPort != "" {
		cfg.Port = envPort
	}
	cfg.Port = NormalizePort(cfg.Port)
	cfg.Env = firstNonEmpty(env("APP_ENV"), cfg.Env, "local")
	cfg.DatabaseURL = firstNonEmpty(env("DATABASE_URL"), cfg.DatabaseURL)

	applyMediaEnv(cfg.Env, &cfg.Media)

	in := &cfg.Insight
	for provider, key := range map[string]string{
		llmclient.ProviderGemini: "GEMINI_API_KEY",
		llmclient.ProviderGroq:   "GROQ_API_KEY",
		llmclient.ProviderOpenAI: "OPENAI_API_KEY",
	} {
		if v := env(key); v != "" {
			in.APIKeys[provider] = v
		}
	}
	if raw := env("INSIGHT_MODELS"); raw != "" {
		chain, err := llmclient.ParseChain(raw)
		if err != nil {
			return fmt.Errorf("INSIGHT_MODELS: %w", err)
		}
		in.Models = chain
	}
	if raw := env("INSIGHT_ATTEMPT_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("INSIGHT_ATTEMPT_TIMEOUT: %w", err)
		}
		in.AttemptTimeout = d
	}
	if raw := env("INSIGHT_RPS"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("INSIGHT_RPS: %w", err)
		}
		in.RPS = v
	}
	if raw := env("INSIGHT_BURST"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("INSIGHT_BURST: %w", err)
		}
		in.Burst = v
	}
	if raw := env("INSIGHT_HISTORY_SIZE"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("INSIGHT_HISTORY_SIZE: %w", err)
		}
		in.HistorySize = v
	}
	return nil
}

func applyMediaEnv(appEnv string, m *MediaConfig) {
	local := strings.EqualFold(strings.TrimSpace(appEnv), "local")
	if local {
		m.Endpoint = firstNonEmpty(env("ARTIFACT_MINIO_ENDPOINT"), m.Endpoint)
		m.UseSSL = false
	} else {
		m.Endpoint = firstNonEmpty(env("ARTIFACT_S3_ENDPOINT"), m.Endpoint)
		if raw := env("ARTIFACT_S3_USE_SSL"); raw != "" {
			v, err := strconv.ParseBool(raw)
			m.UseSSL = err != nil || v
		}
	}
	m.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), m.Region, "us-east-1")
	m.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), m.AccessKey)
	m.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), m.SecretKey)
	m.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), m.Bucket)
	m.Enabled = m.Enabled || m.Endpoint != ""
}

// NormalizePort turns "8080" into ":8080" and leaves host:port alone.
func NormalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ":8081"
	}
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
