package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	OpenRouter OpenRouterConfig
	Render     RenderConfig
	Linter     LinterConfig
	Paths      PathsConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RenderPerHour int
	BatchPerHour  int
}

// OpenRouterConfig configures the code-completion provider.
type OpenRouterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// RenderConfig configures the manim render executor.
type RenderConfig struct {
	Binary         string
	DefaultQuality string
	MaxWorkers     int
	TimeoutSeconds int
}

// LinterConfig configures the static analyzer subprocess.
type LinterConfig struct {
	Binary         string
	TimeoutSeconds int
}

// PathsConfig holds the filesystem roots used by the pipeline: the static
// tree served over HTTP, the final video directory under it, and the scratch
// root that per-job working directories are created in.
type PathsConfig struct {
	StaticDir string
	VideosDir string
	TempDir   string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("OPENROUTER_API_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.cors_origins", "CORS_ORIGINS")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("ratelimit.render_per_hour", "RATELIMIT_RENDER_PER_HOUR")
	_ = viper.BindEnv("ratelimit.batch_per_hour", "RATELIMIT_BATCH_PER_HOUR")
	_ = viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = viper.BindEnv("openrouter.base_url", "OPENROUTER_BASE_URL")
	_ = viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	_ = viper.BindEnv("openrouter.timeout", "OPENROUTER_TIMEOUT")
	_ = viper.BindEnv("render.binary", "MANIM_BINARY")
	_ = viper.BindEnv("render.default_quality", "RENDER_QUALITY")
	_ = viper.BindEnv("render.max_workers", "MANIM_MAX_WORKERS")
	_ = viper.BindEnv("render.timeout", "RENDER_TIMEOUT")
	_ = viper.BindEnv("linter.binary", "LINTER_BINARY")
	_ = viper.BindEnv("linter.timeout", "LINTER_TIMEOUT")
	_ = viper.BindEnv("paths.static_dir", "STATIC_DIR")
	_ = viper.BindEnv("paths.videos_dir", "VIDEOS_DIR")
	_ = viper.BindEnv("paths.temp_dir", "TEMP_DIR")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.cors_origins", "http://localhost:3000")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("ratelimit.render_per_hour", 30)
	viper.SetDefault("ratelimit.batch_per_hour", 10)

	// OpenRouter defaults
	viper.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("openrouter.model", "meta-llama/llama-3.2-11b-vision-instruct:free")
	viper.SetDefault("openrouter.timeout", 30)

	// Render defaults
	viper.SetDefault("render.binary", "manim")
	viper.SetDefault("render.default_quality", "low")
	viper.SetDefault("render.max_workers", 4)
	viper.SetDefault("render.timeout", 300)

	// Linter defaults
	viper.SetDefault("linter.binary", "ruff")
	viper.SetDefault("linter.timeout", 10)

	// Filesystem defaults
	viper.SetDefault("paths.static_dir", "./static")
	viper.SetDefault("paths.videos_dir", "./static/videos")
	viper.SetDefault("paths.temp_dir", "./tmp")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("server.port"),
			Env:         viper.GetString("server.env"),
			LogLevel:    viper.GetString("server.log_level"),
			CORSOrigins: viper.GetString("server.cors_origins"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			RenderPerHour: viper.GetInt("ratelimit.render_per_hour"),
			BatchPerHour:  viper.GetInt("ratelimit.batch_per_hour"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:         viper.GetString("openrouter.api_key"),
			BaseURL:        viper.GetString("openrouter.base_url"),
			Model:          viper.GetString("openrouter.model"),
			TimeoutSeconds: viper.GetInt("openrouter.timeout"),
		},
		Render: RenderConfig{
			Binary:         viper.GetString("render.binary"),
			DefaultQuality: viper.GetString("render.default_quality"),
			MaxWorkers:     viper.GetInt("render.max_workers"),
			TimeoutSeconds: viper.GetInt("render.timeout"),
		},
		Linter: LinterConfig{
			Binary:         viper.GetString("linter.binary"),
			TimeoutSeconds: viper.GetInt("linter.timeout"),
		},
		Paths: PathsConfig{
			StaticDir: viper.GetString("paths.static_dir"),
			VideosDir: viper.GetString("paths.videos_dir"),
			TempDir:   viper.GetString("paths.temp_dir"),
		},
	}

	return cfg, nil
}
