package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	env_utils "quotaguard/internal/util/env"
	"quotaguard/internal/util/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

type EnvVariables struct {
	IsTesting   bool
	DatabaseDsn string            `env:"DATABASE_DSN" required:"true"`
	EnvMode     env_utils.EnvMode `env:"ENV_MODE"     required:"true"`
	RootPath    string            `env:"ROOT_PATH"    required:"true"`
	// cache / counter store
	ValkeyHost     string `env:"VALKEY_HOST"     required:"true"`
	ValkeyPort     string `env:"VALKEY_PORT"     required:"true"`
	ValkeyUsername string `env:"VALKEY_USERNAME" required:"false"`
	ValkeyPassword string `env:"VALKEY_PASSWORD" required:"false"`
	ValkeyIsSsl    bool   `env:"VALKEY_IS_SSL"   required:"true"`
	// auth
	AdminJwtSecret string `env:"ADMIN_JWT_SECRET" required:"true"`
	// rate limiting
	RateLimitIpLimit         int    `env:"RATE_LIMIT_IP_LIMIT"          env-default:"100"`
	RateLimitIpWindowSec     int    `env:"RATE_LIMIT_IP_WINDOW_SEC"     env-default:"60"`
	RateLimitTenantLimit     int    `env:"RATE_LIMIT_TENANT_LIMIT"      env-default:"1000"`
	RateLimitTenantWindowSec int    `env:"RATE_LIMIT_TENANT_WINDOW_SEC" env-default:"60"`
	RateLimitKeyLimit        int    `env:"RATE_LIMIT_KEY_LIMIT"         env-default:"600"`
	RateLimitKeyWindowSec    int    `env:"RATE_LIMIT_KEY_WINDOW_SEC"    env-default:"60"`
	RateLimitValidateLimit   int    `env:"RATE_LIMIT_VALIDATE_LIMIT"    env-default:"60"`
	RateLimitValidateWinSec  int    `env:"RATE_LIMIT_VALIDATE_WINDOW_SEC" env-default:"60"`
	RateLimitSkipPaths       string `env:"RATE_LIMIT_SKIP_PATHS"        env-default:"/api/v1/healthcheck"`
	RateLimitBypass          bool   `env:"RATE_LIMIT_BYPASS"            env-default:"false"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

// RateLimitSkipPathList returns the configured skip paths as prefixes.
func (e EnvVariables) RateLimitSkipPathList() []string {
	parts := strings.Split(e.RateLimitSkipPaths, ",")

	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}

	return paths
}

// IsRateLimitBypassed reports whether the non-production bypass toggle is in
// effect. The toggle is refused in production.
func (e EnvVariables) IsRateLimitBypassed() bool {
	if !e.RateLimitBypass {
		return false
	}

	if e.EnvMode == env_utils.EnvModeProduction {
		log.Warn("RATE_LIMIT_BYPASS is set but ignored in production mode")
		return false
	}

	return true
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	rootPath := cwd
	for {
		if _, err := os.Stat(filepath.Join(rootPath, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(rootPath)
		if parent == rootPath {
			break
		}

		rootPath = parent
	}

	env.RootPath = rootPath

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(rootPath, ".env"),
	}

	var loaded bool
	for _, path := range envPaths {
		log.Info("Trying to load .env", "path", path)
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			loaded = true
			break
		}
	}

	if !loaded {
		log.Error("Error loading .env file: could not find .env in any location")
		os.Exit(1)
	}

	err = cleanenv.ReadEnv(&env)
	if err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if env.DatabaseDsn == "" {
		log.Error("DATABASE_DSN is empty")
		os.Exit(1)
	}

	if env.EnvMode == "" {
		log.Error("ENV_MODE is empty")
		os.Exit(1)
	}
	if env.EnvMode != env_utils.EnvModeDevelopment && env.EnvMode != env_utils.EnvModeProduction {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}
	log.Info("ENV_MODE loaded", "mode", env.EnvMode)

	if env.ValkeyHost == "" {
		log.Error("VALKEY_HOST is empty")
		os.Exit(1)
	}
	if env.ValkeyPort == "" {
		log.Error("VALKEY_PORT is empty")
		os.Exit(1)
	}

	if env.AdminJwtSecret == "" {
		log.Error("ADMIN_JWT_SECRET is empty")
		os.Exit(1)
	}

	log.Info("Environment variables loaded successfully!")
}
