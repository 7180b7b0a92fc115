// Package config loads the application settings from the environment,
// an optional .env file and an optional configs/config.yml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSecret is returned when SECRET_KEY is not configured.
var ErrMissingSecret = errors.New("SECRET_KEY is required")

// Config holds every setting read at process start.
type Config struct {
	SecretKey     string
	DatabaseURL   string
	HTTPAddr      string
	RunMigrations bool
	LogLevel      string
	CookieSecure  bool
	CSRFTTL       time.Duration
	FlashTTL      time.Duration
	Redis         RedisConfig
}

// RedisConfig is the connection info for the flash store. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Load reads .env (if present) into the environment, then resolves the settings.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(viper.New(), "configs")
}

// LoadFrom resolves the settings with v. Environment variables win over the
// config file, which wins over the defaults. A missing secret key is reported
// as ErrMissingSecret together with the otherwise complete Config, so tools
// that never sign tokens can still start.
func LoadFrom(v *viper.Viper, configDir string) (Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		SecretKey:     v.GetString("secret_key"),
		DatabaseURL:   v.GetString("database_url"),
		HTTPAddr:      v.GetString("http_addr"),
		RunMigrations: v.GetBool("run_migrations"),
		LogLevel:      v.GetString("log_level"),
		CookieSecure:  v.GetBool("cookie_secure"),
		CSRFTTL:       v.GetDuration("csrf_ttl"),
		FlashTTL:      v.GetDuration("flash_ttl"),
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
		},
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return cfg, ErrMissingSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("secret_key", "")
	v.SetDefault("database_url", "sqlite://users.db")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("run_migrations", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("csrf_ttl", time.Hour)
	v.SetDefault("flash_ttl", 10*time.Minute)
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
}
