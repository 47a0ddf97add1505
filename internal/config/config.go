package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/shopping-cart/internal/log"
)

type Application struct {
	Env     string `mapstructure:"env"     json:"env"`
	Host    string `mapstructure:"host"    json:"host"`
	Name    string `mapstructure:"name"    json:"name"`
	Version string `mapstructure:"version" json:"version"`
	Commit  string `mapstructure:"commit"  json:"commit"`
	Port    int    `mapstructure:"port"    json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	SSLMode        string `mapstructure:"ssl_mode"        json:"ssl_mode"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"    json:"auto_migrate"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

// URL renders the connection string understood by both pgx and lib/pq.
func (d Database) URL() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	url := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		sslMode,
	)
	if d.TimeZone != "" {
		url += "&timezone=" + d.TimeZone
	}
	return url
}

type Cache struct {
	Host     string        `mapstructure:"host"     json:"host"`
	Password string        `mapstructure:"password" json:"-"`
	Database int           `mapstructure:"database" json:"database"`
	TTL      time.Duration `mapstructure:"ttl"      json:"ttl"`
	Port     uint16        `mapstructure:"port"     json:"port"`
	Enabled  bool          `mapstructure:"enabled"  json:"enabled"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

type Log struct {
	Level    string `mapstructure:"level"    json:"level"`
	Format   string `mapstructure:"format"   json:"format"`
	Filepath string `mapstructure:"filepath" json:"filepath"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Log         `mapstructure:"log"         json:"log"`
}

var (
	once   sync.Once
	config *Config
)

// InitConfig loads the configuration once per process and exits on failure.
func InitConfig(c context.Context, filename string, paths ...string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("loading config")
		cfg, err := Load(filename, paths...)
		if err != nil {
			err = fmt.Errorf("failed loading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("loaded config")
	})
	return config
}

// Load reads env/<filename>.yaml (or the given paths) and applies environment overrides
// such as DB_HOST or APPLICATION_PORT.
func Load(filename string, paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{"./env"}
	}

	v := viper.New()
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("error when reading config with error=%w", err)
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config with error=%w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "development")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.name", "shopping-cart-service")
	v.SetDefault("application.port", 8080)
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.migration_path", "file://migrations")
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.min_connections", 2)
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
