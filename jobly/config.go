package jobly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/lunagic/environment-go/environment"
	"github.com/lunagic/jobly/joblyservices/cache"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/queue"
	"github.com/lunagic/jobly/joblyservices/vault"
)

type AppConfig struct {
	// App
	AppHTTPHost        string `env:"APP_HTTP_HOST"`
	AppHTTPPort        int    `env:"APP_HTTP_PORT"`
	AppKey             string `env:"APP_KEY"`
	AppCacheTTLSeconds int    `env:"APP_CACHE_TTL_SECONDS"`
	AppLogFormat       string `env:"APP_LOG_FORMAT"`
	AppLogLevel        string `env:"APP_LOG_LEVEL"`
	// App Drivers
	AppDriverDatabase string `env:"APP_DRIVER_DATABASE"`
	AppDriverCache    string `env:"APP_DRIVER_CACHE"`
	AppDriverQueue    string `env:"APP_DRIVER_QUEUE"`
	// Services
	MySQLHost       string `env:"MYSQL_HOST"`
	MySQLName       string `env:"MYSQL_NAME"`
	MySQLPass       string `env:"MYSQL_PASS"`
	MySQLPort       int    `env:"MYSQL_PORT"`
	MySQLUser       string `env:"MYSQL_USER"`
	PostgresHost    string `env:"POSTGRES_HOST"`
	PostgresName    string `env:"POSTGRES_NAME"`
	PostgresPass    string `env:"POSTGRES_PASS"`
	PostgresPort    int    `env:"POSTGRES_PORT"`
	PostgresSSLMode string `env:"POSTGRES_SSL_MODE"`
	PostgresUser    string `env:"POSTGRES_USER"`
	RabbitMQHost    string `env:"RABBITMQ_HOST"`
	RabbitMQPass    string `env:"RABBITMQ_PASS"`
	RabbitMQPort    int    `env:"RABBITMQ_PORT"`
	RabbitMQUser    string `env:"RABBITMQ_USER"`
	RedisHost       string `env:"REDIS_HOST"`
	RedisNumber     int    `env:"REDIS_NUMBER"`
	RedisPass       string `env:"REDIS_PASS"`
	RedisPort       int    `env:"REDIS_PORT"`
	RedisUser       string `env:"REDIS_USER"`
	SQLitePath      string `env:"SQLITE_PATH"`
}

func NewConfig() AppConfig {
	return AppConfig{
		AppCacheTTLSeconds: 60,
		AppDriverCache:     "memory",
		AppDriverDatabase:  "sqlite",
		AppDriverQueue:     "memory",
		AppHTTPHost:        "0.0.0.0",
		AppHTTPPort:        3001,
		AppLogFormat:       "text",
		AppLogLevel:        "info",
		MySQLHost:          "127.0.0.1",
		MySQLPort:          3306,
		PostgresHost:       "127.0.0.1",
		PostgresPort:       5432,
		PostgresSSLMode:    "disable",
		RabbitMQHost:       "127.0.0.1",
		RabbitMQPort:       5672,
		RedisHost:          "127.0.0.1",
		RedisPort:          6379,
		SQLitePath:         "jobly.sqlite",
	}
}

// LoadConfig starts from NewConfig and decodes the environment over it. The
// process environment wins, then ".env.local" and ".env" from the working
// directory, then the given env files in order. Missing env files are skipped.
func LoadConfig(envFiles ...string) (AppConfig, error) {
	env := environment.New()
	for _, envFile := range envFiles {
		if err := parseEnvFile(env, envFile); err != nil {
			return AppConfig{}, err
		}
	}

	config := NewConfig()
	if err := env.Decode(&config); err != nil {
		return AppConfig{}, fmt.Errorf("decoding environment: %w", err)
	}

	return config, nil
}

func parseEnvFile(env *environment.Service, envFile string) error {
	file, err := os.Open(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	defer file.Close()

	if err := env.Parse(file); err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	return nil
}

func (config AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", config.AppHTTPHost, config.AppHTTPPort)
}

func (config AppConfig) CacheTTL() time.Duration {
	return time.Duration(config.AppCacheTTLSeconds) * time.Second
}

func (config AppConfig) Logger(writer io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(config.AppLogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", config.AppLogLevel)
	}

	options := &slog.HandlerOptions{Level: level}
	switch config.AppLogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(writer, options)), nil
	case "text":
		return slog.New(slog.NewTextHandler(writer, options)), nil
	}

	return nil, fmt.Errorf("invalid log format: %s", config.AppLogFormat)
}

func (config AppConfig) Vault() (vault.Vault, error) {
	v, err := vault.New([]byte(config.AppKey))
	if err != nil {
		return vault.Vault{}, fmt.Errorf("APP_KEY must be 16, 24 or 32 bytes: %w", err)
	}

	return v, nil
}

func (config AppConfig) Database(configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	switch config.AppDriverDatabase {
	case "sqlite":
		return database.New(
			database.NewDriverSQLite(config.SQLitePath),
			configFuncs...,
		)
	case "postgres":
		return database.New(
			database.NewDriverPostgres(database.DriverPostgresConfig{
				Host:    config.PostgresHost,
				Port:    config.PostgresPort,
				User:    config.PostgresUser,
				Pass:    config.PostgresPass,
				Name:    config.PostgresName,
				SSLMode: config.PostgresSSLMode,
			}),
			configFuncs...,
		)
	case "mysql":
		return database.New(
			database.NewDriverMySQL(database.DriverMySQLConfig{
				Host: config.MySQLHost,
				Port: config.MySQLPort,
				User: config.MySQLUser,
				Pass: config.MySQLPass,
				Name: config.MySQLName,
			}),
			configFuncs...,
		)
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

func (config AppConfig) Cache(ctx context.Context) (cache.Driver, error) {
	switch config.AppDriverCache {
	case "memory":
		return cache.NewDriverMemory(ctx, time.Minute)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:    config.RedisHost,
			Number:  config.RedisNumber,
			Pass:    config.RedisPass,
			Port:    config.RedisPort,
			User:    config.RedisUser,
			Timeout: time.Second * 2,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}

func (config AppConfig) Queue() (queue.Driver, error) {
	switch config.AppDriverQueue {
	case "memory":
		return queue.NewDriverMemory()
	case "rabbitmq":
		return queue.NewDriverRabbitMQ(queue.DriverRabbitMQConfig{
			Host: config.RabbitMQHost,
			Pass: config.RabbitMQPass,
			Port: config.RabbitMQPort,
			User: config.RabbitMQUser,
		})
	}

	return nil, fmt.Errorf("invalid queue driver: %s", config.AppDriverQueue)
}
