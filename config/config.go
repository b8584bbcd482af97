package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"dev"`
	ServerPort int    `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	APIPrefix  string `yaml:"api_prefix" env:"API_PREFIX" env-default:"/api/v1"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	SentryDSN  string `yaml:"sentry_dsn" env:"SENTRY_DSN"`

	// CORSAllowedOrigins lists the origins browsers may call the API from.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	MQ            MQConfig            `yaml:"mq"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver" env:"DB_DRIVER" env-default:"mongodb"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`

	Mongo MongoConfig `yaml:"mongo"`

	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"students"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	DBName   string `yaml:"name" env:"DB_NAME" env-default:"students_db"`
	UseSSL   bool   `yaml:"use_ssl" env:"DB_USE_SSL" env-default:"false"`

	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"students.db"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"DATABASE_NAME" env-default:"student_management"`
}

type AuthConfig struct {
	JWTSecret                string `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTAlgorithm             string `yaml:"jwt_algorithm" env:"JWT_ALGORITHM" env-default:"HS256"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes" env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
	BcryptCost               int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// TokenTTL is the lifetime of issued access tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type MQConfig struct {
	// Backend is "rabbitmq", "pubsub", or empty to disable student events.
	Backend              string         `yaml:"backend" env:"MQ_BACKEND"`
	StudentEventsChannel string         `yaml:"student_events_channel" env:"STUDENT_EVENTS_CHANNEL" env-default:"students.events"`
	RabbitMQ             RabbitMQConfig `yaml:"rabbitmq"`
	PubSub               PubSubConfig   `yaml:"pubsub"`
}

type RabbitMQConfig struct {
	URL          string `yaml:"url" env:"RABBITMQ_URL"`
	QueueDurable bool   `yaml:"queue_durable" env:"RABBITMQ_QUEUE_DURABLE" env-default:"true"`
}

type PubSubConfig struct {
	ProjectID       string `yaml:"project_id" env:"PUBSUB_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"PUBSUB_CREDENTIALS_FILE"`
}

type ObjectStorageConfig struct {
	// Backend is "minio", "gcs", or empty to disable student exports.
	Backend string      `yaml:"backend" env:"OBJECT_STORAGE"`
	Minio   MinioConfig `yaml:"minio"`
	GCS     GCSConfig   `yaml:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"students"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket" env:"GCS_BUCKET"`
	ProjectID       string `yaml:"project_id" env:"GCS_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"GCS_CREDENTIALS_FILE"`
}

// LoadConfig reads configuration from the environment. When CONFIG_PATH
// points at a YAML file it is read first and the environment overrides it.
func LoadConfig() (Config, error) {
	if env := os.Getenv("ENV"); env == "" || env == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm))
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}

	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	switch c.MQ.Backend {
	case "", "rabbitmq", "pubsub":
	default:
		errs = append(errs, fmt.Errorf("unsupported MQ_BACKEND %q", c.MQ.Backend))
	}

	switch c.ObjectStorage.Backend {
	case "", "minio", "gcs":
	default:
		errs = append(errs, fmt.Errorf("unsupported OBJECT_STORAGE %q", c.ObjectStorage.Backend))
	}

	return errors.Join(errs...)
}
