package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3000"`

	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1:3306"`
	DBName     string `envconfig:"DB_NAME" default:"marketing_site"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`

	Webhooks

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ViewMarkSize int           `envconfig:"VIEW_MARK_SIZE" default:"10000"`
	ViewMarkTTL  time.Duration `envconfig:"VIEW_MARK_TTL" default:"24h"`

	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"site.events"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`

	ListTimeout    time.Duration `envconfig:"LIST_TIMEOUT" default:"10s"`
	MetricsEnabled bool          `envconfig:"METRICS_ENABLED" default:"true"`
}

// Webhooks holds one automation endpoint per notification kind. An empty URL
// disables that kind.
type Webhooks struct {
	NewBooking        string `envconfig:"WEBHOOK_NEW_BOOKING_URL"`
	CancelBooking     string `envconfig:"WEBHOOK_CANCEL_BOOKING_URL"`
	RescheduleBooking string `envconfig:"WEBHOOK_RESCHEDULE_BOOKING_URL"`
	Email             string `envconfig:"WEBHOOK_EMAIL_URL"`
}

// LoadEnv reads an optional .env file and then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: failed to read .env: %v", err)
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	env.BaseURL = strings.TrimRight(strings.TrimSpace(env.BaseURL), "/")
	return env
}

// DSN builds the MySQL connection string with the driver's own formatter, so
// passwords containing @, / or ? still parse.
func (e Env) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = e.DBHost
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
