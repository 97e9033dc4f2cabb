package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"booktable-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	RedisAddr      string
	SearchCacheTTL time.Duration

	KafkaBroker string
	KafkaTopic  string

	EmailAPIURL string
	EmailAPIKey string
	EmailFrom   string

	SMSAPIURL     string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFrom       string

	AdminEmail    string
	AdminPassword string

	CORSOrigins  []string
	RateLimitRPS float64
	ReminderCron string
	PublicURL    string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "booktable.db"),
		JWTSecret:      []byte(getEnv("JWT_SECRET", "booktable_dev_secret")),
		JWTTTL:         getDuration("JWT_TTL", 24*time.Hour),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		SearchCacheTTL: getDuration("SEARCH_CACHE_TTL", 30*time.Second),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "reservations"),
		EmailAPIURL:    getEnv("EMAIL_API_URL", "https://api.sendgrid.com/v3/mail/send"),
		EmailAPIKey:    os.Getenv("EMAIL_API_KEY"),
		EmailFrom:      os.Getenv("EMAIL_FROM"),
		SMSAPIURL:      os.Getenv("SMS_API_URL"),
		SMSAccountSID:  os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:   os.Getenv("SMS_AUTH_TOKEN"),
		SMSFrom:        os.Getenv("SMS_FROM"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		CORSOrigins:    getList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		ReminderCron:   getEnv("REMINDER_CRON", "0 9 * * *"),
		PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// OpenDB connects to the configured database. SQLite gets a single
// connection so that write transactions are serialised.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Approval{},
		&models.Table{},
		&models.Photo{},
		&models.Reservation{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account when configured and absent.
func SeedAdmin(db *gorm.DB, cfg Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Debug("admin seeding skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		log.Info("admin user already exists", slog.String("email", cfg.AdminEmail))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := models.User{
		FullName:     "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Info("admin user seeded", slog.String("email", cfg.AdminEmail))
	return nil
}
