package config

import (
	"fmt"
	"strings"
	"time"

	"food-ordering-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBPath      string `envconfig:"DB_PATH" default:":memory:"`
	SeedCatalog bool   `envconfig:"SEED_CATALOG" default:"true"`

	// Empty RedisAddr keeps carts in process memory
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CartTTL   time.Duration `envconfig:"CART_TTL" default:"168h"`

	// In-memory cart engines idle this long are dropped and rebuilt on demand
	CartIdleTimeout time.Duration `envconfig:"CART_IDLE_TIMEOUT" default:"30m"`
	CartMaxSessions int           `envconfig:"CART_MAX_SESSIONS" default:"10000"`

	KafkaBrokers   string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic     string `envconfig:"KAFKA_TOPIC" default:"order-status"`
	AMQPURL        string `envconfig:"AMQP_URL" default:""`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"order_status_fanout"`

	ConfirmDelay   time.Duration `envconfig:"CONFIRM_DELAY" default:"3s"`
	DeliveryWindow time.Duration `envconfig:"DELIVERY_WINDOW" default:"45m"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"food_ordering_cart_secret"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Brokers splits KafkaBrokers on commas
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// OpenDB opens the sqlite database at dsn and migrates every model
func OpenDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// One connection keeps every caller on the same in-memory database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.Restaurant{},
		&models.Order{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if log != nil {
		log.Info("database connected and migrated", zap.String("dsn", dsn))
	}
	return db, nil
}
