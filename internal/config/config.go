package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// 在庫数の読み取りモード
const (
	StockParseLenient = "lenient"
	StockParseStrict  = "strict"
)

// Configはアプリ全体の設定
type Config struct {
	Port        string // サーバーポート（8080）
	ServiceName string
	GoEnv       string // development/production
	LogLevel    string

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        gormlogger.LogLevel
	DBTxAttempts      int // デッドロック時のtx試行回数

	JWTSecret string // JWT署名シークレット

	StockParseMode   string // lenient/strict
	DefaultWarehouse string
	DefaultCategory  string
	DefaultLocale    string

	KafkaBrokers []string // 空ならイベントは送らない
	KafkaTopic   string

	OtelEndpoint   string // 空ならトレースは出さない
	OtelAuthHeader string
}

// Loadは環境変数（.envはmainで読み込み済み）
func Load() (Config, error) {
	pgPort, err := getEnvAsInt("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "stock-market"),
		GoEnv:       getEnv("GO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnv("POSTGRES_DB", "stock_market"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBLogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", gormlogger.Warn),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StockParseMode:   strings.ToLower(getEnv("STOCK_PARSE_MODE", StockParseLenient)),
		DefaultWarehouse: getEnv("DEFAULT_WAREHOUSE", "Main Warehouse"),
		DefaultCategory:  getEnv("DEFAULT_CATEGORY", "General"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront.events"),

		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),
	}

	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 50); err != nil {
		return Config{}, err
	}
	if cfg.DBTxAttempts, err = getEnvAsInt("DB_TX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.DatabaseURL == "" && cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StockParseMode != StockParseLenient && cfg.StockParseMode != StockParseStrict {
		return Config{}, fmt.Errorf("STOCK_PARSE_MODE must be %q or %q", StockParseLenient, StockParseStrict)
	}

	return cfg, nil
}

// gormに渡すDSN
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production" || c.GoEnv == "prod"
}

// 起動ログ用。パスワード類は出さない。
func (c Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.GoEnv),
		zap.String("port", c.Port),
		zap.String("db_host", c.PostgresHost),
		zap.String("db_name", c.PostgresDB),
		zap.Bool("database_url", c.DatabaseURL != ""),
		zap.String("stock_parse_mode", c.StockParseMode),
		zap.Strings("kafka_brokers", c.KafkaBrokers),
		zap.Bool("tracing", c.OtelEndpoint != ""),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func getEnvAsLogLevel(key string, def gormlogger.LogLevel) gormlogger.LogLevel {
	switch os.Getenv(key) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return def
	}
}

// "a:9092, b:9092" -> [a:9092 b:9092]
func splitList(v string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
