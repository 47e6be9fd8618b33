package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for the lottery's durable state.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	MetricsAddr   string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string

	Lottery  LotteryConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// LotteryConfig holds lifecycle and custody settings.
type LotteryConfig struct {
	Storage      string
	TickDuration time.Duration
	TxTimeout    time.Duration
	Custody      string
	// VenueAccount and VenueYieldBps configure the simulated venue used when
	// no external venue is wired.
	VenueAccount  string
	VenueYieldBps int64
	// VenueFailureThreshold consecutive venue errors open its breaker for
	// VenueCooldown.
	VenueFailureThreshold int
	VenueCooldown         time.Duration
	AuditBuffer           int
	// FaucetAccounts are credited FaucetAmount of FaucetCurrency at startup on
	// the simulated token ledger.
	FaucetCurrency string
	FaucetAccounts []string
	FaucetAmount   int64
}

// DurableStorage reports whether lottery state outlives the process. The
// simulated token ledger and venue never do, so a durable backend paired with
// them loses custody balances on restart while tickets survive.
func (c LotteryConfig) DurableStorage() bool {
	return c.Storage == StorageRedis || c.Storage == StoragePostgres
}

// RedisConfig configures the Redis state backend.
type RedisConfig struct {
	URL          string
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the PostgreSQL state backend.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the audit event stream. An empty broker list keeps
// audit events in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
	Replicas   int16
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          getEnv("LOTTO_ADDR", ":8080"),
		MetricsAddr:   getEnv("LOTTO_METRICS_ADDR", ":9090"),
		LogLevel:      getEnv("LOTTO_LOG_LEVEL", "info"),
		// Use a default for development - should be overridden in production
		JWTSigningKey: getEnv("LOTTO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getEnv("LOTTO_JWT_ISSUER", "lotto"),
		Lottery: LotteryConfig{
			Storage:       strings.ToLower(getEnv("LOTTO_STORAGE", StorageMemory)),
			TickDuration:  getDuration("LOTTO_TICK_DURATION", 5*time.Second),
			TxTimeout:     getDuration("LOTTO_TX_TIMEOUT", 30*time.Second),
			Custody:       getEnv("LOTTO_CUSTODY_ADDRESS", "lotto-custody"),
			VenueAccount:  getEnv("LOTTO_VENUE_ACCOUNT", "lotto-venue"),
			VenueYieldBps: int64(getInt("LOTTO_VENUE_YIELD_BPS", 500)),
			AuditBuffer:   getInt("LOTTO_AUDIT_BUFFER", 256),

			VenueFailureThreshold: getInt("LOTTO_VENUE_FAILURE_THRESHOLD", 3),
			VenueCooldown:         getDuration("LOTTO_VENUE_COOLDOWN", 30*time.Second),

			FaucetCurrency: getEnv("LOTTO_FAUCET_CURRENCY", "usdc"),
			FaucetAccounts: splitList(os.Getenv("LOTTO_FAUCET_ACCOUNTS")),
			FaucetAmount:   int64(getInt("LOTTO_FAUCET_AMOUNT", 10_000_000_000)),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("LOTTO_REDIS_URL"),
			KeyPrefix:    getEnv("LOTTO_REDIS_KEY_PREFIX", "lotto:"),
			PoolSize:     getInt("LOTTO_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("LOTTO_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("LOTTO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("LOTTO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("LOTTO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("LOTTO_POSTGRES_DSN"),
			Table:           getEnv("LOTTO_POSTGRES_TABLE", "lottery_state"),
			MaxOpenConns:    getInt("LOTTO_POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("LOTTO_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("LOTTO_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("LOTTO_KAFKA_BROKERS")),
			AuditTopic: getEnv("LOTTO_KAFKA_AUDIT_TOPIC", "lotto.audit"),
			Partitions: int32(getInt("LOTTO_KAFKA_PARTITIONS", 1)),
			Replicas:   int16(getInt("LOTTO_KAFKA_REPLICAS", 1)),
		},
	}
}

// Validate rejects combinations main cannot start with.
func (s Server) Validate() error {
	if s.JWTSigningKey == "" {
		return fmt.Errorf("LOTTO_JWT_SIGNING_KEY must not be empty")
	}
	if s.Lottery.TickDuration <= 0 {
		return fmt.Errorf("LOTTO_TICK_DURATION must be positive")
	}
	if s.Lottery.Custody == "" {
		return fmt.Errorf("LOTTO_CUSTODY_ADDRESS must not be empty")
	}
	if len(s.Lottery.FaucetAccounts) > 0 && s.Lottery.FaucetAmount <= 0 {
		return fmt.Errorf("LOTTO_FAUCET_AMOUNT must be positive when faucet accounts are set")
	}
	switch s.Lottery.Storage {
	case StorageMemory:
	case StorageRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("LOTTO_REDIS_URL is required for redis storage")
		}
	case StoragePostgres:
		if s.Postgres.DSN == "" {
			return fmt.Errorf("LOTTO_POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown LOTTO_STORAGE %q", s.Lottery.Storage)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
