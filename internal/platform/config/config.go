// Package config loads the immutable process configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/caarlos0/env/v11"

	strutil "warden/pkg/platform/strings"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
)

// TokenSecretSize is the decoded length TOKEN_SECRET must have.
const TokenSecretSize = 32

// Server captures everything main needs to wire the process.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","`

	StoreBackend   string `env:"STORE_BACKEND" envDefault:"postgres"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"postgres"`

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Rabbit   RabbitConfig
	Identity IdentityConfig
	Security SecurityConfig
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig is optional. With no brokers registration events stay in process.
type KafkaConfig struct {
	Brokers         []string      `env:"KAFKA_BROKERS" envSeparator:","`
	UserEventsTopic string        `env:"KAFKA_USER_EVENTS_TOPIC" envDefault:"identity.user.registered"`
	ProduceTimeout  time.Duration `env:"KAFKA_PRODUCE_TIMEOUT" envDefault:"5s"`
}

// RabbitConfig is optional. With no URL outbound mail is only logged.
type RabbitConfig struct {
	URL          string `env:"RABBITMQ_URL"`
	MailExchange string `env:"MAIL_EXCHANGE" envDefault:"mail"`
}

type IdentityConfig struct {
	DefaultEmailFrom  string   `env:"DEFAULT_EMAIL_FROM" envDefault:"noreply@localhost"`
	ResetSenderUserID int64    `env:"RESET_PASSWORD_SENDER_USER_ID" envDefault:"0"`
	BaseUserGroupID   int64    `env:"BASE_USER_GROUP_ID" envDefault:"0"`
	DefaultEntity     int64    `env:"DEFAULT_ENTITY" envDefault:"1"`
	Origin            string   `env:"REGISTRATION_ORIGIN" envDefault:"self-signup"`
	PasswordMinLength int      `env:"PASSWORD_MIN_LENGTH" envDefault:"1"`
	DefaultRights     []string `env:"DEFAULT_USER_RIGHTS" envSeparator:","`
}

type SecurityConfig struct {
	TokenSecret        string `env:"TOKEN_SECRET,required"`
	ServiceTokenSecret string `env:"SERVICE_TOKEN_SECRET"`
	ServiceTokenIssuer string `env:"SERVICE_TOKEN_ISSUER" envDefault:"warden"`
}

// FromEnv parses and validates the configuration. It is called once from main.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Identity.DefaultRights = strutil.CleanList(cfg.Identity.DefaultRights)
	cfg.Kafka.Brokers = strutil.CleanList(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistency between backends and their settings.
func (c Server) Validate() error {
	switch c.StoreBackend {
	case StoreBackendMemory:
	case StoreBackendPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.SessionBackend {
	case SessionBackendPostgres:
	case SessionBackendRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if _, err := c.TokenSecret(); err != nil {
		return err
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.Identity.PasswordMinLength < 1 {
		return errors.New("PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.Identity.DefaultEntity < 1 {
		return errors.New("DEFAULT_ENTITY must be positive")
	}
	return nil
}

// TokenSecret decodes TOKEN_SECRET.
func (c Server) TokenSecret() ([]byte, error) {
	secret, err := hex.DecodeString(c.Security.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_SECRET must be hex: %w", err)
	}
	if len(secret) != TokenSecretSize {
		return nil, fmt.Errorf("TOKEN_SECRET must decode to %d bytes, got %d", TokenSecretSize, len(secret))
	}
	return secret, nil
}

func (c Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

// MemorySessions reports whether sessions follow the store backend into memory.
func (c Server) MemorySessions() bool {
	return c.StoreBackend == StoreBackendMemory && c.SessionBackend == SessionBackendPostgres
}
