package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	defaultQuota          = "10GiB"
	defaultMaxUpload      = "100MiB"
	defaultRetentionDays  = 90
	defaultPurgeAt        = "03:00"
	defaultBackupAt       = "02:00"
	defaultRedisLockTTL   = 30 * time.Minute
	defaultShutdownPeriod = 5 * time.Second
)

type (
	APP struct {
		Name           string
		Host           string
		Port           string
		Env            string
		JWTSecret      string
		DefaultQuota   uint64
		MaxUploadBytes uint64
		ShutdownPeriod time.Duration
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	Blob struct {
		Endpoint        string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
		UseSSL          bool
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
		LockTTL  time.Duration
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Tracing struct {
		Endpoint string
	}
	Lifecycle struct {
		Retention     time.Duration
		PurgeAt       string
		BackupAt      string
		BackupEnabled bool
	}

	Config struct {
		App       APP
		DB        DB
		Blob      Blob
		Redis     Redis
		MQ        MQ
		Tracing   Tracing
		Lifecycle Lifecycle
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, def.String()))
	if err != nil {
		return def
	}
	return v
}

func getEnvBytes(key, def string) (uint64, error) {
	raw := getEnv(key, def)
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid size %s=%q: %w", key, raw, err)
	}
	return n, nil
}

func Load() (Config, error) {
	quota, err := getEnvBytes("STORAGE_DEFAULT_QUOTA", defaultQuota)
	if err != nil {
		return Config{}, err
	}
	maxUpload, err := getEnvBytes("STORAGE_MAX_UPLOAD", defaultMaxUpload)
	if err != nil {
		return Config{}, err
	}

	app := APP{
		Name:           getEnv("SERVICE_NAME", "filevault"),
		Host:           getEnv("SERVICE_HOST", ""),
		Port:           getEnv("SERVICE_PORT", "8080"),
		Env:            getEnv("SERVICE_ENV", ""),
		JWTSecret:      getEnv("SERVICE_JWT_SECRET", ""),
		DefaultQuota:   quota,
		MaxUploadBytes: maxUpload,
		ShutdownPeriod: getEnvDuration("SERVICE_SHUTDOWN_PERIOD", defaultShutdownPeriod),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	blob := Blob{
		Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
		SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:          getEnv("MINIO_BUCKET", "filevault"),
		UseSSL:          getEnvBool("MINIO_USE_SSL", false),
	}
	redis := Redis{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		LockTTL:  getEnvDuration("REDIS_LOCK_TTL", defaultRedisLockTTL),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "filevault.audit"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "filevault.audit.log"),
	}
	tracing := Tracing{
		Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
	lifecycle := Lifecycle{
		Retention:     time.Duration(getEnvInt("RETENTION_DAYS", defaultRetentionDays)) * 24 * time.Hour,
		PurgeAt:       getEnv("PURGE_AT", defaultPurgeAt),
		BackupAt:      getEnv("BACKUP_AT", defaultBackupAt),
		BackupEnabled: getEnvBool("BACKUP_ENABLED", true),
	}
	if v := getEnvDuration("RETENTION_WINDOW", 0); v > 0 {
		lifecycle.Retention = v
	}

	return Config{
		App:       app,
		DB:        db,
		Blob:      blob,
		Redis:     redis,
		MQ:        mq,
		Tracing:   tracing,
		Lifecycle: lifecycle,
	}, nil
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		net.JoinHostPort(c.DB.Host, c.DB.Port),
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		net.JoinHostPort(c.MQ.Host, c.MQ.AmqpPort),
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// RedisAddr returns an empty string when redis is not configured; sweeps then run unlocked.
func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}
