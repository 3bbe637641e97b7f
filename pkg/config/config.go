package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Import       ImportConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LEDGERLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"LEDGERLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEDGERLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEDGERLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEDGERLINE_DB_DSN"`
	Driver string `envconfig:"LEDGERLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEDGERLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"LEDGERLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEDGERLINE_DB_USER"`
	LegacyPassword string `envconfig:"LEDGERLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEDGERLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEDGERLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEDGERLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEDGERLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEDGERLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEDGERLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEDGERLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEDGERLINE_REDIS_ADDR"`
	Password     string        `envconfig:"LEDGERLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEDGERLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEDGERLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEDGERLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEDGERLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEDGERLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEDGERLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ImportConfig tunes the import pipeline. ChunkSize bounds the rows per
// insert; SimilarityThreshold gates alias suggestions; RulesPath points at
// the optional YAML type-mapping/ignored-labels file.
type ImportConfig struct {
	ChunkSize           int           `envconfig:"LEDGERLINE_IMPORT_CHUNK_SIZE" default:"200"`
	SimilarityThreshold float64       `envconfig:"LEDGERLINE_IMPORT_SIMILARITY_THRESHOLD" default:"0.72"`
	RulesPath           string        `envconfig:"LEDGERLINE_IMPORT_RULES_PATH"`
	LockTTL             time.Duration `envconfig:"LEDGERLINE_IMPORT_LOCK_TTL" default:"10m"`
	MaxUploadMB         int           `envconfig:"LEDGERLINE_IMPORT_MAX_UPLOAD_MB" default:"25"`
}

type CronConfig struct {
	LockTTL             time.Duration `envconfig:"LEDGERLINE_CRON_LOCK_TTL" default:"10m"`
	SnapshotInterval    time.Duration `envconfig:"LEDGERLINE_CRON_SNAPSHOT_INTERVAL" default:"24h"`
	RetentionInterval   time.Duration `envconfig:"LEDGERLINE_CRON_RETENTION_INTERVAL" default:"24h"`
	BatchRetentionDays  int           `envconfig:"LEDGERLINE_CRON_BATCH_RETENTION_DAYS" default:"90"`
	OutboxRetentionDays int           `envconfig:"LEDGERLINE_CRON_OUTBOX_RETENTION_DAYS" default:"7"`
}

type FeatureFlagsConfig struct {
	UseSQLite       bool `envconfig:"LEDGERLINE_USE_SQLITE" default:"false"`
	AutoMigrate     bool `envconfig:"LEDGERLINE_AUTO_MIGRATE" default:"false"`
	EventingEnabled bool `envconfig:"LEDGERLINE_EVENTING_ENABLED" default:"true"`
	ArchiveUploads  bool `envconfig:"LEDGERLINE_ARCHIVE_UPLOADS" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"LEDGERLINE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LEDGERLINE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LEDGERLINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LEDGERLINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

// GCSConfig configures raw-file archival. An empty bucket name disables it.
type GCSConfig struct {
	BucketName string `envconfig:"LEDGERLINE_GCS_BUCKET_NAME"`
}

type PubSubConfig struct {
	AnalyticsTopic        string `envconfig:"LEDGERLINE_PUBSUB_ANALYTICS_TOPIC" required:"true"`
	AnalyticsSubscription string `envconfig:"LEDGERLINE_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"LEDGERLINE_BIGQUERY_DATASET" default:"ledgerline"`
	ImportEventsTable   string `envconfig:"LEDGERLINE_BIGQUERY_IMPORT_EVENTS_TABLE" default:"import_events"`
	SnapshotEventsTable string `envconfig:"LEDGERLINE_BIGQUERY_SNAPSHOT_EVENTS_TABLE" default:"snapshot_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LEDGERLINE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LEDGERLINE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LEDGERLINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// MaxUploadBytes returns the upload cap in bytes.
func (i ImportConfig) MaxUploadBytes() int64 {
	if i.MaxUploadMB <= 0 {
		return 0
	}
	return int64(i.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
