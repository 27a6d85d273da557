package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration. The signing secret and cookie
// policy live here and are handed to the token issuer and handlers at
// construction — nothing reads the environment after startup.
type Config struct {
	Port      string `env:"MATHOM_PORT,default=8080"`
	DBPath    string `env:"MATHOM_DB_PATH,default=mathom.db"`
	LogLevel  string `env:"MATHOM_LOG_LEVEL,default=info"`
	LogFormat string `env:"MATHOM_LOG_FORMAT,default=text"`

	JWTSecret       string        `env:"MATHOM_JWT_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"MATHOM_ACCESS_TOKEN_TTL,default=1h"`
	RefreshTokenTTL time.Duration `env:"MATHOM_REFRESH_TOKEN_TTL,default=168h"`

	// CookieSecure should be true behind TLS (production deployments).
	CookieSecure bool `env:"MATHOM_COOKIE_SECURE,default=false"`

	BackupS3Endpoint    string `env:"MATHOM_BACKUP_S3_ENDPOINT"`
	BackupS3Bucket      string `env:"MATHOM_BACKUP_S3_BUCKET"`
	BackupS3Region      string `env:"MATHOM_BACKUP_S3_REGION,default=auto"`
	BackupS3AccessKey   string `env:"MATHOM_BACKUP_S3_ACCESS_KEY"`
	BackupS3SecretKey   string `env:"MATHOM_BACKUP_S3_SECRET_KEY"`
	BackupPassphrase    string `env:"MATHOM_BACKUP_PASSPHRASE"`
	BackupIntervalHours int    `env:"MATHOM_BACKUP_INTERVAL_HOURS,default=24"`
	BackupRetentionDays int    `env:"MATHOM_BACKUP_RETENTION_DAYS,default=30"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
