package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	Port               string
	GinMode            string
	JWTSecret          string
	DatabaseURL        string
	DatabaseSecretARN  string
	DBHost             string
	DBPort             int
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	AWSRegion          string
	CORSAllowedOrigins []string
	ArchiveBucket      string
	ArchivePrefix      string
	EventsTopicARN     string
	AutoMigrate        bool
	WarehouseSeedFile  string
	AdminWriteRPS      float64
	AdminWriteBurst    int
}

// Load reads .env if present, then the environment
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logging.LogKV("info", "no .env file found, using environment variables", nil)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           os.Getenv("GIN_MODE"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DatabaseSecretARN: os.Getenv("DATABASE_SECRET_ARN"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBUser:            getEnv("DB_USER", "expotoworld_admin"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "expotoworld_db"),
		DBSSLMode:         getEnv("DB_SSLMODE", "prefer"),
		AWSRegion:         Region(),
		ArchiveBucket:     os.Getenv("MAPPING_ARCHIVE_BUCKET"),
		ArchivePrefix:     getEnv("MAPPING_ARCHIVE_PREFIX", "warehouse-mappings/"),
		EventsTopicARN:    os.Getenv("MAPPING_EVENTS_TOPIC_ARN"),
		AutoMigrate:       os.Getenv("DB_AUTO_MIGRATE") == "true",
		WarehouseSeedFile: os.Getenv("WAREHOUSE_SEED_FILE"),
	}

	portStr := getEnv("DB_PORT", "5432")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logging.LogKV("warn", "invalid DB_PORT, using default 5432", map[string]interface{}{"value": portStr})
		port = 5432
	}
	cfg.DBPort = port

	if v := os.Getenv("ADMIN_WRITE_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logging.LogKV("warn", "invalid ADMIN_WRITE_RPS, rate limit disabled", map[string]interface{}{"value": v})
		} else {
			cfg.AdminWriteRPS = rps
		}
	}
	if burst, err := strconv.Atoi(getEnv("ADMIN_WRITE_BURST", "5")); err == nil {
		cfg.AdminWriteBurst = burst
	} else {
		cfg.AdminWriteBurst = 5
	}

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	return cfg
}

// DSN returns the connection string built from the discrete DB_* settings
func (c Config) DSN() string {
	if c.DBPassword == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// ResolveDatabaseURL prefers DATABASE_URL, then the Secrets Manager secret, then DB_* settings.
func (c Config) ResolveDatabaseURL(ctx context.Context) (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.DatabaseSecretARN != "" {
		awsCfg, err := c.AWS(ctx)
		if err != nil {
			return "", err
		}
		return DatabaseURLFromSecret(ctx, secretsmanager.NewFromConfig(awsCfg), c.DatabaseSecretARN)
	}
	return c.DSN(), nil
}

// AWS loads the default AWS config for the configured region
func (c Config) AWS(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// SecretGetter is the part of the Secrets Manager client used here
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// DatabaseURLFromSecret reads a JSON secret of the form {"DATABASE_URL": "..."}
func DatabaseURLFromSecret(ctx context.Context, sm SecretGetter, secretArn string) (string, error) {
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &secretArn})
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretArn)
	}
	var payload struct {
		DatabaseURL string `json:"DATABASE_URL"`
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return "", fmt.Errorf("parse secret: %w", err)
	}
	if payload.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL missing in secret")
	}
	return payload.DatabaseURL, nil
}

// Region returns AWS_REGION, AWS_DEFAULT_REGION or eu-central-1
func Region() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return getEnv("AWS_DEFAULT_REGION", "eu-central-1")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
