package utils

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type VisionConfig struct {
	PredictionKey string
	Endpoint      string
	ProjectID     string
	PublishedName string
	Timeout       time.Duration
}

type Config struct {
	Port          string
	CatalogPath   string
	StaticDir     string
	SyncAddr      string
	LogTableName  string
	MaxUploadSize int64

	Vision              VisionConfig
	ConfidenceThreshold float64
	LogWriteTimeout     time.Duration

	RankingMinConfidence float64
	RankingTimezone      string
	RankingInterval      time.Duration
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// LoadConfig reads .env (when present) and then the process environment.
// Missing Custom Vision settings are a startup error.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadToolConfig is LoadConfig for offline tools that read the prediction
// log but never call the classifier.
func LoadToolConfig() (*Config, error) {
	_ = godotenv.Load()
	cfg := loadFromEnv()
	if err := cfg.validateLocal(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		CatalogPath:   getEnv("ANIMAL_DATA_PATH", "animal-data.json"),
		StaticDir:     getEnv("ZOO_STATIC_DIR", "public"),
		SyncAddr:      os.Getenv("ZOO_SYNC_ADDR"),
		LogTableName:  getEnv("LOG_TABLE_NAME", "prediction_logs"),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		Vision: VisionConfig{
			PredictionKey: os.Getenv("CUSTOM_VISION_PREDICTION_KEY"),
			Endpoint:      os.Getenv("CUSTOM_VISION_ENDPOINT"),
			ProjectID:     os.Getenv("CUSTOM_VISION_PROJECT_ID"),
			PublishedName: os.Getenv("CUSTOM_VISION_PUBLISHED_NAME"),
			Timeout:       getEnvAsDuration("CLASSIFY_TIMEOUT", 30*time.Second),
		},
		ConfidenceThreshold:  getEnvAsFloat("CUSTOM_VISION_CONFIDENCE_THRESHOLD", 0.5),
		LogWriteTimeout:      getEnvAsDuration("LOG_WRITE_TIMEOUT", 5*time.Second),
		RankingMinConfidence: getEnvAsFloat("RANKING_MIN_CONFIDENCE", 0.8),
		RankingTimezone:      getEnv("RANKING_TIMEZONE", "Asia/Seoul"),
		RankingInterval:      getEnvAsDuration("RANKING_INTERVAL", 60*time.Second),
	}
	if _, ok := os.LookupEnv("ZOO_SYNC_ADDR"); !ok {
		cfg.SyncAddr = ":7070"
	}
	return cfg
}

func (c *Config) Validate() error {
	var missing []string
	if c.Vision.PredictionKey == "" {
		missing = append(missing, "CUSTOM_VISION_PREDICTION_KEY")
	}
	if c.Vision.Endpoint == "" {
		missing = append(missing, "CUSTOM_VISION_ENDPOINT")
	}
	if c.Vision.ProjectID == "" {
		missing = append(missing, "CUSTOM_VISION_PROJECT_ID")
	}
	if c.Vision.PublishedName == "" {
		missing = append(missing, "CUSTOM_VISION_PUBLISHED_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return c.validateLocal()
}

func (c *Config) validateLocal() error {
	if !tableNameRe.MatchString(c.LogTableName) {
		return fmt.Errorf("LOG_TABLE_NAME %q is not a valid table name", c.LogTableName)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.New("CUSTOM_VISION_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if c.RankingMinConfidence < 0 || c.RankingMinConfidence > 1 {
		return errors.New("RANKING_MIN_CONFIDENCE must be within [0,1]")
	}
	if c.RankingInterval <= 0 {
		return errors.New("RANKING_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.RankingTimezone); err != nil {
		return fmt.Errorf("RANKING_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the civil timezone the ranking day is computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.RankingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
