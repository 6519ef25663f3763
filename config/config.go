// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ejjays/assets-management/models"
)

type Config struct {
	Port        string
	Environment string
	StaticDir   string

	StoreDriver     string // mongo or memory
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	StoreTimeout    time.Duration

	LogLevel  string
	LogFormat string

	Taxonomy         models.Taxonomy
	StrictValuePatch bool

	GeminiAPIKey  string
	GeminiModel   string
	ChatRateLimit string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration

	PublicBaseURL string

	SnapshotBucket    string
	SnapshotRegion    string
	SnapshotEndpoint  string
	SnapshotPathStyle bool
	SnapshotPrefix    string

	SeedDemoAssets int
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		Environment: getenv("ENVIRONMENT", "development"),
		StaticDir:   os.Getenv("STATIC_DIR"),

		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", "mongo")),
		MongoURI:        firstNonEmpty(os.Getenv("MONGODB_URI"), os.Getenv("MONGO_URI"), "mongodb://localhost:27017"),
		MongoDatabase:   getenv("MONGO_DATABASE", "AssetsManagement"),
		MongoCollection: getenv("MONGO_COLLECTION", "assets"),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		StrictValuePatch: getBool("STRICT_VALUE_PATCH", false),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		ChatRateLimit: getenv("CHAT_RATE_LIMIT", "20-M"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		SnapshotBucket:    os.Getenv("SNAPSHOT_S3_BUCKET"),
		SnapshotRegion:    getenv("SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotEndpoint:  os.Getenv("SNAPSHOT_S3_ENDPOINT"),
		SnapshotPathStyle: getBool("SNAPSHOT_S3_PATH_STYLE", false),
		SnapshotPrefix:    getenv("SNAPSHOT_S3_PREFIX", "snapshots/"),

		SeedDemoAssets: getInt("SEED_DEMO_ASSETS", 0),
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if cfg.StoreDriver != "mongo" && cfg.StoreDriver != "memory" {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want mongo or memory)", cfg.StoreDriver)
	}

	tax, err := LoadTaxonomy(os.Getenv("TAXONOMY_FILE"))
	if err != nil {
		return nil, err
	}
	if v := splitList(os.Getenv("ASSET_CATEGORIES")); len(v) > 0 {
		tax.Categories = v
	}
	if v := splitList(os.Getenv("ASSET_STATUSES")); len(v) > 0 {
		tax.Statuses = v
	}
	cfg.Taxonomy = tax

	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// LoadTaxonomy reads a YAML file with categories/statuses lists. An empty path
// yields the default taxonomy; lists missing from the file keep their defaults.
func LoadTaxonomy(path string) (models.Taxonomy, error) {
	tax := models.DefaultTaxonomy()
	if path == "" {
		return tax, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tax, fmt.Errorf("read taxonomy file: %w", err)
	}
	var fromFile models.Taxonomy
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return tax, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	if len(fromFile.Categories) > 0 {
		tax.Categories = fromFile.Categories
	}
	if len(fromFile.Statuses) > 0 {
		tax.Statuses = fromFile.Statuses
	}
	return tax, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid %s: %s, using %v", key, s, def)
		return def
	}
	return b
}

func getInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid %s: %s, using %d", key, s, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s: %s, using %s", key, s, def)
		return def
	}
	return d
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
