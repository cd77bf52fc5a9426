package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

type Config struct {
	// ───── MongoDB ─────
	MongoUsername   string
	MongoPassword   string
	MongoHost       string
	MongoPort       string
	MongoDatabase   string
	MongoAuthSource string
	DBRetryDelay    time.Duration

	// ───── Runtime ─────
	HTTPPort    string
	ObsHTTPAddr string
	GRPCAddr    string
	ServiceName string
	LogLevel    string

	// ───── Events ─────
	KafkaBrokers []string
	RedisAddr    string
	EventBuffer  int

	// ───── Rate Limiting ─────
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// ───── Observability ─────
	TracingEnabled bool
	JaegerURL      string

	// ───── Demo profile ─────
	Demo model.DemoProfile
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	return &Config{
		MongoUsername:   getEnv("MONGO_DB_USERNAME", ""),
		MongoPassword:   getEnv("MONGO_DB_PWD", ""),
		MongoHost:       mustEnv("MONGO_DB_HOST"),
		MongoPort:       getEnv("MONGO_DB_PORT", "27017"),
		MongoDatabase:   mustEnv("MONGO_DB_NAME"),
		MongoAuthSource: getEnv("MONGO_AUTH_SOURCE", "admin"),
		DBRetryDelay:    getEnvDuration("DB_RETRY_DELAY", 5*time.Second),

		HTTPPort:    strings.TrimPrefix(getEnv("PORT", "3000"), ":"),
		ObsHTTPAddr: fixPort(getEnv("OBS_HTTP_ADDR", ":9090")),
		GRPCAddr:    fixPort(getEnv("GRPC_ADDR", "")),
		ServiceName: getEnv("SERVICE_NAME", "profile-service"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		EventBuffer:  getEnvInt("EVENT_BUFFER", 256),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		JaegerURL:      getEnv("JAEGER_URL", "http://localhost:14268/api/traces"),

		Demo: model.DemoProfile{
			Name:  getEnv("DEMO_PROFILE_NAME", model.DefaultDemoName),
			Email: getEnv("DEMO_PROFILE_EMAIL", model.DefaultDemoEmail),
			Bio:   getEnv("DEMO_PROFILE_BIO", model.DefaultDemoBio),
		},
	}
}

// TailConfig configures the event follower. It needs no database settings.
type TailConfig struct {
	KafkaBrokers []string
	KafkaGroupID string
	RedisAddr    string
	LogLevel     string
}

func LoadTail() *TailConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	return &TailConfig{
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "profile-eventtail"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// MongoURI assembles the connection string. Credentials are omitted when no
// username is configured.
func (c *Config) MongoURI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   c.MongoHost + ":" + c.MongoPort,
		Path:   "/" + c.MongoDatabase,
	}
	if c.MongoUsername != "" {
		u.User = url.UserPassword(c.MongoUsername, c.MongoPassword)
	}
	if c.MongoAuthSource != "" {
		u.RawQuery = url.Values{"authSource": {c.MongoAuthSource}}.Encode()
	}
	return u.String()
}

// RedactedMongoURI is MongoURI with the password masked, for logging.
func (c *Config) RedactedMongoURI() string {
	u, err := url.Parse(c.MongoURI())
	if err != nil {
		return ""
	}
	return u.Redacted()
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}

func getEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}

func getEnvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int env %s: %v", k, err)
	}
	return i
}

func getEnvBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return strings.ToLower(v) == "true"
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}

	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s: %v", k, err)
	}
	return dur
}

func getEnvSlice(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}

	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
