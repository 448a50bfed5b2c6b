package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver      string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	SearchBackend string
	ESURL         string
	ESUser        string
	ESPassword    string
	ESIndex       string

	CloudinaryURL string

	RedisAddr         string
	RedisPassword     string
	SigninMaxAttempts int
	SigninWindow      time.Duration

	CORSOrigins []string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	SearchDB            = "db"
	SearchElasticsearch = "elasticsearch"
)

// Load reads path (if present) into the environment and builds a Config.
func Load(path string) Config {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("notice: %s not loaded: %v, using process environment", path, err)
		}
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DBDriver:      strings.ToLower(EnvDefault("DB_DRIVER", DriverPostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: EnvDefault("MONGO_DB", "storefront"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  time.Duration(EnvIntDefault("JWT_TTL_HOURS", 720)) * time.Hour,

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		SearchBackend: strings.ToLower(EnvDefault("SEARCH_BACKEND", SearchDB)),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		ESIndex:       EnvDefault("ES_INDEX", "products"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		SigninMaxAttempts: EnvIntDefault("SIGNIN_MAX_ATTEMPTS", 5),
		SigninWindow:      time.Duration(EnvIntDefault("SIGNIN_WINDOW_MINUTES", 15)) * time.Minute,

		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
