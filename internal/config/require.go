package config

import (
	"fmt"
	"log"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate reports the first setting that makes the selected backends unusable.
func (c Config) Validate() error {
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", c.DBDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for DB_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.SearchBackend {
	case SearchDB:
	case SearchElasticsearch:
		if c.ESURL == "" {
			return fmt.Errorf("ES_URL is required for SEARCH_BACKEND=elasticsearch")
		}
	default:
		return fmt.Errorf("unknown SEARCH_BACKEND %q", c.SearchBackend)
	}
	if c.SigninMaxAttempts < 1 {
		return fmt.Errorf("SIGNIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}
