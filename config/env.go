package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = "4000"
	DefaultDBName          = "six-cities"
	DefaultDBPort          = "27017"
	DefaultUserPassword    = "123456"
	DefaultImportChunkSize = 10000

	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	Port                string
	MongoURI            string
	DBName              string
	RedisAddr           string
	RedisPassword       string
	JWTKey              string
	LogLevel            string
	LogColor            bool
	LogFormat           string
	DefaultUserPassword string
	ImportChunkSize     int
}

// ConfigurationError is returned for settings that are present but unusable.
type ConfigurationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load reads an optional .env file and then the process environment.
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", DefaultPort),
		DBName:              getEnv("DB", DefaultDBName),
		RedisAddr:           getEnv("REDIS_ADD", ""),
		RedisPassword:       getEnv("REDIS_PASS", ""),
		JWTKey:              getEnv("JWT_KEY", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", LogFormatText),
		DefaultUserPassword: getEnv("DEFAULT_USER_PASSWORD", DefaultUserPassword),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, &ConfigurationError{Key: "PORT", Value: cfg.Port, Err: err}
	}

	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return nil, &ConfigurationError{Key: "LOG_FORMAT", Value: cfg.LogFormat, Err: fmt.Errorf("want %q or %q", LogFormatText, LogFormatJSON)}
	}

	var err error
	if cfg.LogColor, err = getEnvBool("LOG_COLOR", true); err != nil {
		return nil, err
	}
	if cfg.ImportChunkSize, err = getEnvInt("IMPORT_CHUNK_SIZE", DefaultImportChunkSize); err != nil {
		return nil, err
	}
	if cfg.ImportChunkSize <= 0 {
		return nil, &ConfigurationError{Key: "IMPORT_CHUNK_SIZE", Value: strconv.Itoa(cfg.ImportChunkSize), Err: fmt.Errorf("must be positive")}
	}

	cfg.MongoURI = os.Getenv("MONGOURI")
	if cfg.MongoURI == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			return nil, &ConfigurationError{Key: "MONGOURI", Err: fmt.Errorf("neither MONGOURI nor DB_HOST is set")}
		}
		dbPort := getEnv("DB_PORT", DefaultDBPort)
		if _, err := strconv.Atoi(dbPort); err != nil {
			return nil, &ConfigurationError{Key: "DB_PORT", Value: dbPort, Err: err}
		}
		cfg.MongoURI = MongoURI(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, dbPort, cfg.DBName)
	}

	return cfg, nil
}

// MongoURI builds a connection string that authenticates against the admin database.
func MongoURI(user, password, host, port, dbName string) string {
	u := url.URL{
		Scheme:   "mongodb",
		Host:     host + ":" + port,
		Path:     "/" + dbName,
		RawQuery: "authSource=admin",
	}
	if user != "" {
		u.User = url.UserPassword(user, password)
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: err}
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ConfigurationError{Key: key, Value: raw, Err: err}
	}
	return v, nil
}
