package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"shop-crud/internal/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName  string `envconfig:"APP_NAME" default:"shop-crud"`
	AppPort  string `envconfig:"APP_PORT" required:"true"`
	GrpcPort string `envconfig:"GRPC_PORT"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MongoURI       string `envconfig:"MONGO_URI" required:"true"`
	MongoDBName    string `envconfig:"MONGO_DB_NAME" default:"shop"`
	MongoTimeoutMs int64  `envconfig:"MONGO_TIMEOUT_MS" default:"5000"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"shop-crud.changes"`

	RemoteLogHttpURI       string `envconfig:"REMOTE_LOG_HTTP_URI"`
	RemoteTraceRpcURI      string `envconfig:"REMOTE_TRACE_RPC_URI"`
	RemoteProfilingHttpURI string `envconfig:"REMOTE_PROFILING_HTTP_URI"`
}

// SafeConfig is the loggable view of Config. MongoURI is left out since it may carry credentials.
type SafeConfig struct {
	AppName                string   `json:"app_name"`
	AppPort                string   `json:"app_port"`
	GrpcPort               string   `json:"grpc_port"`
	Env                    string   `json:"env"`
	LogLevel               string   `json:"log_level"`
	MongoDBName            string   `json:"mongo_db_name"`
	MongoTimeoutMs         int64    `json:"mongo_timeout_ms"`
	KafkaBrokers           []string `json:"kafka_brokers"`
	KafkaTopic             string   `json:"kafka_topic"`
	RemoteLogHttpURI       string   `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string   `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string   `json:"remote_profiling_http_uri"`
}

// legacyEnv maps the variable names of the first deployment to the current ones.
var legacyEnv = map[string]string{
	"MONGO": "MONGO_URI",
	"PORT":  "APP_PORT",
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppName:                c.AppName,
		AppPort:                c.AppPort,
		GrpcPort:               c.GrpcPort,
		Env:                    c.Env,
		LogLevel:               c.LogLevel,
		MongoDBName:            c.MongoDBName,
		MongoTimeoutMs:         c.MongoTimeoutMs,
		KafkaBrokers:           c.KafkaBrokers,
		KafkaTopic:             c.KafkaTopic,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) MongoTimeout() time.Duration {
	return time.Duration(c.MongoTimeoutMs) * time.Millisecond
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3001"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

// jsonKey uses the `json` tag name when present, snake_case of the field name otherwise.
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Instance().Warn("Error loading .env file (but continuing)", slog.String("error", err.Error()))
	}

	for legacy, current := range legacyEnv {
		if os.Getenv(current) != "" {
			continue
		}
		if v := os.Getenv(legacy); v != "" {
			_ = os.Setenv(current, v)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	var missing []string
	if cfg.AppPort == "" {
		missing = append(missing, "APP_PORT")
	}
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if cfg.MongoTimeoutMs <= 0 {
		return nil, fmt.Errorf("MONGO_TIMEOUT_MS must be positive, got %d", cfg.MongoTimeoutMs)
	}
	return &cfg, nil
}

var (
	configInstance *Config
	configOnce     sync.Once
)

// Instance loads the configuration once and exits the process when it is invalid.
func Instance() *Config {
	configOnce.Do(func() {
		log := logger.Instance()

		cfg, err := Load()
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)

		configInstance = cfg
	})

	return configInstance
}
