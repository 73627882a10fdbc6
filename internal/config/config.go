package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ServiceName    = "stock-service"
	ServiceVersion = "0.1.0"
)

const (
	RequestTopic  = "stock_request"
	ResponseTopic = "stock_response"
	GroupID       = "my-group2"

	// TransactionalID is the instance-stable identity of the response
	// producer. It must survive restarts so the broker can fence a
	// zombie producer session after a crash.
	TransactionalID = "stock-service-transactional-id"

	TxnTimeout = 60 * time.Second
)

const (
	LogsPath      = "/otlp/v1/logs"
	TracesPath    = "/otlp/v1/traces"
	ExportTimeout = 30 * time.Second
	MaxQueueSize  = 2048
)

type Config struct {
	KafkaBroker    string
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	RedisDB        int
	HTTPAddr       string
	OtelEndpoint   string
	OtelAuthHeader string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
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

func LoadConfig() (*Config, error) {
	config := &Config{
		KafkaBroker:    getenv("KAFKA_SERVER", "kafka:9092"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      atoienv("REDIS_PORT", 6379),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        atoienv("REDIS_DB", 0),
		HTTPAddr:       getenv("HTTP_ADDR", ":8000"),
		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),
	}

	if config.RedisHost == "" {
		return nil, fmt.Errorf("REDIS_HOST environment variable is required")
	}

	return config, nil
}

// RedisAddr joins host and port for the go-redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
