package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Pathao
	PathaoClientID     string `envconfig:"PATHAO_CLIENT_ID"`
	PathaoClientSecret string `envconfig:"PATHAO_CLIENT_SECRET"`
	PathaoUsername     string `envconfig:"PATHAO_USERNAME"`
	PathaoPassword     string `envconfig:"PATHAO_PASSWORD"`
	PathaoStoreID      int    `envconfig:"PATHAO_STORE_ID"`
	PathaoEnvironment  string `envconfig:"PATHAO_ENVIRONMENT" default:"production"`
	PathaoBaseURL      string `envconfig:"PATHAO_BASE_URL"`
	PathaoEnabled      bool   `envconfig:"PATHAO_ENABLED" default:"true"`
	PathaoUseMock      bool   `envconfig:"PATHAO_USE_MOCK" default:"false"`

	// Mock courier, useful for local development without credentials
	MockEnabled bool `envconfig:"MOCK_COURIER_ENABLED" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.observability.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"deshship-courier"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry resource attributes describing the
// courier setup. Service identity is added separately by the tracer init.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("pathao.enabled", c.PathaoEnabled),
		attribute.String("pathao.environment", c.PathaoEnvironment),
		attribute.Bool("mock.enabled", c.MockEnabled),
	}
}
