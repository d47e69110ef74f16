package config

import (
	"fmt"
	"net/url"
	"time"
)

// Server modes.
const (
	ModeLocal  = "local"
	ModeLambda = "lambda"
)

// ServerConfig configures the dispatch API.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Mode is "local" (plain HTTP listener) or "lambda" (API Gateway proxy).
	// Each Lambda instance holds its own store, so lambda mode requires the
	// function's reserved concurrency to be 1.
	Mode string `json:"mode"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
}

func (c ServerConfig) Validate() error {
	if c.Mode != ModeLocal && c.Mode != ModeLambda {
		return fmt.Errorf("unknown mode %s", c.Mode)
	}
	return nil
}

// ClientConfig configures a dashboard session.
type ClientConfig struct {
	// BaseURL is the address of the dispatch API, without the /api/dispatch path.
	BaseURL      string        `json:"base_url"`
	PollInterval time.Duration `json:"poll_interval"`
	// RequestTimeout bounds each round-trip so polls never pile up.
	RequestTimeout time.Duration `json:"request_timeout"`
	// MetricsAddr serves the dashboard's poll metrics when prometheus is enabled.
	MetricsAddr string `json:"metrics_addr"`
}

func (c *ClientConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9091"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 4 * time.Second
		if c.RequestTimeout > c.PollInterval {
			c.RequestTimeout = c.PollInterval
		}
	}
}

func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.RequestTimeout > c.PollInterval {
		return fmt.Errorf("request_timeout %s exceeds poll_interval %s", c.RequestTimeout, c.PollInterval)
	}
	return nil
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// MetricsConfig selects metric sinks.
type MetricsConfig struct {
	PrometheusEnabled   bool   `json:"prometheus_enabled"`
	CloudWatchEnabled   bool   `json:"cloudwatch_enabled"`
	CloudWatchNamespace string `json:"cloudwatch_namespace"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.CloudWatchNamespace == "" {
		c.CloudWatchNamespace = "DispatchBoard"
	}
}

// NotifyConfig enables fan-out of new dispatches. An empty queue URL disables it.
// The queue must not be the one feeding cmd/worker; the relay skips messages
// carrying a dispatch_id attribute so a shared queue cannot loop.
type NotifyConfig struct {
	SQSQueueURL string `json:"sqs_queue_url"`
}

// AWSConfig carries SDK settings shared by the SQS and CloudWatch clients.
type AWSConfig struct {
	Region           string `json:"region"`
	EndpointOverride string `json:"endpoint_override"`
}

func (c *AWSConfig) SetDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c Config) NeedsAWS() bool {
	return c.Notify.SQSQueueURL != "" || c.Metrics.CloudWatchEnabled
}
