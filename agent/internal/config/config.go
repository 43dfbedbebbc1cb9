package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultScheme         = "http"
	DefaultBasePath       = "/RestService/rest.svc/1.0"
	DefaultRESTTimeout    = 10 * time.Second
	DefaultMaxConcurrency = 8
	DefaultDatabase       = "DataCoreRestDB"
	DefaultInfluxTimeout  = 10 * time.Second
	DefaultPollInterval   = 30 * time.Second
	DefaultHistory        = 20
	DefaultStreamPing     = 30 * time.Second
	DefaultTimeMode       = "auto"
	DefaultTimePrefix     = 6
	DefaultTimeSuffix     = 2
	DefaultMonitorSuffix  = 7
)

// Config is the top-level agent configuration.
type Config struct {
	REST           RESTConfig           `yaml:"rest"`
	InfluxDB       InfluxConfig         `yaml:"influxdb"`
	Resources      map[string]bool      `yaml:"resources"`
	CollectionTime CollectionTimeConfig `yaml:"collection_time"`
	Render         RenderConfig         `yaml:"render"`
	Poll           PollConfig           `yaml:"poll"`
	Logging        LoggingConfig        `yaml:"logging"`
	Status         StatusConfig         `yaml:"status"`
	Alerts         AlertsConfig         `yaml:"alerts"`
}

// RESTConfig describes the DataCore REST server.
type RESTConfig struct {
	// Scheme is http or https.
	Scheme string `yaml:"scheme"`

	// Server is the REST server address (host or host:port).
	Server string `yaml:"server"`

	// BasePath is the REST service root on Server.
	BasePath string `yaml:"base_path"`

	// DataCoreServer is sent in the ServerHost header: the DataCore server
	// the REST service should query.
	DataCoreServer string `yaml:"datacore_server"`

	Username string `yaml:"username"`

	// Password may be given literally; PasswordEnv takes precedence.
	Password    string `yaml:"password"`
	PasswordEnv string `yaml:"password_env"`

	// Timeout bounds every single REST call.
	Timeout time.Duration `yaml:"timeout"`

	// MaxConcurrency bounds the number of requests in flight.
	MaxConcurrency int `yaml:"max_concurrency"`

	TLS TLSConfig `yaml:"tls"`
}

// Secret returns the REST password, resolved from PasswordEnv when set.
func (r RESTConfig) Secret() string {
	if r.PasswordEnv != "" {
		if v, ok := os.LookupEnv(r.PasswordEnv); ok {
			return v
		}
	}
	return r.Password
}

// BaseURL returns the REST service root, without a trailing slash.
func (r RESTConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s/%s", r.Scheme, r.Server, strings.Trim(r.BasePath, "/"))
}

// TLSConfig holds TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// InfluxConfig describes the line-protocol sink.
type InfluxConfig struct {
	// URL is the sink root, e.g. http://influxdb:8086.
	URL      string        `yaml:"url"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CollectionTimeConfig selects how performance timestamps are decoded.
type CollectionTimeConfig struct {
	// Mode is auto (parse /Date(ms[+zzzz])/) or fixed (strip Prefix and
	// Suffix characters and read the remaining digits).
	Mode   string `yaml:"mode"`
	Prefix int    `yaml:"prefix"`
	Suffix int    `yaml:"suffix"`

	// MonitorSuffix replaces Suffix in fixed mode for the monitors'
	// TimeStamp, which carries a "+zzzz" offset.
	MonitorSuffix int `yaml:"monitor_suffix"`
}

// RenderConfig tunes the line-protocol renderer.
type RenderConfig struct {
	// IncludeSuspect renders objects whose payload came with a non-2xx
	// status. They are skipped by default.
	IncludeSuspect bool `yaml:"include_suspect"`
}

// PollConfig controls the polling loop.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig controls where logs go.
type LoggingConfig struct {
	// Enabled writes JSON logs to File. When false logs go to stderr.
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`

	// Level is debug | info | warn | error.
	Level string `yaml:"level"`

	// Format applies to stderr output: json | text. Text is colourised
	// when stderr is a terminal.
	Format string `yaml:"format"`
}

// StatusConfig configures the local status server.
type StatusConfig struct {
	// Listen is the address of the status server. Empty disables it.
	Listen string `yaml:"listen"`

	// History is the number of cycle reports kept in memory.
	History int `yaml:"history"`

	// Header and KeyEnv enable API key authentication when KeyEnv is set.
	Header string `yaml:"header"`
	KeyEnv string `yaml:"key_env"`

	// StreamPing is the WebSocket keepalive period.
	StreamPing time.Duration `yaml:"stream_ping"`
}

// Key returns the status API key resolved from the environment.
func (s StatusConfig) Key() string {
	if s.KeyEnv == "" {
		return ""
	}
	return os.Getenv(s.KeyEnv)
}

// AlertsConfig holds cycle alert rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based condition on a cycle report.
type AlertRule struct {
	// Name identifies the alert and deduplicates re-fires.
	Name string `yaml:"name"`

	// Condition is "field operator value", e.g. "failures > 0",
	// "state == failed" or "cert_days_left < 14".
	Condition string `yaml:"condition"`

	// Severity is critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration. Defaults to 15m.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv names the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// EnabledKinds returns the enabled resource kinds in a stable order.
func (c *Config) EnabledKinds() []types.Kind {
	out := make([]types.Kind, 0, len(c.Resources))
	for name, on := range c.Resources {
		if on {
			out = append(out, types.Kind(name))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Load reads the config file at path. Files ending in .ini are read as the
// legacy datacore_get_perf.ini format; everything else is YAML.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		if err := applyINI(cfg, data); err != nil {
			return nil, fmt.Errorf("config: parse ini: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		REST: RESTConfig{
			Scheme:         DefaultScheme,
			BasePath:       DefaultBasePath,
			Timeout:        DefaultRESTTimeout,
			MaxConcurrency: DefaultMaxConcurrency,
		},
		InfluxDB: InfluxConfig{
			Database: DefaultDatabase,
			Timeout:  DefaultInfluxTimeout,
		},
		Resources: map[string]bool{},
		CollectionTime: CollectionTimeConfig{
			Mode:   DefaultTimeMode,
			Prefix: DefaultTimePrefix,
			Suffix: DefaultTimeSuffix,

			MonitorSuffix: DefaultMonitorSuffix,
		},
		Poll: PollConfig{Interval: DefaultPollInterval},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Status: StatusConfig{
			History:    DefaultHistory,
			Header:     "X-API-Key",
			StreamPing: DefaultStreamPing,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.REST.Server == "" {
		return fmt.Errorf("rest.server is required")
	}
	switch cfg.REST.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("rest.scheme: unknown scheme %q", cfg.REST.Scheme)
	}
	if cfg.REST.Timeout <= 0 {
		return fmt.Errorf("rest.timeout must be positive")
	}
	if cfg.REST.MaxConcurrency <= 0 {
		return fmt.Errorf("rest.max_concurrency must be positive")
	}
	if cfg.InfluxDB.URL == "" {
		return fmt.Errorf("influxdb.url is required")
	}
	if _, err := url.Parse(cfg.InfluxDB.URL); err != nil {
		return fmt.Errorf("influxdb.url: %w", err)
	}
	if cfg.InfluxDB.Database == "" {
		return fmt.Errorf("influxdb.database is required")
	}
	if cfg.InfluxDB.Timeout <= 0 {
		return fmt.Errorf("influxdb.timeout must be positive")
	}
	if len(cfg.EnabledKinds()) == 0 {
		return fmt.Errorf("resources: at least one resource must be enabled")
	}
	switch cfg.CollectionTime.Mode {
	case "auto":
	case "fixed":
		if cfg.CollectionTime.Prefix < 0 || cfg.CollectionTime.Suffix < 0 || cfg.CollectionTime.MonitorSuffix < 0 {
			return fmt.Errorf("collection_time: prefix and suffix must not be negative")
		}
	default:
		return fmt.Errorf("collection_time.mode: unknown mode %q", cfg.CollectionTime.Mode)
	}
	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if cfg.Logging.Enabled && cfg.Logging.File == "" {
		return fmt.Errorf("logging.file is required when logging is enabled")
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}
	if cfg.Status.History <= 0 {
		return fmt.Errorf("status.history must be positive")
	}
	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" || r.Condition == "" {
			return fmt.Errorf("alerts.rules[%d]: name and condition are required", i)
		}
	}
	for i, w := range cfg.Alerts.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, w.Type)
		}
	}
	return nil
}
