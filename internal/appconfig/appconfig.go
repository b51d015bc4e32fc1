// Package appconfig loads and interprets the pagemcp configuration.
//
// Values are merged from defaults, an optional config file (json, yaml or toml)
// and the environment. The Graph credentials may also be supplied through
// PAGE_ACCESS_TOKEN and PAGE_ID.
package appconfig

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mwiater/pagemcp/internal/graph"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PAGEMCP_SERVER_PORT.
	EnvPrefix = "PAGEMCP"
	// DefaultConfigName is searched for in the working directory and ./config when no file is given.
	DefaultConfigName = "pagemcp"

	defaultService = "facebook-mcp-wrapper"
	defaultVersion = "1.0.0"
	defaultHost    = "0.0.0.0"
	defaultPort    = 5000
	// defaultTimeoutSeconds bounds each outbound Graph request.
	defaultTimeoutSeconds = 30
)

// Config is the merged application configuration.
type Config struct {
	Graph           GraphConfig  `mapstructure:"graph" json:"graph" yaml:"graph"`
	Server          ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
	Service         string       `mapstructure:"service" json:"service" yaml:"service"`
	Version         string       `mapstructure:"version" json:"version" yaml:"version"`
	LogFile         string       `mapstructure:"logFile" json:"logFile,omitempty" yaml:"logFile,omitempty"`
	Debug           bool         `mapstructure:"debug" json:"debug" yaml:"debug"`
	StrictArguments bool         `mapstructure:"strictArguments" json:"strictArguments" yaml:"strictArguments"`
	ConfigPath      string       `mapstructure:"-" json:"-" yaml:"-"`
}

// GraphConfig holds the Page credentials and the Graph endpoint.
type GraphConfig struct {
	BaseURL        string `mapstructure:"baseURL" json:"baseURL" yaml:"baseURL" validate:"omitempty,url"`
	PageID         string `mapstructure:"pageID" json:"pageID" yaml:"pageID" validate:"required"`
	AccessToken    string `mapstructure:"accessToken" json:"accessToken" yaml:"accessToken" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds" json:"timeoutSeconds" yaml:"timeoutSeconds" validate:"gte=0"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host"`
	Port int    `mapstructure:"port" json:"port" yaml:"port" validate:"gte=0,lte=65535"`
}

// SetDefaults registers every key with its default so environment overrides
// are visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("graph.baseURL", graph.DefaultBaseURL)
	v.SetDefault("graph.pageID", "")
	v.SetDefault("graph.accessToken", "")
	v.SetDefault("graph.timeoutSeconds", defaultTimeoutSeconds)
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("service", defaultService)
	v.SetDefault("version", defaultVersion)
	v.SetDefault("logFile", "")
	v.SetDefault("debug", false)
	v.SetDefault("strictArguments", false)
}

// BindEnv enables PAGEMCP_* overrides and the unprefixed Graph variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("graph.accessToken", "PAGE_ACCESS_TOKEN")
	_ = v.BindEnv("graph.pageID", "PAGE_ID")
	_ = v.BindEnv("graph.baseURL", "GRAPH_API_BASE_URL")
}

// Load reads path into v and returns the merged configuration. An empty path
// searches for DefaultConfigName and tolerates its absence; an explicit path
// must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	BindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrapf(err, "failed to load config %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	return cfg, nil
}

// Validate checks the values needed to reach the Graph API.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Timeout returns the per-request Graph timeout.
func (c Config) Timeout() time.Duration {
	if c.Graph.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Graph.TimeoutSeconds) * time.Second
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	host := c.Server.Host
	if host == "" {
		host = defaultHost
	}
	port := c.Server.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ServiceName returns the name reported by health checks and the MCP handshake.
func (c Config) ServiceName() string {
	if s := strings.TrimSpace(c.Service); s != "" {
		return s
	}
	return defaultService
}

// ServiceVersion returns the reported version.
func (c Config) ServiceVersion() string {
	if s := strings.TrimSpace(c.Version); s != "" {
		return s
	}
	return defaultVersion
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	c.Graph.AccessToken = MaskSecret(c.Graph.AccessToken)
	return c
}

// MaskSecret keeps the last four characters of long secrets.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
