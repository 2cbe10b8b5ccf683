package config

import (
	"os"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
)

const (
	EnvSite   = "DD_SITE"
	EnvAPIKey = "DD_API_KEY"
	EnvAppKey = "DD_APP_KEY"

	EnvLogLevel       = "DD_MCP_LOG_LEVEL"
	EnvDeploymentMode = "DD_MCP_DEPLOYMENT_MODE"
	EnvPort           = "DD_MCP_PORT"
	EnvAnalyticsKey   = "DD_MCP_ANALYTICS_KEY"
)

const (
	ModeLocal = "local"
	ModeCloud = "cloud"
)

type Config struct {
	Site   string
	APIKey string
	AppKey string

	LogLevel       string
	DeploymentMode string
	Port           string
	AnalyticsKey   string
}

// LoadConfig reads the environment. All required variables are checked up
// front so one error lists every missing name before any network call.
func LoadConfig() (*Config, error) {
	var missing []string
	for _, name := range []string{EnvSite, EnvAPIKey, EnvAppKey} {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &dderr.ConfigError{Missing: missing}
	}

	cfg := &Config{
		Site:           os.Getenv(EnvSite),
		APIKey:         os.Getenv(EnvAPIKey),
		AppKey:         os.Getenv(EnvAppKey),
		LogLevel:       os.Getenv(EnvLogLevel),
		DeploymentMode: os.Getenv(EnvDeploymentMode),
		Port:           os.Getenv(EnvPort),
		AnalyticsKey:   os.Getenv(EnvAnalyticsKey),
	}
	if cfg.DeploymentMode == "" {
		cfg.DeploymentMode = ModeLocal
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

// BaseURL is the API origin for the configured site.
func (c *Config) BaseURL() string {
	return "https://api." + c.Site
}
