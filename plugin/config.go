package plugin

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config holds the verification settings for one authentication context.
// A loaded Config is read-only and may be shared by concurrent attempts.
type Config struct {
	// URL is the endpoint credentials are POSTed to.
	URL string `yaml:"url"`
	// UsernameParam is the form field name carrying the username.
	UsernameParam string `yaml:"username_param"`
	// PasswordParam is the form field name carrying the password.
	PasswordParam string `yaml:"password_param"`
	// FailedString denies the attempt when it occurs anywhere in the
	// response body.
	FailedString string `yaml:"failed_string"`
	// RequiredHeaders must each occur verbatim among the received header
	// lines for the attempt to be allowed.
	RequiredHeaders []string `yaml:"required_headers"`
	// UserPattern limits which usernames this mechanism applies to. The
	// expression is matched case-insensitively and unanchored; empty means
	// all usernames.
	UserPattern string `yaml:"user_pattern"`
	// LocalUser names the local template account that allowed users are
	// mapped onto. Empty disables identity resolution.
	LocalUser string `yaml:"local_user"`
	// TimeoutSeconds bounds the whole verification call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// InsecureSkipVerify disables TLS certificate verification towards the
	// endpoint.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// CasbinModelPath is the path to the Casbin model file (optional).
	CasbinModelPath string `yaml:"casbin_model_path"`
	// CasbinPolicyPath is the path to the Casbin policy file (optional).
	CasbinPolicyPath string `yaml:"casbin_policy_path"`
	// MetricsEnabled controls Prometheus metrics exposure.
	MetricsEnabled bool `yaml:"metrics_enabled"`
	// MetricsUnixDomainSocket is the Unix socket path for metrics.
	MetricsUnixDomainSocket string `yaml:"metrics_unix_domain_socket"`
	// MetricsEndpoint is the HTTP endpoint for metrics.
	MetricsEndpoint string `yaml:"metrics_endpoint"`

	userRegexp *regexp.Regexp
}

const defaultTimeoutSeconds = 30

// DefaultConfig returns the default verification configuration.
func DefaultConfig() *Config {
	return &Config{
		TimeoutSeconds:          defaultTimeoutSeconds,
		MetricsEnabled:          true,
		MetricsUnixDomainSocket: "/tmp/ftpgate-plugin-authweb.sock",
		MetricsEndpoint:         "/metrics",
		CasbinModelPath:         GetEnv("CASBIN_MODEL_PATH", ""),
		CasbinPolicyPath:        GetEnv("CASBIN_POLICY_PATH", ""),
	}
}

// ParseConfig parses runtime config from the plugin's config map.
func ParseConfig(cfg map[string]interface{}) (*Config, error) {
	c := DefaultConfig()

	if v, ok := cfg["url"]; ok {
		c.URL = cast.ToString(v)
	}
	if v, ok := cfg["usernameParam"]; ok {
		c.UsernameParam = cast.ToString(v)
	}
	if v, ok := cfg["passwordParam"]; ok {
		c.PasswordParam = cast.ToString(v)
	}
	if v, ok := cfg["failedString"]; ok {
		c.FailedString = cast.ToString(v)
	}
	if v, ok := cfg["requiredHeaders"]; ok {
		c.RequiredHeaders = cast.ToStringSlice(v)
	}
	if v, ok := cfg["userPattern"]; ok {
		c.UserPattern = cast.ToString(v)
	}
	if v, ok := cfg["localUser"]; ok {
		c.LocalUser = cast.ToString(v)
	}
	if v, ok := cfg["timeoutSeconds"]; ok {
		c.TimeoutSeconds = cast.ToInt(v)
	}
	if v, ok := cfg["insecureSkipVerify"]; ok {
		c.InsecureSkipVerify = cast.ToBool(v)
	}
	if v, ok := cfg["casbinModelPath"]; ok {
		c.CasbinModelPath = cast.ToString(v)
	}
	if v, ok := cfg["casbinPolicyPath"]; ok {
		c.CasbinPolicyPath = cast.ToString(v)
	}
	if v, ok := cfg["metricsEnabled"]; ok {
		c.MetricsEnabled = cast.ToBool(v)
	}
	if v, ok := cfg["metricsUnixDomainSocket"]; ok {
		c.MetricsUnixDomainSocket = cast.ToString(v)
	}
	if v, ok := cfg["metricsEndpoint"]; ok {
		c.MetricsEndpoint = cast.ToString(v)
	}

	if err := c.compileUserPattern(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads a YAML config file, expanding ${VAR} references from the
// environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := c.compileUserPattern(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports whether the config is complete enough to verify
// credentials: the endpoint and both form field names must be set, and at
// least one acceptance rule must be configured. An incomplete config is
// not fatal; every attempt against it is declined.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is not set")
	}
	if c.UsernameParam == "" {
		return fmt.Errorf("username_param is not set")
	}
	if c.PasswordParam == "" {
		return fmt.Errorf("password_param is not set")
	}
	if c.FailedString == "" && len(c.RequiredHeaders) == 0 {
		return fmt.Errorf("neither failed_string nor required_headers is set")
	}
	return nil
}

func (c *Config) compileUserPattern() error {
	if c.UserPattern == "" {
		c.userRegexp = nil
		return nil
	}
	re, err := regexp.Compile("(?i)" + c.UserPattern)
	if err != nil {
		return fmt.Errorf("compiling user_pattern: %w", err)
	}
	c.userRegexp = re
	return nil
}

// ensureUserPattern compiles UserPattern when it is set but not yet
// compiled. LoadConfig and ParseConfig compile at parse time; a Config
// assembled from fields is compiled here, once, by NewVerifier.
func (c *Config) ensureUserPattern() error {
	if c.UserPattern == "" || c.userRegexp != nil {
		return nil
	}
	return c.compileUserPattern()
}

// GetEnv returns the value of the environment variable key, or fallback
// when it is unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} references with the variable's value.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}
