package main

import (
	"flag"
	"os"

	"github.com/ftpgate-io/ftpgate-plugin-authweb/plugin"
	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

func main() {
	// Parse command line flags, passed by FTPGate via the plugin config
	logLevel := flag.String("log-level", "info", "Log level")
	configPath := flag.String("config",
		plugin.GetEnv("AUTHWEB_CONFIG_FILE", "authweb.yaml"),
		"Path to the verification config file")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       plugin.PluginName,
		Level:      hclog.LevelFromString(*logLevel),
		Output:     os.Stderr,
		JSONFormat: true,
		Color:      hclog.ColorOff,
	})

	cfg, err := plugin.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load verification config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// An incomplete config is served anyway: every attempt is declined so
	// the host can fall through to its next authentication mechanism.
	if err := cfg.Validate(); err != nil {
		logger.Error("Verification config incomplete, all attempts will be declined", "error", err)
	}

	if cfg.MetricsEnabled {
		go plugin.ExposeMetrics(cfg, logger)
	}

	authorizer, err := plugin.NewAuthorizer(cfg.CasbinModelPath, cfg.CasbinPolicyPath, logger)
	if err != nil {
		logger.Error("Failed to initialize authorizer", "error", err)
		os.Exit(1)
	}

	verifier := plugin.NewVerifier(cfg, authorizer, logger)

	handshake := plugin.Handshake
	if key := plugin.GetEnv("MAGIC_COOKIE_KEY", ""); key != "" {
		handshake.MagicCookieKey = key
	}
	if value := plugin.GetEnv("MAGIC_COOKIE_VALUE", ""); value != "" {
		handshake.MagicCookieValue = value
	}

	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginName: &plugin.VerifierPlugin{Impl: verifier},
		},
		Logger: logger,
	})
}
