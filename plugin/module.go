package plugin

import (
	goplugin "github.com/hashicorp/go-plugin"
)

const (
	// PluginName is the map key hosts use to dispense this plugin.
	PluginName = "ftpgate-plugin-authweb"
	// PluginVersion is the release version reported to hosts.
	PluginVersion = "1.0.0"
	// UserAgent identifies the plugin on outgoing verification requests.
	// It is always sent; some login endpoints turn away clients with no
	// User-Agent at all.
	UserAgent = PluginName + "/" + PluginVersion
)

var (
	// Handshake pairs the plugin binary with compatible FTPGate hosts. The
	// cookie is a rendezvous check, not a security measure; hosts may
	// override it through MAGIC_COOKIE_KEY and MAGIC_COOKIE_VALUE.
	Handshake = goplugin.HandshakeConfig{
		ProtocolVersion:  1,
		MagicCookieKey:   "FTPGATE_PLUGIN",
		MagicCookieValue: "authweb",
	}

	// PluginMap is the plugin map hosts pass to go-plugin when dispensing
	// this plugin.
	PluginMap = map[string]goplugin.Plugin{
		PluginName: &VerifierPlugin{},
	}

	// Info is the compile-time plugin description returned to FTPGate.
	Info = PluginInfo{
		Name:        PluginName,
		Version:     PluginVersion,
		Description: "FTPGate plugin verifying login credentials against a remote web application",
		Authors: []string{
			"FTPGate authors <maintainers@ftpgate.io>",
		},
		License:    "Apache 2.0",
		ProjectURL: "https://github.com/ftpgate-io/ftpgate-plugin-authweb",
		Tags:       []string{"plugin", "auth", "http", "sso"},
	}
)

// PluginInfo describes the plugin to hosts.
type PluginInfo struct {
	Name        string
	Version     string
	Description string
	Authors     []string
	License     string
	ProjectURL  string
	Tags        []string
}
