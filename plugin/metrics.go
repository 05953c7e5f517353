package plugin

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// VerifyAllowed counts attempts the endpoint and policy accepted.
	VerifyAllowed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_allowed_total",
		Help:      "Total number of allowed verification attempts",
	})

	// VerifyDenied counts attempts a policy rule rejected.
	VerifyDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_denied_total",
		Help:      "Total number of denied verification attempts",
	})

	// VerifyErrored counts attempts that could not be completed.
	VerifyErrored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_errored_total",
		Help:      "Total number of verification attempts that failed with an error",
	})

	// VerifyDeclined counts attempts this mechanism did not apply to.
	VerifyDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_declined_total",
		Help:      "Total number of verification attempts declined as not applicable",
	})

	// AuthzDenials counts logins the Casbin policy refused after the
	// endpoint had accepted the credentials.
	AuthzDenials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_authz_denials_total",
		Help:      "Total number of authorization denials",
	})

	// VerifyCalls counts Verify invocations across the plugin boundary.
	VerifyCalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ftpgate",
		Name:      "authweb_verify_calls_total",
		Help:      "Total number of Verify calls",
	})
)

// ExposeMetrics serves the Prometheus registry over the configured Unix
// domain socket. It blocks, so run it in its own goroutine; errors are
// logged and stop the metrics server without affecting verification.
func ExposeMetrics(cfg *Config, logger hclog.Logger) {
	if err := os.Remove(cfg.MetricsUnixDomainSocket); err != nil && !os.IsNotExist(err) {
		logger.Error("Failed to remove stale metrics socket",
			"socket", cfg.MetricsUnixDomainSocket, "error", err)
		return
	}

	listener, err := net.Listen("unix", cfg.MetricsUnixDomainSocket)
	if err != nil {
		logger.Error("Failed to listen on metrics socket",
			"socket", cfg.MetricsUnixDomainSocket, "error", err)
		return
	}

	logger.Debug("Exposing metrics",
		"socket", cfg.MetricsUnixDomainSocket, "endpoint", cfg.MetricsEndpoint)

	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsEndpoint, promhttp.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.Serve(listener); err != nil {
		logger.Error("Metrics server stopped", "error", err)
	}
}
