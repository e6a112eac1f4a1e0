// ABOUTME: Prometheus counters for handled commands and lookup failures.
// ABOUTME: Serve exposes /metrics when an address is configured.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	commandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aquacal",
			Name:      "commands_handled_total",
			Help:      "Count of handled user commands by command and status.",
		},
		[]string{"command", "status"},
	)

	lookupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aquacal",
			Name:      "lookup_failures_total",
			Help:      "Count of external lookup failures by service.",
		},
		[]string{"service"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(commandsHandled, lookupFailures)
	})
}

// IncCommand records one handled command with its outcome status.
func IncCommand(command, status string) {
	commandsHandled.WithLabelValues(command, status).Inc()
}

// IncLookupFailure records one failed external lookup.
func IncLookupFailure(service string) {
	lookupFailures.WithLabelValues(service).Inc()
}

// Serve blocks serving /metrics on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
