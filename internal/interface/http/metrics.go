package handlers

import (
	"expvar"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	statRegistrations    = "registrations"
	statRegisterRejected = "registrations_rejected"
	statLogins           = "logins"
	statLoginFailures    = "login_failures"
	statLogouts          = "logouts"
	statProfileUpdates   = "profile_updates"
	statProfileFailures  = "profile_update_failures"
)

// authStats is published under "auth" on /api/debug/vars.
var authStats = expvar.NewMap("auth")

var authEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "session_auth",
	Name:      "events_total",
	Help:      "Authentication events by kind.",
}, []string{"event"})

// Registry holds the collectors served on /api/debug/metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		authEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func count(stat string) {
	authStats.Add(stat, 1)
	authEvents.WithLabelValues(stat).Inc()
}
