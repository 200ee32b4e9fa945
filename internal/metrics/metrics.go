package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all brewvote metrics
const namespace = "brewvote"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// VoterRegistrations counts get-or-create outcomes: existing, created, reconciled, failed
var VoterRegistrations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voter_registrations_total",
		Help:      "Voter get-or-create calls by outcome",
	},
	[]string{"outcome"},
)

// AuthorizationDecisions counts access guard decisions per capability
var AuthorizationDecisions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Access guard decisions by capability and decision",
	},
	[]string{"capability", "decision"},
)

// ShortCodeLookups counts short code resolutions by kind and result (hit, miss, wrong_event, error)
var ShortCodeLookups = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "short_code_lookups_total",
		Help:      "Short code resolutions by kind and result",
	},
	[]string{"kind", "result"},
)

var initOnce sync.Once

// Init registers runtime collectors and sets version information. Safe to call more than once.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
