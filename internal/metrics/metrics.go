// Package metrics exposes Prometheus collectors for the earthquake simulation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Phase labels for QuakesStarted.
const (
	PhaseForeshock = "foreshock"
	PhaseMain      = "main"
)

// Stage labels for BlocksCarved.
const (
	StageFault     = "fault"
	StageFissure   = "fissure"
	StageFloater   = "floater"
	StageShard     = "shard"
	StageTree      = "tree"
	StageGravelAdd = "gravel"
)

var QuakesStarted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quake_quakes_started_total",
		Help: "Quake sequences started, by phase",
	},
	[]string{"phase"},
)

var WarningsSent = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quake_warnings_sent_total",
		Help: "Notifications sent, by packet type and delivery (broadcast or direct)",
	},
	[]string{"kind", "delivery"},
)

var BlocksCarved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quake_blocks_carved_total",
		Help: "Blocks changed by quake terrain passes, by stage",
	},
	[]string{"stage"},
)

var LootSpawned = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quake_loot_spawned_total",
		Help: "Loot entities spawned, by loot table",
	},
	[]string{"table"},
)

var SequenceSteps = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "quake_sequence_steps",
		Help:    "Carving steps per completed main shock",
		Buckets: []float64{8, 12, 16, 24, 32, 48, 64},
	},
)

// RegisterMetrics registers the package collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(QuakesStarted)
	reg.MustRegister(WarningsSent)
	reg.MustRegister(BlocksCarved)
	reg.MustRegister(LootSpawned)
	reg.MustRegister(SequenceSteps)
}

func RecordQuakeStarted(phase string) { QuakesStarted.WithLabelValues(phase).Inc() }

func RecordNotification(kind string, broadcast bool) {
	delivery := "direct"
	if broadcast {
		delivery = "broadcast"
	}
	WarningsSent.WithLabelValues(kind, delivery).Inc()
}

func RecordBlocks(stage string, n int) {
	if n > 0 {
		BlocksCarved.WithLabelValues(stage).Add(float64(n))
	}
}

func RecordLoot(table string, n int) {
	if n > 0 {
		LootSpawned.WithLabelValues(table).Add(float64(n))
	}
}

func RecordSequenceSteps(n int) { SequenceSteps.Observe(float64(n)) }

// Handler serves the registry on /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
