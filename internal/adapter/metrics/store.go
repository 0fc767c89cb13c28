package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lookup tiers reported by StoreMetrics.Reads.
const (
	TierMemory  = "memory"
	TierDurable = "durable"
	TierDefault = "default"
)

// StoreMetrics tracks the two-tier session store.
type StoreMetrics struct {
	Reads          *prometheus.CounterVec
	Writes         prometheus.Counter
	DurableErrors  *prometheus.CounterVec
	DurableMirrors *prometheus.CounterVec
	Sweeps         prometheus.Counter
	Evictions      prometheus.Counter
	MemoryEntries  prometheus.Gauge
}

// NewStoreMetrics creates and registers store metrics on the given registry.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Total session reads, by the tier that answered.",
		}, []string{"tier"}),
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total merged session writes to the memory tier.",
		}),
		DurableErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "durable_errors_total",
			Help:      "Durable tier errors swallowed by the store, by operation.",
		}, []string{"operation"}),
		DurableMirrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "durable_mirrors_total",
			Help:      "Background durable writes, by outcome.",
		}, []string{"status"}),
		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "sweeps_total",
			Help:      "Probabilistic expiry sweeps of the memory tier.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "evictions_total",
			Help:      "Expired sessions evicted from the memory tier.",
		}),
		MemoryEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "memory_entries",
			Help:      "Sessions currently held in the memory tier, expired ones included.",
		}),
	}

	reg.MustRegister(m.Reads, m.Writes, m.DurableErrors, m.DurableMirrors, m.Sweeps, m.Evictions, m.MemoryEntries)
	return m
}
