package session

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeDesc = prometheus.NewDesc(
		"calculator_sessions_active",
		"Number of mounted calculator sessions.",
		nil, nil,
	)
	evictedDesc = prometheus.NewDesc(
		"calculator_sessions_evicted_total",
		"Number of calculator sessions evicted for inactivity.",
		nil, nil,
	)
)

// storeCollector reads the store on every scrape.
type storeCollector struct {
	store *Store
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- activeDesc
	ch <- evictedDesc
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(activeDesc, prometheus.GaugeValue, float64(c.store.Len()))
	ch <- prometheus.MustNewConstMetric(evictedDesc, prometheus.CounterValue, float64(c.store.Evicted()))
}

// RegisterCollectors exposes store gauges on reg. Registering the same
// store twice is not an error; registering a different store on a
// registry that already reports one is.
func RegisterCollectors(reg prometheus.Registerer, store *Store) error {
	err := reg.Register(&storeCollector{store: store})
	if err == nil {
		return nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*storeCollector); ok && existing.store == store {
			return nil
		}
		return fmt.Errorf("registering session collectors: another store is already registered: %w", err)
	}
	return fmt.Errorf("registering session collectors: %w", err)
}
