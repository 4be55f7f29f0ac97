// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescope_store_mutations_total",
			Help: "Total number of committed store mutations",
		},
		[]string{"slice"},
	)

	StorageSaveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescope_storage_save_failures_total",
			Help: "Total number of failed writes to durable storage",
		},
		[]string{"key"},
	)

	// Covers both backend read errors and undecodable stored values.
	StorageLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescope_storage_load_failures_total",
			Help: "Total number of stored values that could not be read or decoded",
		},
		[]string{"key"},
	)

	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescope_backups_total",
			Help: "Total number of backup runs by result",
		},
		[]string{"result"},
	)
)
