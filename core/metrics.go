package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_sync_transitions_total",
		Help: "Total number of sync state transitions.",
	}, []string{"to"})

	syncOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_sync_online",
		Help: "1 while the remote event store is considered reachable.",
	})

	mirrorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_mirror_total",
		Help: "Remote mirror attempts by operation and outcome.",
	}, []string{"operation", "outcome"})
)

func observeMirror(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}

	mirrorTotal.WithLabelValues(op, outcome).Inc()
}
