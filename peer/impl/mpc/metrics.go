package mpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpc",
		Name:      "messages_total",
		Help:      "Share messages processed, by kind.",
	}, []string{"party", "kind"})

	droppedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpc",
		Name:      "dropped_messages_total",
		Help:      "Share messages dropped because they could not be processed.",
	}, []string{"party", "kind"})

	gatesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpc",
		Name:      "gates_resolved_total",
		Help:      "Multiplication gates resolved.",
	}, []string{"party"})

	resultsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpc",
		Name:      "results_total",
		Help:      "Products reconstructed.",
	}, []string{"party"})
)
