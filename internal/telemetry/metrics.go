package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики выполнения flows и chains.
var (
	// NodeExecutions — количество выполнений узлов по типу и исходу.
	NodeExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_node_executions_total",
		Help: "Number of node executions by node type and outcome.",
	}, []string{"node_type", "outcome"})

	// NodeDuration — длительность выполнения узлов по типу.
	NodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nodeflow_node_duration_seconds",
		Help:    "Node execution duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"node_type"})

	// FlowRuns — количество запусков flows по исходу.
	FlowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_flow_runs_total",
		Help: "Number of flow runs by outcome.",
	}, []string{"outcome"})

	// FlowDuration — длительность запусков flows.
	FlowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodeflow_flow_duration_seconds",
		Help:    "Flow run duration in seconds.",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// ChainRuns — количество запусков chains по исходу.
	ChainRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_chain_runs_total",
		Help: "Number of chain runs by outcome.",
	}, []string{"outcome"})
)
