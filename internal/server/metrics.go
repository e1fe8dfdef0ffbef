package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gograd_tool_calls_total",
		Help: "Tool calls by tool and result",
	}, []string{"tool", "result"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gograd_tool_call_duration_seconds",
		Help:    "Tool call duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"tool"})

	derivativeOrder = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gograd_derivative_order",
		Help:    "Requested derivative order",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 32},
	})

	graphNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gograd_graph_nodes",
		Help:    "Expression graph size per tool call",
		Buckets: prometheus.ExponentialBuckets(8, 4, 9),
	})

	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gograd_handler_panics_total",
		Help: "Recovered handler panics",
	})
)

func resultLabel(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}

var knownTools = map[string]bool{
	"eval": true, "derivatives": true, "nth_derivative": true,
	"check": true, "graph": true, "mcp_spec": true,
}

// toolLabel keeps client-chosen tool names out of the label set.
func toolLabel(tool string) string {
	if knownTools[tool] {
		return tool
	}
	return "unknown"
}
