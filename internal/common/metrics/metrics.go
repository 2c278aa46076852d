// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_transitions_total",
			Help: "Total number of candidate stage transitions",
		},
		[]string{"from", "to"},
	)

	OperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_operations_failed_total",
			Help: "Total number of failed orchestrator operations",
		},
		[]string{"operation", "error_code"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_operation_duration_seconds",
			Help: "Duration of orchestrator operations in seconds",
		},
		[]string{"operation"},
	)

	Rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rejections_total",
			Help: "Total number of candidate rejections",
		},
		[]string{"type", "reason"},
	)

	DraftsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_drafts_generated_total",
			Help: "Total number of outbound drafts generated",
		},
		[]string{"template"},
	)
)
