package graph

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("pumpgrid.graph")
	meter  = otel.Meter("pumpgrid.graph")
)

// instruments holds the graph's metrics. They are created on first use and
// a failed instrument is left nil, in which case it is skipped.
type instruments struct {
	once         sync.Once
	nodeRuns     metric.Int64Counter
	nodeFailures metric.Int64Counter
	suppressed   metric.Int64Counter
	pumpDuration metric.Float64Histogram
}

func (m *instruments) init(logger *slog.Logger) {
	m.once.Do(func() {
		var initErrors []string

		var err error
		m.nodeRuns, err = meter.Int64Counter("graph_node_runs_total",
			metric.WithDescription("Number of node handler invocations"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_runs: "+err.Error())
		}

		m.nodeFailures, err = meter.Int64Counter("graph_node_failures_total",
			metric.WithDescription("Number of failed node handler invocations"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_failures: "+err.Error())
		}

		m.suppressed, err = meter.Int64Counter("graph_errors_suppressed_total",
			metric.WithDescription("Number of handler failures swallowed as duplicates"),
		)
		if err != nil {
			initErrors = append(initErrors, "errors_suppressed: "+err.Error())
		}

		m.pumpDuration, err = meter.Float64Histogram("graph_pump_duration_seconds",
			metric.WithDescription("Wall time from the first step of a pump to its completion"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "pump_duration: "+err.Error())
		}

		if len(initErrors) > 0 {
			logger.Error("Failed to initialize some graph metrics.",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}

func (m *instruments) nodeRan(ctx context.Context, name string, err error) {
	attrs := metric.WithAttributes(attribute.String("node", name))
	if m.nodeRuns != nil {
		m.nodeRuns.Add(ctx, 1, attrs)
	}
	if err != nil && m.nodeFailures != nil {
		m.nodeFailures.Add(ctx, 1, attrs)
	}
}

func (m *instruments) errorSuppressed(ctx context.Context, name string) {
	if m.suppressed != nil {
		m.suppressed.Add(ctx, 1, metric.WithAttributes(attribute.String("node", name)))
	}
}

func (m *instruments) pumpFinished(ctx context.Context, seconds float64, async bool) {
	if m.pumpDuration != nil {
		m.pumpDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("async", async)))
	}
}
