package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type Phase uint8

const (
	PhaseInsert Phase = iota
	PhaseSearch
	PhaseDelete
)

func (p Phase) String() string {
	switch p {
	case PhaseInsert:
		return "insert"
	case PhaseSearch:
		return "search"
	case PhaseDelete:
		return "delete"
	default:
	}
	return "unknown"
}

const treeMeterName = "xtree/tree"

// TreeStats records the benchmark phases of one engine and workload
// pair. Durations are in milliseconds.
type TreeStats struct {
	phases    [3]metric.Float64Histogram
	height    metric.Int64Histogram
	scenarios metric.Int64Counter
}

// NewTreeStats registers the instruments on mp, the otel global
// provider when mp is nil.
func NewTreeStats(mp metric.MeterProvider) (*TreeStats, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(treeMeterName)
	stats := &TreeStats{}
	var err error
	for _, p := range []Phase{PhaseInsert, PhaseSearch, PhaseDelete} {
		if stats.phases[p], err = meter.Float64Histogram(
			"xtree."+p.String()+".duration",
			metric.WithUnit("ms"),
			metric.WithDescription("Elapsed time of the "+p.String()+" phase of a tree scenario."),
		); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[observability] "+p.String()+" histogram")
		}
	}
	if stats.height, err = meter.Int64Histogram(
		"xtree.height",
		metric.WithDescription("Tree height at the end of a scenario."),
	); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] height histogram")
	}
	if stats.scenarios, err = meter.Int64Counter(
		"xtree.scenarios",
		metric.WithDescription("Finished tree scenarios, by validity."),
	); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] scenario counter")
	}
	return stats, nil
}

func treeAttrs(engine, workload string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("workload", workload),
	)
}

func (stats *TreeStats) RecordPhase(ctx context.Context, engine, workload string, p Phase, elapsed time.Duration) {
	if stats == nil || int(p) >= len(stats.phases) {
		return
	}
	stats.phases[p].Record(ctx, float64(elapsed)/float64(time.Millisecond), treeAttrs(engine, workload))
}

func (stats *TreeStats) RecordScenario(ctx context.Context, engine, workload string, height int, valid bool) {
	if stats == nil {
		return
	}
	stats.height.Record(ctx, int64(height), treeAttrs(engine, workload))
	stats.scenarios.Add(ctx, 1, metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("workload", workload),
		attribute.Bool("valid", valid),
	))
}
