package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricDocumentsTotal = "usefold.fold.documents.total"
	metricLinesTotal     = "usefold.fold.lines.total"
	metricRangesTotal    = "usefold.fold.ranges.total"
	metricSkippedTotal   = "usefold.fold.skipped.total"

	attrLanguage = "language"
)

// FoldMetrics counts the work done by the import folding scanner.
type FoldMetrics struct {
	documents metric.Int64Counter
	lines     metric.Int64Counter
	ranges    metric.Int64Counter
	skipped   metric.Int64Counter
}

// NewFoldMetrics creates folding instruments from the given meter.
func NewFoldMetrics(mt metric.Meter) (*FoldMetrics, error) {
	documents, err := mt.Int64Counter(metricDocumentsTotal,
		metric.WithDescription("Documents scanned for import groups"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDocumentsTotal, err)
	}

	lines, err := mt.Int64Counter(metricLinesTotal,
		metric.WithDescription("Lines scanned"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLinesTotal, err)
	}

	ranges, err := mt.Int64Counter(metricRangesTotal,
		metric.WithDescription("Import folding ranges reported"),
		metric.WithUnit("{range}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRangesTotal, err)
	}

	skipped, err := mt.Int64Counter(metricSkippedTotal,
		metric.WithDescription("Documents skipped because of their language"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSkippedTotal, err)
	}

	return &FoldMetrics{documents: documents, lines: lines, ranges: ranges, skipped: skipped}, nil
}

// RecordScan records one scanned document. A nil receiver is a no-op.
func (fm *FoldMetrics) RecordScan(ctx context.Context, language string, lines, ranges int) {
	if fm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrLanguage, language))

	fm.documents.Add(ctx, 1, attrs)
	fm.lines.Add(ctx, int64(lines), attrs)
	fm.ranges.Add(ctx, int64(ranges), attrs)
}

// RecordSkip records a document whose language is not folded. A nil
// receiver is a no-op.
func (fm *FoldMetrics) RecordSkip(ctx context.Context, language string) {
	if fm == nil {
		return
	}

	fm.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrLanguage, language)))
}
