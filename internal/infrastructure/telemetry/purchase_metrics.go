package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrOperation = attribute.Key("operation")
	AttrErrorCode = attribute.Key("error_code")
	AttrTaxType   = attribute.Key("tax_type")
)

// PurchaseMetrics records business metrics for purchase submission
type PurchaseMetrics struct {
	submitted *Counter
	rejected  *Counter
	amount    *Histogram
	lines     *Histogram
}

// NewPurchaseMetrics registers the purchase instruments on meter
func NewPurchaseMetrics(meter metric.Meter) (*PurchaseMetrics, error) {
	submitted, err := NewCounter(meter, "purchase.submitted", "Purchases recorded", "{purchase}")
	if err != nil {
		return nil, err
	}
	rejected, err := NewCounter(meter, "purchase.rejected", "Purchase operations rejected", "{purchase}")
	if err != nil {
		return nil, err
	}
	amount, err := NewHistogram(meter, HistogramOpts{
		Name:        "purchase.total_amount",
		Description: "Bill total of recorded purchases",
		Unit:        "INR",
		Boundaries:  []float64{500, 1000, 5000, 10000, 50000, 100000, 500000},
	})
	if err != nil {
		return nil, err
	}
	lines, err := NewHistogram(meter, HistogramOpts{
		Name:        "purchase.lines",
		Description: "Medicine lines per recorded purchase",
		Unit:        "{line}",
		Boundaries:  []float64{1, 2, 5, 10, 20, 50},
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseMetrics{submitted: submitted, rejected: rejected, amount: amount, lines: lines}, nil
}

// RecordSubmitted records one recorded purchase
func (m *PurchaseMetrics) RecordSubmitted(ctx context.Context, lineCount int, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.submitted.Inc(ctx)
	m.amount.Record(ctx, total.InexactFloat64())
	m.lines.Record(ctx, float64(lineCount))
}

// RecordRejected records a rejected operation with its error code
func (m *PurchaseMetrics) RecordRejected(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	m.rejected.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}
