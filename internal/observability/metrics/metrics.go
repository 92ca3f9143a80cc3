package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	quotes         metric.Int64Counter
	enrollments    metric.Int64Counter
	paymentUpdates metric.Int64Counter
	configUpdates  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "aulapay"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("aulapay_price_quotes_total")
	if err != nil {
		return nil, err
	}
	enrollments, err := meter.Int64Counter("aulapay_enrollments_created_total")
	if err != nil {
		return nil, err
	}
	paymentUpdates, err := meter.Int64Counter("aulapay_payment_status_updates_total")
	if err != nil {
		return nil, err
	}
	configUpdates, err := meter.Int64Counter("aulapay_pricing_config_updates_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:         quotes,
		enrollments:    enrollments,
		paymentUpdates: paymentUpdates,
		configUpdates:  configUpdates,
	}, nil
}

// RecordQuote increments quote counts per discount kind.
func (m *Metrics) RecordQuote(ctx context.Context, discountKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("discount_kind", strings.TrimSpace(discountKind)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEnrollmentsCreated increments enrollment creation counts.
func (m *Metrics) RecordEnrollmentsCreated(ctx context.Context, period string, count int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("period", strings.TrimSpace(period)))
	m.enrollments.Add(ctx, count, metric.WithAttributes(attrs...))
}

// RecordPaymentStatusUpdate increments payment status transition counts.
func (m *Metrics) RecordPaymentStatusUpdate(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.paymentUpdates.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConfigUpdate increments pricing configuration change counts.
func (m *Metrics) RecordConfigUpdate(ctx context.Context, fieldCount int64) {
	if m == nil {
		return
	}
	m.configUpdates.Add(ctx, fieldCount)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"discount_kind": {},
	"period":        {},
	"status":        {},
	"status_code":   {},
	"endpoint":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
