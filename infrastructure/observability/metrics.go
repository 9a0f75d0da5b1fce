package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"apploto/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider owns the OpenTelemetry meter for the lottery service.
// Every Record method is a no-op on a nil, disabled or uninitialized provider.
type MetricsProvider struct {
	config *config.Config

	mu            sync.RWMutex
	initialized   bool
	meterProvider *sdkmetric.MeterProvider

	lotteriesClosed   metric.Int64Counter
	drawsFinalized    metric.Int64Counter
	entriesRegistered metric.Int64Counter
	winnings          metric.Float64Histogram
	natsReceived      metric.Int64Counter
	natsPublished     metric.Int64Counter
	notifications     metric.Int64Counter
}

func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// newExporter returns nil without error when export is turned off
func newExporter(ctx context.Context, cfg *config.Config) (sdkmetric.Exporter, error) {
	switch cfg.OTelExporterType {
	case "console":
		log.Info("Using console metric exporter")
		return stdoutmetric.New()
	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		log.WithField("endpoint", cfg.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.OTelExporterType)
	}
}

// Initialize builds the exporter and instruments once. Later calls are no-ops.
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	exporter, err := newExporter(ctx, mp.config)
	if err != nil {
		return fmt.Errorf("failed to create %s exporter: %w", mp.config.OTelExporterType, err)
	}
	if exporter == nil {
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(mp.config.OTelServiceName),
		attribute.String("environment", mp.config.Environment),
	))
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	interval := time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)

	if err := mp.createInstruments(provider.Meter("apploto")); err != nil {
		_ = provider.Shutdown(ctx)
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	otel.SetMeterProvider(provider)
	mp.meterProvider = provider
	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&mp.lotteriesClosed, LotteriesClosedTotal, "Lotteries moved to validation after their end date"},
		{&mp.drawsFinalized, DrawsFinalizedTotal, "Finalized draws"},
		{&mp.entriesRegistered, EntriesRegisteredTotal, "Registered entries"},
		{&mp.natsReceived, NATSMessagesReceivedTotal, "NATS messages received"},
		{&mp.natsPublished, NATSMessagesPublishedTotal, "NATS messages published"},
		{&mp.notifications, NotificationsSentTotal, "Notifications attempted"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	var err error
	mp.winnings, err = meter.Float64Histogram(WinningsDistributed,
		metric.WithDescription("Reward amount distributed per finalized draw"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", WinningsDistributed, err)
	}
	return nil
}

// Shutdown flushes pending exports
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider == nil {
		return nil
	}
	return mp.meterProvider.Shutdown(ctx)
}

func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}

// RecordLotteriesClosed records lotteries moved to EN_VALIDATION by a sweep
func (mp *MetricsProvider) RecordLotteriesClosed(count int) {
	if count == 0 || !mp.isEnabled() {
		return
	}
	mp.lotteriesClosed.Add(context.Background(), int64(count))
}

// RecordDrawFinalized records a finalized draw and the amount it distributed
func (mp *MetricsProvider) RecordDrawFinalized(drawType string, distributed float64) {
	if !mp.isEnabled() {
		return
	}
	attrs := metric.WithAttributes(attribute.String(LabelType, drawType))
	mp.drawsFinalized.Add(context.Background(), 1, attrs)
	mp.winnings.Record(context.Background(), distributed, attrs)
}

func (mp *MetricsProvider) RecordEntryRegistered() {
	if !mp.isEnabled() {
		return
	}
	mp.entriesRegistered.Add(context.Background(), 1)
}

func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsReceived.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)))
}

func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsPublished.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)))
}

// RecordNotification records an outgoing notification and whether it succeeded
func (mp *MetricsProvider) RecordNotification(channel string, err error) {
	if !mp.isEnabled() {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	mp.notifications.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(LabelChannel, channel),
		attribute.String(LabelOutcome, outcome),
	))
}

var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the process-wide provider once
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global provider, nil until initialized
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

func ShutdownGlobalMetrics(ctx context.Context) error {
	return globalMetrics.Shutdown(ctx)
}
