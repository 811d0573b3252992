package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vpbot/config"

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

// MetricsProvider manages OpenTelemetry metrics for the bot. A nil provider
// or one without an exporter records nothing.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	vpAwardedCounter       metric.Int64Counter
	accrualTicksCounter    metric.Int64Counter
	accrualFailuresCounter metric.Int64Counter
	accrualTickDuration    metric.Float64Histogram
	bonusPresenceGauge     metric.Int64Gauge
	voicePresenceGauge     metric.Int64Gauge
	commandsCounter        metric.Int64Counter
	verificationsCounter   metric.Int64Counter
	eventsPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTELEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTELServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTELExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTELOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTELOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTELExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTELExportIntervalMS)*time.Millisecond),
			),
		),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("vpbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.vpAwardedCounter, err = mp.meter.Int64Counter(
		VPAwardedTotal,
		metric.WithDescription("Total Voice Points credited"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create vp awarded counter: %w", err)
	}

	mp.accrualTicksCounter, err = mp.meter.Int64Counter(
		AccrualTicksTotal,
		metric.WithDescription("Total accrual ticks run"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create accrual ticks counter: %w", err)
	}

	mp.accrualFailuresCounter, err = mp.meter.Int64Counter(
		AccrualFailuresTotal,
		metric.WithDescription("Per-user credit failures during accrual"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create accrual failures counter: %w", err)
	}

	mp.accrualTickDuration, err = mp.meter.Float64Histogram(
		AccrualTickDuration,
		metric.WithDescription("Duration of accrual ticks in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create accrual tick duration histogram: %w", err)
	}

	mp.bonusPresenceGauge, err = mp.meter.Int64Gauge(
		BonusChannelPresence,
		metric.WithDescription("Users in the bonus channel at the last tick"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bonus presence gauge: %w", err)
	}

	mp.voicePresenceGauge, err = mp.meter.Int64Gauge(
		VoiceChannelPresence,
		metric.WithDescription("Users in any tracked voice channel at the last tick"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create voice presence gauge: %w", err)
	}

	mp.commandsCounter, err = mp.meter.Int64Counter(
		CommandsTotal,
		metric.WithDescription("Slash commands handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create commands counter: %w", err)
	}

	mp.verificationsCounter, err = mp.meter.Int64Counter(
		VerificationsTotal,
		metric.WithDescription("Verification attempts by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create verifications counter: %w", err)
	}

	mp.eventsPublishedCounter, err = mp.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Events forwarded to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordAccrualTick records one accrual pass
func (mp *MetricsProvider) RecordAccrualTick(awardedVP int64, failures int, bonusPresent int, voicePresent int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.accrualTicksCounter.Add(ctx, 1)
	mp.accrualTickDuration.Record(ctx, duration.Seconds())
	mp.bonusPresenceGauge.Record(ctx, int64(bonusPresent))
	mp.voicePresenceGauge.Record(ctx, int64(voicePresent))
	if awardedVP > 0 {
		mp.vpAwardedCounter.Add(ctx, awardedVP, metric.WithAttributes(attribute.String(LabelSource, "voice")))
	}
	if failures > 0 {
		mp.accrualFailuresCounter.Add(ctx, int64(failures))
	}
}

// RecordAdminAward records VP granted by an administrator
func (mp *MetricsProvider) RecordAdminAward(amount int64) {
	if !mp.isEnabled() {
		return
	}

	mp.vpAwardedCounter.Add(context.Background(), amount,
		metric.WithAttributes(attribute.String(LabelSource, "admin")),
	)
}

// RecordCommand records a handled slash command
func (mp *MetricsProvider) RecordCommand(command string, success bool) {
	if !mp.isEnabled() {
		return
	}

	mp.commandsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelCommand, command),
			attribute.String(LabelResult, resultLabel(success)),
		),
	)
}

// RecordVerification records a /verify outcome
func (mp *MetricsProvider) RecordVerification(result string) {
	if !mp.isEnabled() {
		return
	}

	mp.verificationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelResult, result)),
	)
}

// RecordEventPublished records an event forwarded to NATS
func (mp *MetricsProvider) RecordEventPublished(eventType string, success bool) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
			attribute.String(LabelResult, resultLabel(success)),
		),
	)
}

func resultLabel(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}

// isEnabled checks if instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
