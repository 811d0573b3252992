package observability

import (
	"context"
	"testing"
	"time"

	"vpbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsProvider_NilIsSafe(t *testing.T) {
	t.Parallel()

	var mp *MetricsProvider
	assert.NotPanics(t, func() {
		mp.RecordAccrualTick(10, 1, 2, 3, time.Second)
		mp.RecordCommand("vp", true)
		mp.RecordVerification(VerificationVerified)
		mp.RecordEventPublished("vp_awarded", false)
		mp.RecordAdminAward(5)
	})
}

func TestMetricsProvider_ExporterNone(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTELEnabled = true
	cfg.OTELExporterType = "none"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.False(t, mp.isEnabled())
	assert.NotPanics(t, func() { mp.RecordCommand("help", true) })
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTELEnabled = true
	cfg.OTELExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.ErrorContains(t, err, "unknown exporter type")
}

func TestMetricsProvider_ConsoleExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTELEnabled = true
	cfg.OTELExporterType = "console"
	cfg.OTELExportIntervalMS = 60000

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.True(t, mp.isEnabled())

	assert.NotPanics(t, func() {
		mp.RecordAccrualTick(4, 0, 1, 2, 20*time.Millisecond)
		mp.RecordVerification(VerificationInvalidCode)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, mp.Shutdown(ctx))
}
