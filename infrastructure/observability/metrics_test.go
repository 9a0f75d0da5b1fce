package observability

import (
	"context"
	"errors"
	"testing"

	"apploto/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))
	assert.False(t, mp.isEnabled())

	assert.NotPanics(t, func() {
		mp.RecordDrawFinalized(DrawTypeLottery, 1000)
		mp.RecordEntryRegistered()
		mp.RecordNotification(ChannelEmail, errors.New("smtp down"))
	})
	require.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_NilIsNoop(t *testing.T) {
	t.Parallel()

	var mp *MetricsProvider
	assert.NotPanics(t, func() {
		mp.RecordLotteriesClosed(3)
		mp.RecordNATSMessagePublished("draw_finalized")
	})
}

func TestMetricsProvider_ConsoleExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "console"
	cfg.OTelServiceName = "apploto-test"
	cfg.OTelExportIntervalMillis = 60000

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.True(t, mp.isEnabled())

	mp.RecordDrawFinalized(DrawTypeSimulation, 250)
	mp.RecordLotteriesClosed(2)
	require.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.ErrorContains(t, err, "unknown exporter type")
}
