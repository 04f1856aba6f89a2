package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWidgetSync_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWidgetSync(reg)

	m.Observe(SyncOK, 120, 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}

	assert.ElementsMatch(t, []string{
		"footnote_widget_sync_total",
		"footnote_widget_sync_bytes",
		"footnote_widget_quotes",
	}, names)
}

func TestWidgetSync_Observe(t *testing.T) {
	m := NewWidgetSync(nil)

	m.Observe(SyncOK, 100, 2)
	m.Observe(SyncOK, 100, 5)
	m.Observe(SyncEncodeError, 0, 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Total.WithLabelValues(SyncOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Total.WithLabelValues(SyncEncodeError)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.Total.WithLabelValues(SyncWriteError)), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.Quotes), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Bytes))
}

func TestWidgetSync_NilIsNoop(t *testing.T) {
	var m *WidgetSync

	assert.NotPanics(t, func() { m.Observe(SyncOK, 1, 1) })
}

func TestNewWidgetSync_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWidgetSync(reg)

	assert.Panics(t, func() { NewWidgetSync(reg) })
}
