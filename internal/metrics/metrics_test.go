package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	m := New(reg)

	m.VideosTotal.Inc()
	m.VideosTotal.Inc()
	m.VideosFailed.Inc()
	m.ProcessingDuration.Observe(42.5)
	m.TranscriptLines.Observe(120)
	m.SegmentsGenerated.Observe(5)
	m.KeywordExtractions.Add(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VideosTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VideosFailed))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.KeywordExtractions))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
