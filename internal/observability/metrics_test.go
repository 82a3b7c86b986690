package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200)
	m.RecordRequest("/tickets", "GET", 200)
	m.RecordRequest("/dashboard", "GET", 502)
	m.RecordError("/dashboard", "GET", "UPSTREAM_UNAVAILABLE")
	m.RecordSave("saved")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, Counter{Key: "/dashboard|GET|502", Count: 1}, snap.Requests[0])
	assert.Equal(t, Counter{Key: "/tickets|GET|200", Count: 2}, snap.Requests[1])
	assert.Equal(t, []Counter{{Key: "/dashboard|GET|UPSTREAM_UNAVAILABLE", Count: 1}}, snap.Errors)
	assert.Equal(t, []Counter{{Key: "saved", Count: 1}}, snap.Saves)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200)
	m.RecordError("/", "GET", "X")
	m.RecordSave("saved")
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
