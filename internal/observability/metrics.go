package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory request and error counters.
type Metrics struct {
	mu           sync.Mutex
	started      time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	saveOutcomes map[string]int64
}

// Counter is one labelled count in a Snapshot.
type Counter struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64     `json:"uptime_seconds"`
	Requests      []Counter `json:"requests"`
	Errors        []Counter `json:"errors"`
	Saves         []Counter `json:"saves"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		saveOutcomes: make(map[string]int64),
	}
}

// RecordRequest counts a served request by route, method and status.
func (m *Metrics) RecordRequest(route, method string, status int) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError counts a failed request by route, method and error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSave counts a draft save outcome: saved, failed or skipped.
func (m *Metrics) RecordSave(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveOutcomes[outcome]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      counters(m.requestCount),
		Errors:        counters(m.errorCount),
		Saves:         counters(m.saveOutcomes),
	}
}

func counters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
