package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Fetch metrics
	ActivityPagesTotal   int64
	ActivityRecordsTotal int64
	SummaryFetchesTotal  int64
	SummaryRecordsTotal  int64
	TruncationsTotal     int64

	// Cache rebuild metrics
	RebuildsTotal        int64
	RebuildErrorsTotal   int64
	RebuildsSkippedTotal int64
	lastRebuildDuration  time.Duration

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketBroadcastsTotal     int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordActivityPage records one fetched activity page and its record count
func (m *Metrics) RecordActivityPage(records int) {
	m.mu.Lock()
	m.ActivityPagesTotal++
	m.ActivityRecordsTotal += int64(records)
	m.mu.Unlock()
}

// RecordSummaryFetch records one summary query and its record count
func (m *Metrics) RecordSummaryFetch(records int) {
	m.mu.Lock()
	m.SummaryFetchesTotal++
	m.SummaryRecordsTotal += int64(records)
	m.mu.Unlock()
}

// RecordTruncation records a fetch that hit its page ceiling
func (m *Metrics) RecordTruncation() {
	m.mu.Lock()
	m.TruncationsTotal++
	m.mu.Unlock()
}

// RecordRebuild records a completed cache rebuild
func (m *Metrics) RecordRebuild(duration time.Duration, failed bool) {
	m.mu.Lock()
	m.RebuildsTotal++
	if failed {
		m.RebuildErrorsTotal++
	} else {
		m.lastRebuildDuration = duration
	}
	m.mu.Unlock()
}

// RecordRebuildSkipped records a rebuild call satisfied by the fresh or
// in-flight cache
func (m *Metrics) RecordRebuildSkipped() {
	m.mu.Lock()
	m.RebuildsSkippedTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketBroadcast increments the broadcast counter
func (m *Metrics) RecordWebSocketBroadcast() {
	m.mu.Lock()
	m.WebSocketBroadcastsTotal++
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for the rolling average
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("callsight_uptime_seconds", time.Since(m.startTime).Seconds())

		// Fetch metrics
		write("callsight_activity_pages_total", m.ActivityPagesTotal)
		write("callsight_activity_records_total", m.ActivityRecordsTotal)
		write("callsight_summary_fetches_total", m.SummaryFetchesTotal)
		write("callsight_summary_records_total", m.SummaryRecordsTotal)
		write("callsight_fetch_truncations_total", m.TruncationsTotal)

		// Cache rebuild metrics
		write("callsight_rebuilds_total", m.RebuildsTotal)
		write("callsight_rebuild_errors_total", m.RebuildErrorsTotal)
		write("callsight_rebuilds_skipped_total", m.RebuildsSkippedTotal)
		write("callsight_last_rebuild_duration_seconds", m.lastRebuildDuration.Seconds())

		// WebSocket metrics
		write("callsight_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("callsight_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("callsight_websocket_broadcasts_total", m.WebSocketBroadcastsTotal)
		write("callsight_websocket_active_connections", m.activeConnections)

		// HTTP metrics
		for endpoint, statuses := range m.httpRequestsTotal {
			for status, count := range statuses {
				write("callsight_http_requests_total", count,
					"endpoint", endpoint,
					"status", strconv.Itoa(status))
			}
		}
		for endpoint, durations := range m.httpRequestDurations {
			if len(durations) == 0 {
				continue
			}
			var sum float64
			for _, d := range durations {
				sum += d
			}
			write("callsight_http_request_duration_seconds_avg", sum/float64(len(durations)),
				"endpoint", endpoint)
		}
	}
}

// Reset clears all counters. Only used by tests.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActivityPagesTotal = 0
	m.ActivityRecordsTotal = 0
	m.SummaryFetchesTotal = 0
	m.SummaryRecordsTotal = 0
	m.TruncationsTotal = 0
	m.RebuildsTotal = 0
	m.RebuildErrorsTotal = 0
	m.RebuildsSkippedTotal = 0
	m.WebSocketConnectionsTotal = 0
	m.WebSocketDisconnectionsTotal = 0
	m.WebSocketBroadcastsTotal = 0
	m.activeConnections = 0
	m.httpRequestsTotal = make(map[string]map[int]int64)
	m.httpRequestDurations = make(map[string][]float64)
}
