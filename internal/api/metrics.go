package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/bridge"
	"github.com/nerrad567/mqtt-tickbridge/internal/journal"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Bridge        bridge.Stats   `json:"bridge"`
	Host          *HostStats     `json:"host,omitempty"`
	Journal       *journal.Stats `json:"journal,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// HostStats contains built-in host counters.
type HostStats struct {
	Ticks                  uint64 `json:"ticks"`
	WhenConnectedRuns      uint64 `json:"when_connected_runs"`
	WhenMessageReceiveRuns uint64 `json:"when_message_received_runs"`
}

// handleMetrics returns runtime, adapter, host and journal metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Bridge: s.bridge.Stats(),
	}

	if s.host != nil {
		connected, received := s.host.HatCounts()
		metrics.Host = &HostStats{
			Ticks:                  s.host.Ticks(),
			WhenConnectedRuns:      connected,
			WhenMessageReceiveRuns: received,
		}
	}

	if s.journal != nil {
		stats := s.journal.Stats()
		metrics.Journal = &stats
	}

	writeJSON(w, http.StatusOK, metrics)
}
