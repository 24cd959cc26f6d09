package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats aggregates the metrics exposed on the health endpoint.
type MonitoringStats struct {
	Connections     int     `json:"connections"`
	Rooms           int     `json:"rooms"`
	OnlineUsers     int     `json:"online_users"`
	MessagesSent    uint64  `json:"messages_sent"`
	DeliveryFailed  uint64  `json:"delivery_failed"`
	CPUPercent      float64 `json:"cpu_percent"`
	RSSBytes        uint64  `json:"rss_bytes"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	CollectedAt     string  `json:"collected_at"`
}

// MonitoringManager holds the latest collected snapshot plus atomic
// counters incremented on the hot path. The heartbeat worker refreshes
// the snapshot; the health handler only reads it.
type MonitoringManager struct {
	mu          sync.RWMutex
	latestStats MonitoringStats
	startedAt   time.Time

	messagesSent   uint64
	deliveryFailed uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{startedAt: time.Now()}
}

func (mm *MonitoringManager) IncrMessagesSent() {
	atomic.AddUint64(&mm.messagesSent, 1)
}

func (mm *MonitoringManager) IncrDeliveryFailed() {
	atomic.AddUint64(&mm.deliveryFailed, 1)
}

// SetLatest stores a fresh snapshot, filling in the counter values and
// uptime so collectors don't have to.
func (mm *MonitoringManager) SetLatest(stats MonitoringStats) {
	stats.MessagesSent = atomic.LoadUint64(&mm.messagesSent)
	stats.DeliveryFailed = atomic.LoadUint64(&mm.deliveryFailed)
	stats.UptimeSeconds = int64(time.Since(mm.startedAt).Seconds())
	stats.CollectedAt = time.Now().UTC().Format(time.RFC3339)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats = stats
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
