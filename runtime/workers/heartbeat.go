package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"courier/contract"
	"courier/observability"
)

var _ contract.Worker = (*HeartbeatWorker)(nil)

// HeartbeatWorker periodically collects process stats (CPU, RSS) together
// with live registry counts and publishes them to the monitoring manager
// for the health endpoint. Failures to collect are logged and skipped,
// never fatal.
type HeartbeatWorker struct {
	log        *slog.Logger
	interval   time.Duration
	registry   contract.IRegistry
	router     contract.IRouter
	presence   contract.IPresence
	monitoring *observability.MonitoringManager
}

func NewHeartbeatWorker(
	log *slog.Logger,
	interval time.Duration,
	registry contract.IRegistry,
	router contract.IRouter,
	presence contract.IPresence,
	monitoring *observability.MonitoringManager,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		interval:   interval,
		registry:   registry,
		router:     router,
		presence:   presence,
		monitoring: monitoring,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := observability.MonitoringStats{
				Connections: w.registry.Connections(),
				Rooms:       w.router.Rooms(),
				OnlineUsers: w.presence.Online(),
				CPUPercent:  cpu,
				RSSBytes:    rss,
			}
			w.monitoring.SetLatest(stats)

			w.log.Debug("Heartbeat",
				"connections", stats.Connections,
				"rooms", stats.Rooms,
				"online_users", stats.OnlineUsers,
				"cpu_percent", cpu,
				"rss_bytes", rss)
		}
	}
}

// getSelfStats retrieves memory and CPU usage for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
