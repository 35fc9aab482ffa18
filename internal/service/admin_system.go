// 文件路径: internal/service/admin_system.go
// 模块说明: 管理员查看的运行状态：版本、数据库、主机负载。
package service

import (
	"context"
	"database/sql"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// AdminSystemService 汇总后台仪表盘需要的进程、数据库与主机状态。
type AdminSystemService interface {
	SystemStatus(ctx context.Context) AdminSystemStatus
}

// HostStatFetcher wraps the gopsutil probes so tests can replace them.
type HostStatFetcher struct {
	CPUPercent    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	VirtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	DiskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	LoadAvg       func(ctx context.Context) (*load.AvgStat, error)
	HostUptime    func(ctx context.Context) (uint64, error)
}

// DefaultHostStatFetcher reads the real host.
func DefaultHostStatFetcher() HostStatFetcher {
	return HostStatFetcher{
		CPUPercent:    cpu.PercentWithContext,
		VirtualMemory: mem.VirtualMemoryWithContext,
		DiskUsage:     disk.UsageWithContext,
		LoadAvg:       load.AvgWithContext,
		HostUptime:    host.UptimeWithContext,
	}
}

// AdminSystemOptions 注入运行时依赖。
type AdminSystemOptions struct {
	Version          string
	Environment      string
	StartedAt        time.Time
	DB               *sql.DB
	DBDriver         string
	DiskPath         string
	Fetcher          *HostStatFetcher
	Clock            Clock
	HostnameResolver func() (string, error)
}

// Usage is a used/total pair in bytes.
type Usage struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

// DatabaseStatus mirrors the interesting fields of sql.DBStats.
type DatabaseStatus struct {
	Driver          string `json:"driver"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
	WaitDurationMs  int64  `json:"wait_duration_ms"`
}

// HostStatus 主机指标，采集失败的字段保持零值。
type HostStatus struct {
	CPUPercent float64 `json:"cpu_percent"`
	Memory     Usage   `json:"memory"`
	Disk       Usage   `json:"disk"`
	Load1      float64 `json:"load1"`
	Load5      float64 `json:"load5"`
	Load15     float64 `json:"load15"`
	Uptime     uint64  `json:"uptime"`
}

// AdminSystemStatus 描述管理后台系统状态返回字段。
type AdminSystemStatus struct {
	Version     string         `json:"version"`
	GoVersion   string         `json:"go_version"`
	Environment string         `json:"environment"`
	Hostname    string         `json:"hostname"`
	StartedAt   time.Time      `json:"started_at"`
	Uptime      int64          `json:"uptime"`
	Goroutines  int            `json:"goroutines"`
	HeapAlloc   uint64         `json:"heap_alloc"`
	Database    DatabaseStatus `json:"database"`
	Host        HostStatus     `json:"host"`
}

type adminSystemService struct {
	version     string
	environment string
	startedAt   time.Time
	db          *sql.DB
	driver      string
	diskPath    string
	fetcher     HostStatFetcher
	clock       Clock
	hostname    func() (string, error)
}

// NewAdminSystemService 构建系统状态服务。
func NewAdminSystemService(opts AdminSystemOptions) AdminSystemService {
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = opts.Clock.now()
	}
	fetcher := DefaultHostStatFetcher()
	if opts.Fetcher != nil {
		fetcher = *opts.Fetcher
	}
	hostResolver := opts.HostnameResolver
	if hostResolver == nil {
		hostResolver = os.Hostname
	}
	diskPath := opts.DiskPath
	if diskPath == "" {
		diskPath = "/"
	}
	return &adminSystemService{
		version:     fallback(opts.Version, "dev"),
		environment: fallback(opts.Environment, "production"),
		startedAt:   startedAt,
		db:          opts.DB,
		driver:      opts.DBDriver,
		diskPath:    diskPath,
		fetcher:     fetcher,
		clock:       opts.Clock,
		hostname:    hostResolver,
	}
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// SystemStatus 汇总系统状态（版本、运行时、连接池、主机指标）。
func (s *adminSystemService) SystemStatus(ctx context.Context) AdminSystemStatus {
	hostname, _ := s.hostname()
	uptime := s.clock.now().Unix() - s.startedAt.Unix()
	if uptime < 0 {
		uptime = 0
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	status := AdminSystemStatus{
		Version:     s.version,
		GoVersion:   runtime.Version(),
		Environment: s.environment,
		Hostname:    hostname,
		StartedAt:   s.startedAt,
		Uptime:      uptime,
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		Database:    DatabaseStatus{Driver: s.driver},
		Host:        s.collectHost(ctx),
	}
	if s.db != nil {
		st := s.db.Stats()
		status.Database.OpenConnections = st.OpenConnections
		status.Database.InUse = st.InUse
		status.Database.Idle = st.Idle
		status.Database.WaitCount = st.WaitCount
		status.Database.WaitDurationMs = st.WaitDuration.Milliseconds()
	}
	return status
}

func (s *adminSystemService) collectHost(ctx context.Context) HostStatus {
	var stat HostStatus
	f := s.fetcher

	if f.CPUPercent != nil {
		if percents, err := f.CPUPercent(ctx, 0, false); err == nil && len(percents) > 0 {
			stat.CPUPercent = percents[0]
		}
	}
	if f.VirtualMemory != nil {
		if v, err := f.VirtualMemory(ctx); err == nil {
			stat.Memory = Usage{Total: v.Total, Used: v.Used, Percent: percent(v.Used, v.Total)}
		}
	}
	if f.DiskUsage != nil {
		if d, err := f.DiskUsage(ctx, s.diskPath); err == nil {
			stat.Disk = Usage{Total: d.Total, Used: d.Used, Percent: percent(d.Used, d.Total)}
		}
	}
	if f.LoadAvg != nil {
		if l, err := f.LoadAvg(ctx); err == nil {
			stat.Load1, stat.Load5, stat.Load15 = l.Load1, l.Load5, l.Load15
		}
	}
	if f.HostUptime != nil {
		if u, err := f.HostUptime(ctx); err == nil {
			stat.Uptime = u
		}
	}
	return stat
}
