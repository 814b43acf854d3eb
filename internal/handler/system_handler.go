package handler

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/config"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/response"
)

const metricsInterval = 7 * time.Second

// SystemHandler streams a small health snapshot over SSE: enough for an
// operator to tell whether the exam server is keeping up during a session
// (CPU, memory, load, goroutines, audit backlog), nothing more.
type SystemHandler struct {
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger

	// previous /proc/stat reading, for the usage delta
	prevIdle  uint64
	prevTotal uint64
}

func NewSystemHandler(rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	h := &SystemHandler{
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
	h.prevIdle, h.prevTotal, _ = readCPUStat()
	return h
}

type healthSnapshot struct {
	Timestamp     int64   `json:"timestamp"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemUsedBytes  uint64  `json:"mem_used_bytes"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`
	LoadAvg1      float64 `json:"load_avg_1"`
	Goroutines    int     `json:"goroutines"`
	HeapAlloc     uint64  `json:"heap_alloc"`
	AppRSSBytes   uint64  `json:"app_rss_bytes"`
	GoVersion     string  `json:"go_version"`
	QueueAudit    int64   `json:"queue_audit"`
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
// Emits a snapshot on connect and then every metricsInterval until the
// client disconnects.
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Str("user_id", claims.UserID.String()).Msg("System metrics stream opened")
	defer h.log.Info().Msg("System metrics stream closed")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		c.SSEvent("metrics", h.snapshot(c))
		c.Writer.Flush()

		select {
		case <-reqCtx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *SystemHandler) snapshot(c *gin.Context) healthSnapshot {
	snap := healthSnapshot{
		Timestamp:     time.Now().Unix(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
	}

	if idle, total, err := readCPUStat(); err == nil && total > h.prevTotal {
		idleDelta := float64(idle - h.prevIdle)
		totalDelta := float64(total - h.prevTotal)
		snap.CPUPercent = (1 - idleDelta/totalDelta) * 100
		h.prevIdle = idle
		h.prevTotal = total
	}

	if total, available, err := readMemInfo(); err == nil && total > 0 {
		snap.MemTotalBytes = total
		snap.MemUsedBytes = total - available
	}

	snap.LoadAvg1, _ = readLoadAvg1()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap.HeapAlloc = ms.HeapAlloc

	snap.AppRSSBytes, _ = readProcessRSS()

	if depth, err := h.rdb.LLen(c.Request.Context(), config.WorkerKey.PersistAuditQueue).Result(); err == nil {
		snap.QueueAudit = depth
	}

	return snap
}

// readCPUStat returns aggregate idle and total ticks from /proc/stat.
func readCPUStat() (idle, total uint64, err error) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0, 0, err
	}
	line := strings.SplitN(string(data), "\n", 2)[0]
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, fmt.Errorf("unexpected /proc/stat format")
	}
	for i := 1; i < len(fields); i++ {
		val, _ := strconv.ParseUint(fields[i], 10, 64)
		total += val
		if i == 4 {
			idle = val
		}
	}
	return idle, total, nil
}

// readMemInfo returns MemTotal and MemAvailable from /proc/meminfo, in
// bytes.
func readMemInfo() (total, available uint64, err error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	found := 0
	for scanner.Scan() && found < 2 {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = parseKBLine(line)
			found++
		case strings.HasPrefix(line, "MemAvailable:"):
			available = parseKBLine(line)
			found++
		}
	}
	return total, available, nil
}

// parseKBLine parses a "Label:  12345 kB" line into bytes.
func parseKBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	val, _ := strconv.ParseUint(fields[1], 10, 64)
	return val * 1024
}

// readLoadAvg1 returns the one-minute load average from /proc/loadavg.
func readLoadAvg1() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("unexpected /proc/loadavg format")
	}
	return strconv.ParseFloat(fields[0], 64)
}

// readProcessRSS returns this process's resident set size from
// /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseKBLine(line), nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}
