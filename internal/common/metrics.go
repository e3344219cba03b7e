package common

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	mu         sync.Mutex
	start      time.Time
	end        time.Time
	bytes      int64
	totalBytes int64
	tags       int64
	resyncs    int64
	dropped    int64
	written    int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Start() {
	m.mu.Lock()
	if m.start.IsZero() {
		m.start = time.Now()
		m.end = time.Time{}
	}
	m.mu.Unlock()
}

func (m *Metrics) Stop() {
	m.mu.Lock()
	if !m.start.IsZero() && m.end.IsZero() {
		m.end = time.Now()
	}
	m.mu.Unlock()
}

// AddTag records one validated tag of the given on-disk size.
func (m *Metrics) AddTag(size int64) {
	if size <= 0 {
		return
	}
	m.mu.Lock()
	m.bytes += size
	m.tags++
	m.mu.Unlock()
}

func (m *Metrics) AddBytes(n int64) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.bytes += n
	m.mu.Unlock()
}

func (m *Metrics) AddWritten(n int64) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.written += n
	m.mu.Unlock()
}

func (m *Metrics) IncResync() {
	m.mu.Lock()
	m.resyncs++
	m.mu.Unlock()
}

// IncDropped counts a structurally valid tag left out of the output.
func (m *Metrics) IncDropped() {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

// SetTotalBytes sets the denominator for Completion. Several walks over
// different buffers accumulate.
func (m *Metrics) SetTotalBytes(total int64) {
	if total < 0 {
		total = 0
	}
	m.mu.Lock()
	m.totalBytes += total
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Duration:   m.elapsedLocked(),
		Bytes:      m.bytes,
		TotalBytes: m.totalBytes,
		Tags:       m.tags,
		Resyncs:    m.resyncs,
		Dropped:    m.dropped,
		Written:    m.written,
	}
}

func (m *Metrics) elapsedLocked() time.Duration {
	if m.start.IsZero() {
		return 0
	}
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

// WriteTextfile exports the current snapshot in the Prometheus text format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path, op string) error {
	snap := m.Snapshot()
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"op": op}
	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flvgate",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}
	gauge("tags_total", "Tags validated during the last run.", float64(snap.Tags))
	gauge("scanned_bytes_total", "Input bytes scanned during the last run.", float64(snap.Bytes))
	gauge("input_bytes", "Total size of the inputs of the last run.", float64(snap.TotalBytes))
	gauge("resyncs_total", "One-byte resynchronisation steps during the last run.", float64(snap.Resyncs))
	gauge("dropped_tags_total", "Valid tags dropped during the last run.", float64(snap.Dropped))
	gauge("written_bytes_total", "Bytes written to the output during the last run.", float64(snap.Written))
	gauge("duration_seconds", "Wall time of the last run.", snap.Duration.Seconds())
	gauge("last_run_timestamp_seconds", "Completion time of the last run.", float64(time.Now().Unix()))
	return prometheus.WriteToTextfile(path, reg)
}

type MetricsSnapshot struct {
	Duration   time.Duration
	Bytes      int64
	TotalBytes int64
	Tags       int64
	Resyncs    int64
	Dropped    int64
	Written    int64
}

func (s MetricsSnapshot) ThroughputBytesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Duration.Seconds()
}

func (s MetricsSnapshot) Completion() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	ratio := float64(s.Bytes) / float64(s.TotalBytes)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div := float64(unit)
	exp := 0
	for n := float64(b) / div; n >= unit && exp < 6; n /= unit {
		div *= unit
		exp++
	}
	prefixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.2f %s", float64(b)/div, prefixes[exp])
}

func formatProgressLine(s MetricsSnapshot) string {
	throughput := s.ThroughputBytesPerSecond() / (1024 * 1024)
	if s.TotalBytes > 0 {
		pct := s.Completion() * 100
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			pct = 0
		}
		return fmt.Sprintf("Progress: %6.2f%% (%s / %s) %d tags %.2f MiB/s", pct, FormatBytes(s.Bytes), FormatBytes(s.TotalBytes), s.Tags, throughput)
	}
	return fmt.Sprintf("Processed: %s %.2f MiB/s", FormatBytes(s.Bytes), throughput)
}

func StartProgressPrinter(w io.Writer, m *Metrics, interval time.Duration) func() {
	if m == nil || w == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		lastLen := 0
		for {
			select {
			case <-ticker.C:
				line := formatProgressLine(m.Snapshot())
				pad := lastLen - len(line)
				if pad > 0 {
					line += strings.Repeat(" ", pad)
				}
				fmt.Fprintf(w, "\r%s", line)
				lastLen = len(line)
			case <-done:
				if lastLen > 0 {
					fmt.Fprintf(w, "\r%s\r\n", strings.Repeat(" ", lastLen))
				}
				return
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}
