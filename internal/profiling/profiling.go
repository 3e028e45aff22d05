package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler. Safe to call from build workers; their
// time is attributed to whatever frame is current when they finish.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	frameCalls  = make(map[string]int)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		frameCalls[name]++
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	clear(frameCalls)
	mu.Unlock()
}

// Entry is the accumulated time of one tracked name.
type Entry struct {
	Name  string
	Total time.Duration
	Calls int
}

// Snapshot returns the current per-frame totals, slowest first.
func Snapshot() []Entry {
	mu.Lock()
	out := make([]Entry, 0, len(frameTotals))
	for k, v := range frameTotals {
		out = append(out, Entry{Name: k, Total: v, Calls: frameCalls[k]})
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats top N durations from the current frame totals.
// Example: "streaming.Scheduler.Update:4.2ms, meshing.Build:2.1ms(x3)"
func TopN(n int) string {
	list := Snapshot()
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		s := e.Name + ":" + formatMs(e.Total)
		if e.Calls > 1 {
			s += "(x" + strconv.Itoa(e.Calls) + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops ".0".
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
