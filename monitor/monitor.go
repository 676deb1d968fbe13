// Package monitor exposes an optional HTTP status endpoint for a running
// benchmark driver, gated by config.MonitorAddr (spec.md §6.5's
// MNFTL_MONITOR_ADDR). Grounded on the teacher's monitoring.Monitor
// (monitoring/monitor.go): the same net/http + gorilla/mux
// listen-in-a-goroutine shape, pared down to the two things a synchronous,
// non-interactive CLI driver can usefully expose — a stats snapshot and an
// on-demand CPU profile capture — since MNFTL has no sim.Engine to
// pause/continue/tick the way the teacher's dashboard does.
package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"time"

	"github.com/gorilla/mux"

	"github.com/Lynxx9/MNFTL/stats"
)

// Monitor serves a JSON stats snapshot and an on-demand CPU profile over
// HTTP while a benchmark driver runs.
type Monitor struct {
	addr     string
	recorder *stats.Recorder
	listener net.Listener
}

// New builds a Monitor that reports recorder's counters at addr. It does
// not start listening until Start is called.
func New(addr string, recorder *stats.Recorder) *Monitor {
	return &Monitor{addr: addr, recorder: recorder}
}

// Start binds the listener and begins serving in a background goroutine,
// returning only once the bind has succeeded so a caller can log the
// actual address (useful when addr requests an ephemeral port).
func (m *Monitor) Start() error {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.handleStats)
	r.HandleFunc("/api/profile", m.handleProfile)

	listener, err := net.Listen("tcp", m.addr)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	m.listener = listener

	fmt.Fprintf(os.Stderr, "mnftlsim: monitoring at http://%s\n", listener.Addr())

	go func() {
		if err := http.Serve(listener, r); err != nil {
			log.Printf("mnftlsim: monitor server stopped: %v", err)
		}
	}()

	return nil
}

// Addr returns the address the listener is bound to, once Start has
// succeeded; useful when addr requested an ephemeral port (":0").
func (m *Monitor) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Close stops accepting new connections on the monitor's listener.
func (m *Monitor) Close() error {
	if m.listener == nil {
		return nil
	}
	return m.listener.Close()
}

func (m *Monitor) handleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.recorder.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Printf("mnftlsim: encoding stats: %v", err)
	}
}

// handleProfile captures one second of CPU profile and streams the pprof
// binary straight back, the way the teacher's collectProfile captures one
// before reparsing it for a JSON dashboard; this monitor has no dashboard
// to feed, so the raw profile bytes are the response.
func (m *Monitor) handleProfile(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	if err := pprof.StartCPUProfile(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()
}
