package cmd

import (
	"fmt"

	"github.com/Lynxx9/MNFTL/blockmgr"
	"github.com/Lynxx9/MNFTL/config"
	"github.com/Lynxx9/MNFTL/device"
	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
	"github.com/Lynxx9/MNFTL/ftlpage"
	"github.com/Lynxx9/MNFTL/mnftl"
	"github.com/Lynxx9/MNFTL/monitor"
	"github.com/Lynxx9/MNFTL/stats"
)

// arrivalGap is the fixed 1.0 microsecond gap spec.md §6.6 mandates between
// successive driver-issued events.
const arrivalGap = 1.0

// runner wires a device, block manager, FTL variant, and stats recorder
// into the stack a benchmark driver replays events against.
type runner struct {
	cfg      config.Config
	ssd      *device.SSD
	recorder *stats.Recorder
	tracer   *stats.TraceWriter
	monitor  *monitor.Monitor
	now      float64
}

// newRunner builds the full stack named in spec.md §2: a NAND device, a
// BlockManager over it, and the requested Ftl variant wired to both,
// exactly mirroring how mnftl.Engine and blockmgr.Manager resolve their
// construction cycle in production use.
func newRunner() (*runner, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("mnftlsim: %w", err)
	}

	nand := device.New(cfg)
	recorder := stats.New()
	mgr := blockmgr.New(nand)

	var impl ftl.Ftl
	switch ftlFlag {
	case "mnftl", "":
		impl = mnftl.New(cfg, nand, mgr, recorder)
	case "ftlpage":
		impl = ftlpage.New(cfg, nand, mgr, recorder)
	default:
		return nil, fmt.Errorf("mnftlsim: unknown --ftl variant %q", ftlFlag)
	}
	mgr.SetFtl(impl)

	ctrl := device.NewController(nand, impl)
	ssd := device.NewSSD(ctrl)

	r := &runner{cfg: cfg, ssd: ssd, recorder: recorder}

	dbPath := traceDB
	if dbPath == "" {
		dbPath = cfg.TraceDBPath
	}
	if dbPath != "" {
		tracer := stats.NewTraceWriter(dbPath)
		if err := tracer.Init(); err != nil {
			return nil, fmt.Errorf("mnftlsim: %w", err)
		}
		r.tracer = tracer
	}

	addr := monitorAddr
	if addr == "" {
		addr = cfg.MonitorAddr
	}
	if addr != "" {
		mon := monitor.New(addr, recorder)
		if err := mon.Start(); err != nil {
			return nil, fmt.Errorf("mnftlsim: %w", err)
		}
		r.monitor = mon
	}

	return r, nil
}

// issue sends one logical event at the next arrival-gap timestamp and
// records it.
func (r *runner) issue(t ftlevent.Type, lpn uint64) error {
	event := ftlevent.New(t, lpn, 1, r.now)
	r.now += arrivalGap

	err := r.ssd.EventArrive(event)
	if err != nil {
		r.recorder.IncrFailure()
	}

	if r.tracer != nil {
		r.tracer.Write(stats.TraceEvent{
			Kind:           t.String(),
			LogicalAddress: lpn,
			PhysicalPage:   int64(event.Address().Linear),
			StartTime:      event.StartTime,
			TimeTaken:      event.TimeTaken(),
			Noop:           event.Noop(),
		})
	}

	return err
}

// close flushes and closes the trace writer and monitor server, if present.
func (r *runner) close() {
	if r.tracer != nil {
		r.tracer.Close()
	}
	if r.monitor != nil {
		r.monitor.Close()
	}
}

// datasetPages converts a dataset size in megabytes to a page count under
// the runner's configured page size.
func (r *runner) datasetPages(datasetMB int) uint64 {
	bytesPerPage := uint64(r.cfg.PageSize)
	total := uint64(datasetMB) * 1024 * 1024
	pages := total / bytesPerPage
	if pages == 0 {
		pages = 1
	}
	return pages
}

// printSummary reports the final counters the way the teacher's benchmark
// commands print a one-shot result to stdout.
func printSummary(name string, r *runner) {
	s := r.recorder.Snapshot()
	fmt.Printf("%s: reads=%d writes=%d trims=%d gc_blocks=%d valid_page_copies=%d failures=%d elapsed_us=%.2f\n",
		name, s.FTLRead, s.FTLWrite, s.FTLTrim, s.GCBlocksErased, s.ValidPageCopies,
		s.Failures, r.now)
}
