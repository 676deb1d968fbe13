package stats

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// TraceEvent is one row written to the trace database: a single
// FTL-level read/write/trim/cleanup with its logical/physical addresses and
// accumulated latency. Grounded on the teacher's tracing.Task row shape.
type TraceEvent struct {
	ID             string
	Kind           string
	LogicalAddress uint64
	PhysicalPage   int64
	StartTime      float64
	TimeTaken      float64
	Noop           bool
}

// TraceWriter batches TraceEvents and flushes them to a SQLite database,
// grounded on the teacher's tracing.SQLiteTraceWriter.
type TraceWriter struct {
	db        *sql.DB
	statement *sql.Stmt

	path      string
	batchSize int
	pending   []TraceEvent
}

// NewTraceWriter creates a writer targeting the SQLite file at path. If
// path is empty, a unique name is generated the way the teacher's
// SQLiteTraceWriter falls back to an xid-derived filename.
func NewTraceWriter(path string) *TraceWriter {
	if path == "" {
		path = "mnftl_trace_" + xid.New().String() + ".sqlite3"
	}

	w := &TraceWriter{path: path, batchSize: 1000}
	atexit.Register(func() { w.Flush() })

	return w
}

// Init opens the database and creates the trace table.
func (w *TraceWriter) Init() error {
	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return fmt.Errorf("stats: opening trace db %s: %w", w.path, err)
	}
	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS trace (
			event_id   TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			lpn        INTEGER NOT NULL,
			ppn        INTEGER NOT NULL,
			start_time REAL NOT NULL,
			time_taken REAL NOT NULL,
			noop       INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("stats: creating trace table: %w", err)
	}

	stmt, err := w.db.Prepare(
		`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("stats: preparing trace insert: %w", err)
	}
	w.statement = stmt

	return nil
}

// Write buffers a trace event, flushing once the batch fills.
func (w *TraceWriter) Write(event TraceEvent) {
	if event.ID == "" {
		event.ID = xid.New().String()
	}

	w.pending = append(w.pending, event)
	if len(w.pending) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all buffered events to the database.
func (w *TraceWriter) Flush() {
	if len(w.pending) == 0 || w.db == nil {
		return
	}

	tx, err := w.db.Begin()
	if err != nil {
		return
	}

	stmt := tx.Stmt(w.statement)
	for _, e := range w.pending {
		noop := 0
		if e.Noop {
			noop = 1
		}

		_, err := stmt.Exec(e.ID, e.Kind, e.LogicalAddress, e.PhysicalPage,
			e.StartTime, e.TimeTaken, noop)
		if err != nil {
			_ = tx.Rollback()
			return
		}
	}

	_ = tx.Commit()
	w.pending = nil
}

// Close flushes and closes the underlying database handle.
func (w *TraceWriter) Close() error {
	w.Flush()
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
