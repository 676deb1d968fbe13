package stats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lynxx9/MNFTL/stats"
)

func TestTraceWriterFlushesToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.sqlite3")

	w := stats.NewTraceWriter(dbPath)
	require.NoError(t, w.Init())

	w.Write(stats.TraceEvent{Kind: "WRITE", LogicalAddress: 1, PhysicalPage: 0, TimeTaken: 100})
	w.Write(stats.TraceEvent{Kind: "READ", LogicalAddress: 1, PhysicalPage: 0, TimeTaken: 16.5})
	require.NoError(t, w.Close())

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
