package ftlpage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lynxx9/MNFTL/blockmgr"
	"github.com/Lynxx9/MNFTL/config"
	"github.com/Lynxx9/MNFTL/device"
	"github.com/Lynxx9/MNFTL/ftlevent"
	"github.com/Lynxx9/MNFTL/ftlpage"
	"github.com/Lynxx9/MNFTL/stats"
)

func newEngine(t *testing.T) (*ftlpage.Engine, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.BlockSize = 8
	cfg.NumberOfAddressableBlocks = 2

	nand := device.New(cfg)
	mgr := blockmgr.New(nand)
	engine := ftlpage.New(cfg, nand, mgr, stats.New())
	mgr.SetFtl(engine)
	return engine, cfg
}

func TestWriteThenRead(t *testing.T) {
	engine, _ := newEngine(t)

	write := ftlevent.New(ftlevent.Write, 3, 1, 0)
	require.NoError(t, engine.Write(write))

	read := ftlevent.New(ftlevent.Read, 3, 1, 1)
	require.NoError(t, engine.Read(read))
	require.False(t, read.Noop())
	require.Equal(t, write.Address(), read.Address())
}

func TestUnmappedReadIsNoop(t *testing.T) {
	engine, _ := newEngine(t)

	read := ftlevent.New(ftlevent.Read, 0, 1, 0)
	require.NoError(t, engine.Read(read))
	require.True(t, read.Noop())
}

func TestOverflowOpensSecondBlock(t *testing.T) {
	engine, cfg := newEngine(t)

	for lpn := uint64(0); lpn < uint64(cfg.BlockSize); lpn++ {
		event := ftlevent.New(ftlevent.Write, lpn, 1, float64(lpn))
		require.NoError(t, engine.Write(event))
	}

	overflow := ftlevent.New(ftlevent.Write, uint64(cfg.BlockSize), 1, 8)
	require.NoError(t, engine.Write(overflow))
	require.Len(t, engine.CurrentBlocks(), 1)
}
