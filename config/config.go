// Package config loads the simulator's configuration, read once at startup
// and constant for the lifetime of a run (spec.md §6.5). Recognized
// environment variables mirror the original FlashSim config file options;
// an optional .env file can supply them via github.com/joho/godotenv, the
// way the teacher repository's go.mod already anticipates but never wires
// up.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every constant the device model and FTL engine need.
// Delay fields are in simulated microseconds.
type Config struct {
	PageSize int // bytes per page

	BlockSize int // pages per block (P)

	PackageSize int // number of packages in the device; one bus channel each
	DieSize     int // dies per package
	PlaneSize   int // planes per die

	NumberOfAddressableBlocks int

	OOBSize   int // bytes of OOB area per page
	EntrySize int // bytes per PMT entry; Q = OOBSize / EntrySize

	OOBReadDelay    float64
	RAMReadDelay    float64
	PageReadDelay   float64
	PageWriteDelay  float64
	BlockEraseDelay float64
	BusCtrlDelay    float64
	BusDataDelay    float64

	CacheDFTLLimit int // unused by MNFTL but shared config, per spec.md §6.5

	TraceDBPath string
	MonitorAddr string
}

// Default returns the baseline configuration used by the example drivers
// and the test suite, grounded on the delay magnitudes in
// original_source/ssd.h's extern const declarations.
func Default() Config {
	return Config{
		PageSize:                  4096,
		BlockSize:                 64,
		PackageSize:               2,
		DieSize:                   2,
		PlaneSize:                 2,
		NumberOfAddressableBlocks: 512,
		OOBSize:                   64,
		EntrySize:                 8,
		OOBReadDelay:              1.5,
		RAMReadDelay:              0.01,
		PageReadDelay:             15,
		PageWriteDelay:            100,
		BlockEraseDelay:           1500,
		BusCtrlDelay:              1,
		BusDataDelay:              10,
		CacheDFTLLimit:            32,
	}
}

// Load builds a Config from Default, optionally sourcing an envFile through
// godotenv first, then overlaying any of the recognized environment
// variables that are set.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.PageSize = envInt("PAGE_SIZE", cfg.PageSize)
	cfg.BlockSize = envInt("BLOCK_SIZE", cfg.BlockSize)
	cfg.PackageSize = envInt("PACKAGE_SIZE", cfg.PackageSize)
	cfg.DieSize = envInt("DIE_SIZE", cfg.DieSize)
	cfg.PlaneSize = envInt("PLANE_SIZE", cfg.PlaneSize)
	cfg.NumberOfAddressableBlocks = envInt(
		"NUMBER_OF_ADDRESSABLE_BLOCKS", cfg.NumberOfAddressableBlocks)
	cfg.OOBSize = envInt("MNFTL_OOB_SIZE", cfg.OOBSize)
	cfg.EntrySize = envInt("MNFTL_ENTRY_SIZE", cfg.EntrySize)
	cfg.OOBReadDelay = envFloat("OOB_READ_DELAY", cfg.OOBReadDelay)
	cfg.RAMReadDelay = envFloat("RAM_READ_DELAY", cfg.RAMReadDelay)
	cfg.PageReadDelay = envFloat("PAGE_READ_DELAY", cfg.PageReadDelay)
	cfg.PageWriteDelay = envFloat("PAGE_WRITE_DELAY", cfg.PageWriteDelay)
	cfg.BlockEraseDelay = envFloat("BLOCK_ERASE_DELAY", cfg.BlockEraseDelay)
	cfg.BusCtrlDelay = envFloat("BUS_CTRL_DELAY", cfg.BusCtrlDelay)
	cfg.BusDataDelay = envFloat("BUS_DATA_DELAY", cfg.BusDataDelay)
	cfg.CacheDFTLLimit = envInt("CACHE_DFTL_LIMIT", cfg.CacheDFTLLimit)
	cfg.TraceDBPath = os.Getenv("MNFTL_TRACE_DB")
	cfg.MonitorAddr = os.Getenv("MNFTL_MONITOR_ADDR")

	if cfg.EntrySize <= 0 {
		return Config{}, fmt.Errorf("config: MNFTL_ENTRY_SIZE must be positive")
	}

	return cfg, nil
}

// Q returns the number of PMT slots per OOB region.
func (c Config) Q() int {
	return c.OOBSize / c.EntrySize
}

// NumPMD returns the number of PMT fragments covering one logical block.
func (c Config) NumPMD() int {
	q := c.Q()
	return (c.BlockSize + q - 1) / q
}

// NumChannels returns the number of independent bus channels the device
// model contends on: one per package, matching original_source/ssd.h's
// Bus sized to SSD_SIZE (package count). Blocks are nested DieSize dies
// per package and PlaneSize planes per die (device.buildHierarchy).
func (c Config) NumChannels() int {
	if c.PackageSize <= 0 {
		return 1
	}
	return c.PackageSize
}

func envInt(name string, fallback int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(name string, fallback float64) float64 {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}
