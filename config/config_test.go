package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lynxx9/MNFTL/config"
)

func TestDefaultDerivedFields(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 8, cfg.Q())
	assert.Equal(t, 8, cfg.NumPMD())
	assert.Equal(t, 2, cfg.NumChannels())
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	os.Setenv("BLOCK_SIZE", "32")
	os.Setenv("MNFTL_ENTRY_SIZE", "16")
	defer os.Unsetenv("BLOCK_SIZE")
	defer os.Unsetenv("MNFTL_ENTRY_SIZE")

	cfg, err := config.Load("")
	assert.NoError(t, err)
	assert.Equal(t, 32, cfg.BlockSize)
	assert.Equal(t, 4, cfg.Q())
}

func TestLoadOverlaysBusDelays(t *testing.T) {
	os.Setenv("BUS_CTRL_DELAY", "2.5")
	os.Setenv("BUS_DATA_DELAY", "20")
	defer os.Unsetenv("BUS_CTRL_DELAY")
	defer os.Unsetenv("BUS_DATA_DELAY")

	cfg, err := config.Load("")
	assert.NoError(t, err)
	assert.Equal(t, 2.5, cfg.BusCtrlDelay)
	assert.Equal(t, 20.0, cfg.BusDataDelay)
}

func TestLoadRejectsZeroEntrySize(t *testing.T) {
	os.Setenv("MNFTL_ENTRY_SIZE", "0")
	defer os.Unsetenv("MNFTL_ENTRY_SIZE")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestNumChannelsFloorsAtOne(t *testing.T) {
	cfg := config.Default()
	cfg.PackageSize = 0
	assert.Equal(t, 1, cfg.NumChannels())
}
