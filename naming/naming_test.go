package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captureTime = time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC)

func TestBackendValidate(t *testing.T) {
	assert.NoError(t, BackendSim.Validate())
	assert.NoError(t, BackendSerial.Validate())
	assert.NoError(t, BackendUSB.Validate())
	assert.Error(t, Backend("trng").Validate())
	assert.Error(t, Backend("").Validate())
}

func TestBuildBaseName(t *testing.T) {
	name, err := BuildBaseName(captureTime, BackendSim, 64, 2)
	require.NoError(t, err)
	assert.Equal(t, "20260828T143005_sim_w64_i2", name)

	_, err = BuildBaseName(captureTime, BackendSim, 0, 2)
	assert.Error(t, err)
	_, err = BuildBaseName(captureTime, BackendSim, 64, 0)
	assert.Error(t, err)
	_, err = BuildBaseName(captureTime, Backend("bogus"), 64, 2)
	assert.Error(t, err)
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "base.bin", WithExt("base", "bin"))
	assert.Equal(t, "base.bin", WithExt("base", ".bin"))
	assert.Equal(t, "base", WithExt("base", ""))
}

func TestCapturePaths(t *testing.T) {
	bin, csv, err := CapturePaths("data", captureTime, BackendUSB, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "20260828T143005_usb_w8_i1.bin"), bin)
	assert.Equal(t, filepath.Join("data", "20260828T143005_usb_w8_i1.csv"), csv)

	bin, csv, err = CapturePaths("", captureTime, BackendSerial, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, "20260828T143005_serial_w8_i1.bin", bin)
	assert.Equal(t, "20260828T143005_serial_w8_i1.csv", csv)
}
