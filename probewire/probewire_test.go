package probewire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respFrame(status byte, reg uint8, val uint32) []byte {
	f := make([]byte, FrameLen)
	f[0] = respMagic
	f[1] = status
	f[2] = reg
	binary.LittleEndian.PutUint32(f[3:7], val)
	f[7] = checksum(f)
	return f
}

func TestRequestFrames(t *testing.T) {
	read := AppendReadFrame(nil, RegStatus)
	require.Len(t, read, FrameLen)
	assert.Equal(t, byte(reqMagic), read[0])
	assert.Equal(t, byte(OpRead), read[1])
	assert.Equal(t, byte(RegStatus), read[2])
	assert.Equal(t, checksum(read), read[7])

	write := AppendWriteFrame(nil, RegControl, 0xDEADBEEF)
	require.Len(t, write, FrameLen)
	assert.Equal(t, byte(OpWrite), write[1])
	assert.Equal(t, uint32(0xDEADBEEF), binary.LittleEndian.Uint32(write[3:7]))
	assert.Equal(t, checksum(write), write[7])

	// Appending must extend, not replace.
	both := AppendReadFrame(read, RegData)
	assert.Len(t, both, 2*FrameLen)
}

func TestParseResponse(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		v, err := ParseResponse(respFrame(respOK, RegData, 0x11223344), RegData)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x11223344), v)
	})

	t.Run("nack", func(t *testing.T) {
		_, err := ParseResponse(respFrame(respNack, RegData, 0), RegData)
		require.ErrorIs(t, err, ErrNack)
	})

	t.Run("short frame", func(t *testing.T) {
		_, err := ParseResponse([]byte{respMagic, respOK}, RegData)
		require.ErrorIs(t, err, ErrBadFrame)
	})

	t.Run("bad magic", func(t *testing.T) {
		f := respFrame(respOK, RegData, 1)
		f[0] = reqMagic
		f[7] = checksum(f)
		_, err := ParseResponse(f, RegData)
		require.ErrorIs(t, err, ErrBadFrame)
	})

	t.Run("bad checksum", func(t *testing.T) {
		f := respFrame(respOK, RegData, 1)
		f[7] ^= 0xFF
		_, err := ParseResponse(f, RegData)
		require.ErrorIs(t, err, ErrBadFrame)
	})

	t.Run("wrong register echo", func(t *testing.T) {
		_, err := ParseResponse(respFrame(respOK, RegStatus, 1), RegData)
		require.ErrorIs(t, err, ErrBadFrame)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := respFrame(0x7F, RegData, 0)
		_, err := ParseResponse(f, RegData)
		require.ErrorIs(t, err, ErrBadFrame)
	})
}
