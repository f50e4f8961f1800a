package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReads(t *testing.T) {
	s := NewStream([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	b, err := s.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)

	v16, err := s.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), v16)

	v32, err := s.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04050607), v32)

	assert.Equal(t, 7, s.Position())
	assert.Equal(t, 1, s.Remaining())

	_, err = s.U16()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestStreamBytesAndSkip(t *testing.T) {
	s := NewStream([]byte{0xaa, 0xbb, 0xcc, 0xdd})

	got, err := s.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb}, got)

	require.NoError(t, s.Skip(1))
	assert.ErrorIs(t, s.Skip(2), ErrUnexpectedEOF)

	_, err = s.Bytes(-1)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}
