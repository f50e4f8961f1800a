// Java class file data stream reader.
// All multi-byte quantities in a class file are big-endian.
package classfile

import (
	"encoding/binary"
	"errors"
)

var ErrUnexpectedEOF = errors.New("classfile: unexpected end of data")

// Stream reads class file data with a moving cursor.
type Stream struct {
	data []byte
	pos  int
}

// NewStream creates a stream over the given data.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// Position returns the current read position.
func (s *Stream) Position() int { return s.pos }

// Remaining returns bytes left to read.
func (s *Stream) Remaining() int { return len(s.data) - s.pos }

// U8 reads a single byte.
func (s *Stream) U8() (uint8, error) {
	if s.pos >= len(s.data) {
		return 0, ErrUnexpectedEOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// U16 reads a big-endian uint16.
func (s *Stream) U16() (uint16, error) {
	if s.pos+2 > len(s.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// U32 reads a big-endian uint32.
func (s *Stream) U32() (uint32, error) {
	if s.pos+4 > len(s.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(s.data[s.pos:])
	s.pos += 4
	return v, nil
}

// U64 reads a big-endian uint64.
func (s *Stream) U64() (uint64, error) {
	if s.pos+8 > len(s.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(s.data[s.pos:])
	s.pos += 8
	return v, nil
}

// Bytes reads n bytes into a new slice.
func (s *Stream) Bytes(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.data) {
		return nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, s.data[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// Skip advances the position by n bytes.
func (s *Stream) Skip(n int) error {
	if n < 0 || s.pos+n > len(s.data) {
		return ErrUnexpectedEOF
	}
	s.pos += n
	return nil
}
