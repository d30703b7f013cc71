package blockarena

import (
	"bytes"
	"fmt"
	"io"
)

// SnapshotReader is a read-only, seekable stream over a copy of a block's bytes.
//
// It is not safe for concurrent use.
type SnapshotReader struct {
	data []byte
	r    *bytes.Reader
}

var (
	_ io.ReadSeeker  = (*SnapshotReader)(nil)
	_ io.ReaderAt    = (*SnapshotReader)(nil)
	_ io.ByteScanner = (*SnapshotReader)(nil)
	_ io.WriterTo    = (*SnapshotReader)(nil)
)

// NewSnapshotReader returns a reader over data. data must not be modified afterwards.
func NewSnapshotReader(data []byte) *SnapshotReader {
	return &SnapshotReader{data: data, r: bytes.NewReader(data)}
}

// Read implements io.Reader.
func (s *SnapshotReader) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// ReadByte implements io.ByteReader.
func (s *SnapshotReader) ReadByte() (byte, error) {
	return s.r.ReadByte()
}

// UnreadByte implements io.ByteScanner.
func (s *SnapshotReader) UnreadByte() error {
	if err := s.r.UnreadByte(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// ReadAt implements io.ReaderAt.
func (s *SnapshotReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrIO, off)
	}
	return s.r.ReadAt(p, off)
}

// Seek implements io.Seeker. Seeking before the start fails with ErrIO;
// seeking past the end is allowed and subsequent reads return io.EOF.
func (s *SnapshotReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.Position() + offset
	case io.SeekEnd:
		abs = s.Size() + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrIO, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrIO, abs)
	}
	return s.r.Seek(abs, io.SeekStart)
}

// WriteTo implements io.WriterTo.
func (s *SnapshotReader) WriteTo(w io.Writer) (int64, error) {
	return s.r.WriteTo(w)
}

// Position returns the current read position.
func (s *SnapshotReader) Position() int64 {
	pos, _ := s.r.Seek(0, io.SeekCurrent)
	return pos
}

// Len returns the number of unread bytes.
func (s *SnapshotReader) Len() int {
	return s.r.Len()
}

// Size returns the length of the snapshot.
func (s *SnapshotReader) Size() int64 {
	return int64(len(s.data))
}

// ByteAt returns the snapshot byte at index i without moving the read position.
func (s *SnapshotReader) ByteAt(i int) (byte, error) {
	if i < 0 || i >= len(s.data) {
		return 0, fmt.Errorf("%w: index %d in snapshot of %d bytes", ErrOutOfRange, i, len(s.data))
	}
	return s.data[i], nil
}
