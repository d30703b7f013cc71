package blockarena

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotReader_ReadAndSeek(t *testing.T) {
	r := NewSnapshotReader([]byte("arena-block"))
	assert.Equal(t, int64(11), r.Size())
	assert.Equal(t, 11, r.Len())

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "arena", string(buf))
	assert.Equal(t, int64(5), r.Position())

	pos, err := r.Seek(1, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "block", string(rest))

	pos, err = r.Seek(-5, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	c, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), c)
	require.NoError(t, r.UnreadByte())
	assert.Equal(t, int64(6), r.Position())

	pos, err = r.Seek(11, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos)
	_, err = r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSnapshotReader_SeekErrors(t *testing.T) {
	r := NewSnapshotReader(make([]byte, 8))

	_, err := r.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, ErrIO)

	_, err = r.Seek(-9, io.SeekEnd)
	require.ErrorIs(t, err, ErrIO)

	_, err = r.Seek(-1, io.SeekCurrent)
	require.ErrorIs(t, err, ErrIO)

	_, err = r.Seek(0, 42)
	require.ErrorIs(t, err, ErrIO)

	require.ErrorIs(t, r.UnreadByte(), ErrIO)

	assert.Equal(t, int64(0), r.Position(), "failed seeks keep the position")
}

func TestSnapshotReader_ReadAtAndByteAt(t *testing.T) {
	r := NewSnapshotReader([]byte{10, 11, 12, 13})

	buf := make([]byte, 2)
	n, err := r.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{12, 13}, buf)
	assert.Equal(t, int64(0), r.Position())

	_, err = r.ReadAt(buf, -1)
	require.ErrorIs(t, err, ErrIO)

	v, err := r.ByteAt(3)
	require.NoError(t, err)
	assert.Equal(t, byte(13), v)

	_, err = r.ByteAt(4)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = r.ByteAt(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestSnapshotReader_WriteTo(t *testing.T) {
	r := NewSnapshotReader([]byte("payload"))

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", buf.String())
	assert.Equal(t, 0, r.Len())
}
