// SPDX-License-Identifier: GPL-2.0-or-later

package binread

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReaderAt struct{}

func (failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadRelativeToBase(t *testing.T) {
	data := []byte{0xff, 0xff, 1, 0, 0, 0, 2, 0, 0, 0}
	r := New(bytes.NewReader(data), 2, 8)

	v, err := r.Int32(4)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	var pair [2]int32
	require.NoError(t, r.Read(0, &pair))
	assert.Equal(t, [2]int32{1, 2}, pair)
}

func TestShortRead(t *testing.T) {
	r := New(bytes.NewReader([]byte{1, 2, 3}), 0, 3)
	_, err := r.Int32(0)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestSizeLargerThanData(t *testing.T) {
	// the declared range is bigger than the backing data
	r := New(bytes.NewReader([]byte{1, 2}), 0, 8)
	_, err := r.Bytes(0, 4)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestCheckCount(t *testing.T) {
	r := New(bytes.NewReader(make([]byte, 16)), 0, 16)
	assert.NoError(t, r.CheckCount(0, 4, 4))
	assert.ErrorIs(t, r.CheckCount(4, 4, 4), ErrTruncated)
	assert.ErrorIs(t, r.CheckCount(0, -1, 4), ErrTruncated)
}

func TestSub(t *testing.T) {
	r := New(bytes.NewReader([]byte{0, 0, 0, 0, 7, 0, 0, 0}), 0, 8)
	s, err := r.Sub(4, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Base())
	v, err := s.Int32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	_, err = r.Sub(6, 4)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFileError(t *testing.T) {
	r := New(failingReaderAt{}, 0, 4)
	_, err := r.Bytes(0, 4)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Op)
}

func TestString(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte{'s', 'k', 'y', 0, 'x'}, "sky"},
		{[]byte{'a', 'b'}, "ab"},
		{[]byte{0, 'a'}, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, String(tc.in))
	}
}
