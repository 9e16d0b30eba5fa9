// SPDX-License-Identifier: GPL-2.0-or-later

// Package binread provides positioned little-endian reads against a byte
// range of an asset. Every Reader carries its own base offset and never
// touches a shared seek position, so readers on the same file can be used
// from different goroutines.
package binread

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedEOF is returned when fewer bytes than required are available.
	ErrUnexpectedEOF = errors.New("unexpected EOF")
	// ErrTruncated is returned when a declared count does not fit into the
	// remaining bytes. It is detected before anything is read.
	ErrTruncated = errors.New("truncated data")
)

// FileError wraps an open, seek or read failure of the underlying file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Reader struct {
	r    io.ReaderAt
	base int64
	size int64
}

// New returns a Reader for the size bytes of r starting at base.
func New(r io.ReaderAt, base, size int64) *Reader {
	return &Reader{r: r, base: base, size: size}
}

// Base returns the absolute offset of the first byte of the range.
func (r *Reader) Base() int64 {
	return r.base
}

// Size returns the length of the range.
func (r *Reader) Size() int64 {
	return r.size
}

// Sub returns a Reader for size bytes starting at off, relative to r.
func (r *Reader) Sub(off, size int64) (*Reader, error) {
	if off < 0 || size < 0 || off+size > r.size {
		return nil, errors.Wrapf(ErrTruncated, "range [%d,%d) outside of %d bytes", off, off+size, r.size)
	}
	return &Reader{r: r.r, base: r.base + off, size: size}, nil
}

// Section returns an independent io.SectionReader over the range.
func (r *Reader) Section() *io.SectionReader {
	return io.NewSectionReader(r.r, r.base, r.size)
}

// CheckCount verifies that count elements of elemSize bytes fit at off.
func (r *Reader) CheckCount(off, count, elemSize int64) error {
	if count < 0 {
		return errors.Wrapf(ErrTruncated, "negative count %d at %d", count, off)
	}
	if off < 0 || off > r.size || count*elemSize > r.size-off {
		return errors.Wrapf(ErrTruncated, "%d elements of %d bytes at %d exceed %d bytes", count, elemSize, off, r.size)
	}
	return nil
}

// Bytes reads exactly n bytes at off.
func (r *Reader) Bytes(off, n int64) ([]byte, error) {
	if n < 0 || off < 0 || off+n > r.size {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "read of %d bytes at %d, have %d", n, off, r.size)
	}
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	got, err := r.r.ReadAt(b, r.base+off)
	if got == len(b) {
		return b, nil
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "read of %d bytes at %d, got %d", n, off, got)
	}
	return nil, &FileError{Op: "read", Err: err}
}

// Read decodes data at off. data must be a fixed-size value as accepted by
// encoding/binary.
func (r *Reader) Read(off int64, data any) error {
	n := binary.Size(data)
	if n < 0 {
		return errors.Errorf("binread: %T has no fixed size", data)
	}
	b, err := r.Bytes(off, int64(n))
	if err != nil {
		return err
	}
	_, err = binary.Decode(b, binary.LittleEndian, data)
	return err
}

func (r *Reader) Int32(off int64) (int32, error) {
	b, err := r.Bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) Float32s(off int64, n int) ([]float32, error) {
	if err := r.CheckCount(off, int64(n), 4); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	return out, r.Read(off, out)
}

// String trims a fixed-size name field at the first NUL byte.
func String(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
