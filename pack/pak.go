// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
)

var (
	ErrNotPack        = errors.New("not a pack")
	ErrDuplicateEntry = errors.New("files in pack are not unique")
	// ErrNotFound wraps os.ErrNotExist so both can be matched.
	ErrNotFound = errors.Wrap(os.ErrNotExist, "no such entry")
)

const (
	headerSize = 12
	entrySize  = 64 // Sizeof(entry)
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

// Entry is one named byte range of the archive.
type Entry struct {
	Name   string
	Offset int64
	Size   int64
}

type Pack struct {
	r       io.ReaderAt
	closer  io.Closer
	size    int64
	name    string
	entries []Entry
	files   map[string]int
}

// Open opens the pack file at path and reads its directory. The file stays
// open until Close.
func Open(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &binread.FileError{Op: "open", Path: path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &binread.FileError{Op: "stat", Path: path, Err: err}
	}
	p, err := NewReader(f, fi.Size(), path)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// NewReader reads the pack directory from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64, name string) (*Pack, error) {
	p := &Pack{r: r, size: size, name: name}
	if err := p.init(); err != nil {
		return nil, errors.Wrapf(err, "pack %s", name)
	}
	return p, nil
}

func (p *Pack) init() error {
	br := binread.New(p.r, 0, p.size)
	var h header
	if err := br.Read(0, &h); err != nil {
		return err
	}
	if !bytes.Equal([]byte("PACK"), h.ID[:]) {
		return ErrNotPack
	}
	filenum := int64(h.Size) / entrySize
	if err := br.CheckCount(int64(h.Offset), filenum, entrySize); err != nil {
		return errors.Wrap(err, "directory")
	}
	raw := make([]entry, filenum)
	if err := br.Read(int64(h.Offset), raw); err != nil {
		return errors.Wrap(err, "directory")
	}
	p.entries = make([]Entry, 0, filenum)
	p.files = make(map[string]int, filenum)
	for _, e := range raw {
		name := binread.String(e.Name[:])
		if _, ok := p.files[name]; ok {
			return errors.Wrap(ErrDuplicateEntry, name)
		}
		p.files[name] = len(p.entries)
		p.entries = append(p.entries, Entry{
			Name:   name,
			Offset: int64(e.Offset),
			Size:   int64(e.Size),
		})
	}
	conlog.Debugf("pack %s: %d entries", p.name, len(p.entries))
	return nil
}

// Entry returns the directory record stored for name.
func (p *Pack) Entry(name string) (Entry, error) {
	i, ok := p.files[name]
	if !ok {
		return Entry{}, errors.Wrapf(ErrNotFound, "%s in %s", name, p.name)
	}
	return p.entries[i], nil
}

// Entries returns all entries in directory order.
func (p *Pack) Entries() []Entry {
	r := make([]Entry, len(p.entries))
	copy(r, p.entries)
	return r
}

// Names returns all entry names in directory order.
func (p *Pack) Names() []string {
	n := make([]string, len(p.entries))
	for i, e := range p.entries {
		n[i] = e.Name
	}
	return n
}

// Open returns a io.SectionReader with its own cursor over the entry.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	e, err := p.Entry(name)
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(p.r, e.Offset, e.Size), nil
}

// Reader returns an entry relative binread.Reader. The entry must lie inside
// the pack.
func (p *Pack) Reader(name string) (*binread.Reader, error) {
	e, err := p.Entry(name)
	if err != nil {
		return nil, err
	}
	if e.Offset < 0 || e.Size < 0 || e.Offset+e.Size > p.size {
		return nil, errors.Wrapf(binread.ErrTruncated, "entry %s [%d,%d) outside of pack", name, e.Offset, e.Offset+e.Size)
	}
	return binread.New(p.r, e.Offset, e.Size), nil
}

// ReadFile returns the contents of the entry.
func (p *Pack) ReadFile(name string) ([]byte, error) {
	r, err := p.Reader(name)
	if err != nil {
		return nil, err
	}
	return r.Bytes(0, r.Size())
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Write writes a pack holding files in the given order. It is the inverse of
// NewReader and mostly useful to build test fixtures.
func Write(w io.Writer, names []string, files map[string][]byte) error {
	offset := int32(headerSize)
	for _, n := range names {
		offset += int32(len(files[n]))
	}
	h := header{ID: [4]byte{'P', 'A', 'C', 'K'}, Offset: offset, Size: int32(len(names) * entrySize)}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	dir := make([]entry, 0, len(names))
	pos := int32(headerSize)
	for _, n := range names {
		if len(n) >= 56 {
			return errors.Errorf("name %q too long", n)
		}
		if _, err := w.Write(files[n]); err != nil {
			return err
		}
		e := entry{Offset: pos, Size: int32(len(files[n]))}
		copy(e.Name[:], n)
		dir = append(dir, e)
		pos += e.Size
	}
	return binary.Write(w, binary.LittleEndian, dir)
}
