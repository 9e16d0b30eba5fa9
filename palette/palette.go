// SPDX-License-Identifier: GPL-2.0-or-later

package palette

import (
	"github.com/pkg/errors"

	"kwark/binread"
)

const (
	// Entry is the pack entry holding the game palette.
	Entry = "gfx/palette.lmp"

	// SkinTransparent is the index alias model skins use as transparency key.
	SkinTransparent = 208

	size = 256 * 3
)

var ErrSize = errors.New("palette has wrong size")

// Palette holds 256 rgb triples. It is never modified after loading.
type Palette [256][3]byte

// Source is anything that can resolve a pack entry, *pack.Pack and
// *pack.Search both are.
type Source interface {
	Reader(name string) (*binread.Reader, error)
}

// Load reads gfx/palette.lmp from src.
func Load(src Source) (*Palette, error) {
	r, err := src.Reader(Entry)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't load palette")
	}
	b, err := r.Bytes(0, size)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't load palette")
	}
	if r.Size() != size {
		return nil, errors.Wrapf(ErrSize, "%d bytes", r.Size())
	}
	return FromBytes(b)
}

func FromBytes(b []byte) (*Palette, error) {
	if len(b) != size {
		return nil, errors.Wrapf(ErrSize, "%d bytes", len(b))
	}
	p := &Palette{}
	for i := range p {
		copy(p[i][:], b[i*3:i*3+3])
	}
	return p, nil
}

// RGBA expands the palette indices into dst, which must hold 4 bytes per
// index. All pixels are opaque.
func (p *Palette) RGBA(dst []byte, indices []byte) {
	for i, c := range indices {
		pixel := p[c]
		d := dst[i*4 : i*4+4]
		d[0] = pixel[0]
		d[1] = pixel[1]
		d[2] = pixel[2]
		d[3] = 255
	}
}

// RGBAKeyed works like RGBA but pixels with index key get alpha 0.
func (p *Palette) RGBAKeyed(dst []byte, indices []byte, key byte) {
	p.RGBA(dst, indices)
	for i, c := range indices {
		if c == key {
			dst[i*4+3] = 0
		}
	}
}
