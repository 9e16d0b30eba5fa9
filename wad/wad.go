// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad reads WAD2 archives such as gfx.wad, which hold the 2D
// pictures of the status bar, menus and console.
package wad

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
	"kwark/palette"
	"kwark/texture"
)

const (
	magic = 'W' | 'A'<<8 | 'D'<<16 | '2'<<24

	TypPalette    = 0x40
	TypQTex       = 0x41
	TypQPic       = 0x42 // 66
	TypSound      = 0x43
	TypMipTex     = 0x44
	TypConsolePic = 0x45
)

const (
	headerSize = 12
	lumpSize   = 32

	// PicTransparent is the color index drawn as transparent in 2D pictures.
	PicTransparent = 255

	consoleCharsLump = "conchars"
	consoleCharsSize = 128
)

var (
	ErrNotWad      = errors.New("not a WAD2 file")
	ErrNotFound    = errors.New("no such lump")
	ErrCompressed  = errors.New("compressed lump")
	ErrNotPicture  = errors.New("lump is not a picture")
	ErrPictureSize = errors.New("bad picture size")
)

type header struct {
	M          uint32
	EntryCount int32
	DirOffset  int32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [16]byte
}

type Lump struct {
	Name        string
	Type        byte
	Offset      int64
	Size        int64
	Compression byte
}

type Wad struct {
	r     *binread.Reader
	lumps []Lump
	index map[string]int
}

// Load reads the directory of the WAD2 file in r. Lump names are lower
// cased.
func Load(r *binread.Reader) (*Wad, error) {
	var h header
	if err := r.Read(0, &h); err != nil {
		return nil, errors.Wrap(err, "wad header")
	}
	if h.M != magic {
		return nil, ErrNotWad
	}
	if err := r.CheckCount(int64(h.DirOffset), int64(h.EntryCount), lumpSize); err != nil {
		return nil, errors.Wrap(err, "wad directory")
	}
	ls := make([]lump, h.EntryCount)
	if err := r.Read(int64(h.DirOffset), ls); err != nil {
		return nil, errors.Wrap(err, "wad directory")
	}
	w := &Wad{
		r:     r,
		lumps: make([]Lump, 0, len(ls)),
		index: make(map[string]int, len(ls)),
	}
	for _, l := range ls {
		if l.Offset < 0 || l.Size < 0 || int64(l.Offset)+int64(l.Size) > r.Size() {
			return nil, errors.Wrapf(binread.ErrTruncated, "lump %q", binread.String(l.Name[:]))
		}
		name := strings.ToLower(binread.String(l.Name[:]))
		w.index[name] = len(w.lumps)
		w.lumps = append(w.lumps, Lump{
			Name:        name,
			Type:        l.Typ,
			Offset:      int64(l.Offset),
			Size:        int64(l.Size),
			Compression: l.Compression,
		})
	}
	conlog.Debugf("wad: %d lumps", len(w.lumps))
	return w, nil
}

// Lumps returns the directory in file order.
func (w *Wad) Lumps() []Lump {
	return w.lumps
}

// Names returns the sorted lump names.
func (w *Wad) Names() []string {
	n := make([]string, 0, len(w.lumps))
	for _, l := range w.lumps {
		n = append(n, l.Name)
	}
	sort.Strings(n)
	return n
}

func (w *Wad) Lump(name string) (Lump, error) {
	i, ok := w.index[strings.ToLower(name)]
	if !ok {
		return Lump{}, errors.Wrap(ErrNotFound, name)
	}
	return w.lumps[i], nil
}

func (w *Wad) ReadLump(name string) ([]byte, error) {
	l, err := w.Lump(name)
	if err != nil {
		return nil, err
	}
	if l.Compression != 0 {
		return nil, errors.Wrap(ErrCompressed, name)
	}
	return w.r.Bytes(l.Offset, l.Size)
}

// Pic decodes a picture lump. conchars is stored without a header and uses
// index 0 as transparent, all other pictures are qpics keyed on
// PicTransparent.
func (w *Wad) Pic(name string, pal *palette.Palette) (texture.Image, error) {
	l, err := w.Lump(name)
	if err != nil {
		return texture.Image{}, err
	}
	data, err := w.ReadLump(name)
	if err != nil {
		return texture.Image{}, err
	}
	if l.Name == consoleCharsLump {
		n := consoleCharsSize * consoleCharsSize
		if len(data) < n {
			return texture.Image{}, errors.Wrapf(ErrPictureSize, "%s: %d bytes", name, len(data))
		}
		img := texture.NewImage(consoleCharsSize, consoleCharsSize)
		pal.RGBAKeyed(img.Pix, data[:n], 0)
		return img, nil
	}
	if l.Type != TypQPic {
		return texture.Image{}, errors.Wrapf(ErrNotPicture, "%s: type %#x", name, l.Type)
	}
	return DecodePic(data, pal)
}

// DecodePic decodes a qpic: int32 width and height followed by the indices.
// The loose lmp files in gfx/ use the same layout.
func DecodePic(data []byte, pal *palette.Palette) (texture.Image, error) {
	if len(data) < 8 {
		return texture.Image{}, errors.Wrapf(ErrPictureSize, "%d bytes", len(data))
	}
	r := binread.New(bytes.NewReader(data), 0, int64(len(data)))
	var h [2]int32
	if err := r.Read(0, &h); err != nil {
		return texture.Image{}, err
	}
	w, ht := int64(h[0]), int64(h[1])
	if w < 0 || ht < 0 || w*ht > int64(len(data))-8 {
		return texture.Image{}, errors.Wrapf(ErrPictureSize, "%dx%d in %d bytes", w, ht, len(data))
	}
	img := texture.NewImage(int(w), int(ht))
	pal.RGBAKeyed(img.Pix, data[8:8+w*ht], PicTransparent)
	return img, nil
}

// Pics decodes every picture lump, skipping the rest.
func (w *Wad) Pics(pal *palette.Palette) (map[string]texture.Image, error) {
	out := make(map[string]texture.Image)
	for _, l := range w.lumps {
		if l.Type != TypQPic && l.Name != consoleCharsLump {
			continue
		}
		img, err := w.Pic(l.Name, pal)
		if err != nil {
			return nil, err
		}
		out[l.Name] = img
	}
	return out, nil
}
