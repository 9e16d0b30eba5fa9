// SPDX-License-Identifier: GPL-2.0-or-later

// Package manifest summarizes the assets of a pack.
package manifest

import (
	"io"
	"path"
	"strings"

	"kwark/binread"
	"kwark/bsp"
	"kwark/conlog"
	"kwark/crc"
	"kwark/mdl"
	"kwark/model"
	"kwark/pack"
	"kwark/palette"
	"kwark/spr"
	"kwark/wad"
)

type Source interface {
	Names() []string
	Entry(name string) (pack.Entry, error)
	Reader(name string) (*binread.Reader, error)
}

type Texture struct {
	Slot   int    `yaml:"slot"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Class  string `yaml:"class"`
	Dest   string `yaml:"dest"`
}

type Level struct {
	Textures  []Texture      `yaml:"textures"`
	Faces     int            `yaml:"faces"`
	Triangles int            `yaml:"triangles"`
	Models    int            `yaml:"models"`
	Entities  map[string]int `yaml:"entities"`
}

type Model struct {
	SkinWidth  int      `yaml:"skin_width"`
	SkinHeight int      `yaml:"skin_height"`
	Triangles  int      `yaml:"triangles"`
	Groups     int      `yaml:"groups"`
	Frames     []string `yaml:"frames"`
}

type Sprite struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Groups int `yaml:"groups"`
	Frames int `yaml:"frames"`
}

type Lump struct {
	Name string `yaml:"name"`
	Type int    `yaml:"type"`
	Size int64  `yaml:"size"`
}

type Entry struct {
	Name   string  `yaml:"name"`
	Size   int64   `yaml:"size"`
	CRC    uint16  `yaml:"crc"`
	Level  *Level  `yaml:"level,omitempty"`
	Model  *Model  `yaml:"model,omitempty"`
	Sprite *Sprite `yaml:"sprite,omitempty"`
	Lumps  []Lump  `yaml:"lumps,omitempty"`
	// Error is set when the asset failed to decode.
	Error string `yaml:"error,omitempty"`
}

type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

// Build decodes every level and model of src. A broken asset does not stop
// the build, its error is recorded in the entry instead.
func Build(src Source, pal *palette.Palette) *Manifest {
	m := &Manifest{}
	for _, name := range src.Names() {
		e, err := src.Entry(name)
		if err != nil {
			m.Entries = append(m.Entries, Entry{Name: name, Error: err.Error()})
			continue
		}
		me := Entry{Name: name, Size: e.Size}
		err = me.fill(src, name, pal)
		if err != nil {
			conlog.Warnf("manifest: %s: %v", name, err)
			me.Error = err.Error()
		}
		m.Entries = append(m.Entries, me)
	}
	return m
}

func (me *Entry) fill(src Source, name string, pal *palette.Palette) error {
	r, err := src.Reader(name)
	if err != nil {
		return err
	}
	d := crc.New()
	if _, err := io.Copy(d, r.Section()); err != nil {
		return err
	}
	me.CRC = d.Sum16()

	switch strings.ToLower(path.Ext(name)) {
	case ".bsp", ".mdl", ".spr":
	case ".wad":
		me.Lumps, err = lumps(r)
		return err
	default:
		return nil
	}
	m, err := model.Decode(r, pal)
	if err != nil {
		return err
	}
	switch m := m.(type) {
	case *bsp.Level:
		me.Level = level(m)
	case *mdl.Model:
		me.Model = alias(m)
	case *spr.Sprite:
		me.Sprite = sprite(m)
	}
	return nil
}

func level(l *bsp.Level) *Level {
	s := &Level{
		Faces:     len(l.Faces),
		Triangles: len(l.Triangles) / 3,
		Models:    len(l.Models),
		Entities:  make(map[string]int),
	}
	for i, slot := range l.Atlas.Slots {
		s.Textures = append(s.Textures, Texture{
			Slot:   i,
			Name:   slot.Header.String(),
			Width:  int(slot.Header.Width),
			Height: int(slot.Header.Height),
			Class:  slot.Class.String(),
			Dest:   slot.Dest.String(),
		})
	}
	for _, e := range l.Entities {
		if c, ok := e.Name(); ok {
			s.Entities[c]++
		}
	}
	return s
}

func alias(m *mdl.Model) *Model {
	s := &Model{
		SkinWidth:  m.Skin.Width,
		SkinHeight: m.Skin.Height,
		Triangles:  m.TriangleCount(),
		Groups:     len(m.Groups),
	}
	for _, f := range m.Frames {
		s.Frames = append(s.Frames, f.Name)
	}
	return s
}

func sprite(sp *spr.Sprite) *Sprite {
	return &Sprite{
		Width:  int(sp.Header.MaxWidth),
		Height: int(sp.Header.MaxHeight),
		Groups: len(sp.Groups),
		Frames: len(sp.Frames),
	}
}

func lumps(r *binread.Reader) ([]Lump, error) {
	w, err := wad.Load(r)
	if err != nil {
		return nil, err
	}
	var out []Lump
	for _, l := range w.Lumps() {
		out = append(out, Lump{Name: l.Name, Type: int(l.Type), Size: l.Size})
	}
	return out, nil
}
