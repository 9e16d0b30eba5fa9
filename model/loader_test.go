// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"bytes"
	"errors"
	"testing"

	"kwark/binread"
	"kwark/math/vec"
	"kwark/palette"
)

type box struct{}

func (box) Type() Type     { return ModSprite }
func (box) Mins() vec.Vec3 { return vec.Vec3{X: -1, Y: -1, Z: -1} }
func (box) Maxs() vec.Vec3 { return vec.Vec3{X: 1, Y: 1, Z: 1} }

type source map[string][]byte

func (s source) Reader(name string) (*binread.Reader, error) {
	b, ok := s[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return binread.New(bytes.NewReader(b), 0, int64(len(b))), nil
}

const testMagic = 'T' | 'E'<<8 | 'S'<<16 | 'T'<<24

func init() {
	Register(testMagic, func(r *binread.Reader, pal *palette.Palette) (Model, error) {
		return box{}, nil
	})
}

func TestLoad(t *testing.T) {
	src := source{
		"test.bin":  []byte("TEST"),
		"other.bin": []byte("NOPE"),
		"short.bin": []byte("TE"),
	}
	m, err := Load(src, "test.bin", &palette.Palette{})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type() != ModSprite || m.Maxs().X != 1 {
		t.Errorf("got %v %v", m.Type(), m.Maxs())
	}
	if _, err := Load(src, "other.bin", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
	if _, err := Load(src, "short.bin", nil); !errors.Is(err, binread.ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
	if _, err := Load(src, "missing.bin", nil); err == nil {
		t.Error("missing file decoded")
	}
}

func TestTypeString(t *testing.T) {
	for ty, want := range map[Type]string{ModBrush: "brush", ModSprite: "sprite", ModAlias: "alias", Type(9): "unknown"} {
		if got := ty.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", int(ty), got, want)
		}
	}
}
