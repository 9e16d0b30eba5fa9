// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwark/binread"
	"kwark/math/vec"
	"kwark/palette"
)

type fixture struct {
	h      Header
	skins  []int32 // skin type per skin
	st     []skinVertex
	tris   []triangle
	groups func(w *bytes.Buffer)
}

func (f *fixture) bytes(t *testing.T) []byte {
	t.Helper()
	var b bytes.Buffer
	w := func(v any) {
		require.NoError(t, binary.Write(&b, binary.LittleEndian, v))
	}
	f.h.SkinCount = int32(len(f.skins))
	w(&f.h)
	n := int(f.h.SkinWidth * f.h.SkinHeight)
	for i, typ := range f.skins {
		w(typ)
		skin := make([]byte, n)
		for j := range skin {
			skin[j] = byte(i + j)
		}
		skin[1] = palette.SkinTransparent
		w(skin)
	}
	w(f.st)
	w(f.tris)
	if f.groups != nil {
		f.groups(&b)
	}
	return b.Bytes()
}

func frame(b *bytes.Buffer, name string, verts []frameVertex) {
	var n [16]byte
	copy(n[:], name)
	binary.Write(b, binary.LittleEndian, frameHeader{
		Min:  frameVertex{PackedPosition: [3]byte{0, 0, 0}},
		Max:  frameVertex{PackedPosition: [3]byte{4, 4, 4}},
		Name: n,
	})
	binary.Write(b, binary.LittleEndian, verts)
}

var (
	pose0 = []frameVertex{{PackedPosition: [3]byte{1, 2, 3}}, {PackedPosition: [3]byte{0, 0, 0}}, {PackedPosition: [3]byte{4, 4, 4}}}
	pose1 = []frameVertex{{PackedPosition: [3]byte{2, 2, 2}}, {PackedPosition: [3]byte{1, 1, 1}}, {PackedPosition: [3]byte{3, 3, 3}}}
)

func triangleModel() *fixture {
	return &fixture{
		h: Header{
			ID:            Magic,
			Version:       aliasVersion,
			Scale:         [3]float32{1, 2, 3},
			ScaleOrigin:   [3]float32{10, 20, 30},
			SkinWidth:     4,
			SkinHeight:    2,
			VerticeCount:  3,
			TriangleCount: 1,
			FrameCount:    2,
		},
		skins: []int32{ALIAS_SKIN_SINGLE},
		st: []skinVertex{
			{Onseam: 0, S: 0, T: 0},
			{Onseam: 0x20, S: 2, T: 1},
			{Onseam: 0, S: 4, T: 2},
		},
		tris: []triangle{{FacesFront: 0, Vertices: [3]int32{0, 1, 2}}},
		groups: func(b *bytes.Buffer) {
			binary.Write(b, binary.LittleEndian, int32(ALIAS_SINGLE))
			frame(b, "stand1", pose0)
			binary.Write(b, binary.LittleEndian, int32(ALIAS_GROUP))
			binary.Write(b, binary.LittleEndian, groupHeader{Count: 2})
			binary.Write(b, binary.LittleEndian, []float32{0.1, 0.3})
			frame(b, "run1", pose0)
			frame(b, "run2", pose1)
		},
	}
}

func parse(t *testing.T, f *fixture) (*Model, error) {
	t.Helper()
	b := f.bytes(t)
	var pal palette.Palette
	for i := range pal {
		pal[i] = [3]byte{byte(i), byte(i), byte(i)}
	}
	return ParseModel(binread.New(bytes.NewReader(b), 0, int64(len(b))), &pal)
}

func TestParseModel(t *testing.T) {
	m, err := parse(t, triangleModel())
	require.NoError(t, err)

	require.Len(t, m.Groups, 2)
	require.Len(t, m.Frames, 3)
	assert.Equal(t, "stand1", m.Frames[0].Name)
	assert.Equal(t, "run2", m.Frames[2].Name)
	assert.Equal(t, 1, m.Groups[1].First)
	assert.Equal(t, 2, m.Groups[1].Count)
	assert.Equal(t, []float32{0.1, 0.3}, m.Groups[1].Times)

	for _, f := range m.Frames {
		assert.Len(t, f.Vertices, 3)
	}
	v := m.Frames[0].Vertices
	assert.Equal(t, vec.Vec3{X: 11, Y: -39, Z: 24}, v[0].Pos)
	assert.Equal(t, vec.Vec3{X: 10, Y: -30, Z: 20}, v[1].Pos)
	assert.Equal(t, [2]float32{0, 0}, v[0].UV)
	// back facing seam vertex
	assert.Equal(t, [2]float32{1, 0.5}, v[1].UV)
	assert.Equal(t, [2]float32{1, 1}, v[2].UV)

	assert.Equal(t, 4, m.Skin.Width)
	assert.Equal(t, 2, m.Skin.Height)
	assert.Equal(t, []byte{0, 0, 0, 255}, m.Skin.Pix[0:4])
	assert.Equal(t, byte(0), m.Skin.Pix[7], "index 208 is transparent")
	assert.Equal(t, []byte{2, 2, 2, 255}, m.Skin.Pix[8:12])
}

func TestFrontFacingSeam(t *testing.T) {
	f := triangleModel()
	f.tris[0].FacesFront = 1
	m, err := parse(t, f)
	require.NoError(t, err)
	assert.Equal(t, [2]float32{0.5, 0.5}, m.Frames[0].Vertices[1].UV)
}

func TestFrameAt(t *testing.T) {
	m, err := parse(t, triangleModel())
	require.NoError(t, err)
	g := &m.Groups[1]
	assert.Equal(t, 1, g.FrameAt(0.05))
	assert.Equal(t, 2, g.FrameAt(0.2))
	assert.Equal(t, 1, g.FrameAt(0.35))
	assert.Equal(t, 0, m.Groups[0].FrameAt(12))
}

func TestBounds(t *testing.T) {
	m, err := parse(t, triangleModel())
	require.NoError(t, err)
	b := m.Bounds(0)
	require.False(t, b.Empty())
	assert.Equal(t, vec.Vec3{X: 10, Y: -42, Z: 20}, b.Mins)
	assert.Equal(t, vec.Vec3{X: 14, Y: -30, Z: 28}, b.Maxs)
	assert.True(t, m.Bounds(7).Empty())
}

func TestExtraSkinsSkipped(t *testing.T) {
	f := triangleModel()
	f.skins = []int32{ALIAS_SKIN_SINGLE, ALIAS_SKIN_SINGLE}
	m, err := parse(t, f)
	require.NoError(t, err)
	assert.Len(t, m.Frames, 3)
	assert.Equal(t, byte(0), m.Skin.Pix[0])
}

func TestParseModelErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *fixture)
		want   error
	}{
		{"magic", func(f *fixture) { f.h.ID = 0x1234 }, ErrNotAlias},
		{"version", func(f *fixture) { f.h.Version = 8 }, ErrVersion},
		{"no frames", func(f *fixture) { f.h.FrameCount = 0 }, ErrHeader},
		{"no skin", func(f *fixture) { f.skins = nil }, ErrHeader},
		{"group skin", func(f *fixture) {
			f.skins = []int32{ALIAS_SKIN_GROUP}
			f.groups = nil
		}, ErrUnsupportedGroupSkin},
		{"second group skin", func(f *fixture) {
			f.skins = []int32{ALIAS_SKIN_SINGLE, ALIAS_SKIN_GROUP}
		}, ErrUnsupportedGroupSkin},
		{"bad triangle", func(f *fixture) { f.tris[0].Vertices[2] = 3 }, ErrBadIndex},
		{"empty group", func(f *fixture) {
			f.groups = func(b *bytes.Buffer) {
				binary.Write(b, binary.LittleEndian, int32(ALIAS_GROUP))
				binary.Write(b, binary.LittleEndian, groupHeader{Count: 0})
			}
		}, ErrInvalidFrameCount},
		{"huge group", func(f *fixture) {
			f.groups = func(b *bytes.Buffer) {
				binary.Write(b, binary.LittleEndian, int32(ALIAS_GROUP))
				binary.Write(b, binary.LittleEndian, groupHeader{Count: 0x7fffffff})
			}
		}, binread.ErrTruncated},
		{"huge triangle count", func(f *fixture) { f.h.TriangleCount = 0x7fffffff }, binread.ErrTruncated},
		{"group type", func(f *fixture) {
			f.groups = func(b *bytes.Buffer) {
				binary.Write(b, binary.LittleEndian, int32(-1))
			}
		}, ErrInvalidGroupType},
		{"short frame", func(f *fixture) {
			f.groups = func(b *bytes.Buffer) {
				binary.Write(b, binary.LittleEndian, int32(ALIAS_SINGLE))
				frame(b, "stand1", pose0[:2])
			}
		}, binread.ErrTruncated},
		{"missing group", func(f *fixture) {
			f.groups = func(b *bytes.Buffer) {
				binary.Write(b, binary.LittleEndian, int32(ALIAS_SINGLE))
				frame(b, "stand1", pose0)
			}
		}, binread.ErrUnexpectedEOF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := triangleModel()
			tc.modify(f)
			_, err := parse(t, f)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
