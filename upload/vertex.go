// SPDX-License-Identifier: GPL-2.0-or-later

package upload

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"kwark/bsp"
	"kwark/mdl"
	"kwark/texture"
)

// Level vertices are 36 bytes, all little endian:
//
//	0  pos    3 x float32
//	12 uv     2 x float32
//	20 light  3 x float32
//	32 kind   uint16 (texture.Kind)
//	34 index  uint16 (index into the Kind's texture array)
const LevelVertexSize = 36

// Model vertices are 20 bytes, pos 3 x float32 followed by uv 2 x float32.
const ModelVertexSize = 20

func putFloats(b []byte, f ...float32) []byte {
	for _, v := range f {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func LevelVertexBytes(vs []bsp.Vertex) []byte {
	b := make([]byte, 0, len(vs)*LevelVertexSize)
	for _, v := range vs {
		b = putFloats(b, v.Pos.X, v.Pos.Y, v.Pos.Z, v.UV[0], v.UV[1], v.Light[0], v.Light[1], v.Light[2])
		b = binary.LittleEndian.AppendUint16(b, uint16(v.Dest.Kind))
		b = binary.LittleEndian.AppendUint16(b, uint16(v.Dest.Index))
	}
	return b
}

func ModelVertexBytes(vs []mdl.Vertex) []byte {
	b := make([]byte, 0, len(vs)*ModelVertexSize)
	for _, v := range vs {
		b = putFloats(b, v.Pos.X, v.Pos.Y, v.Pos.Z, v.UV[0], v.UV[1])
	}
	return b
}

type LevelHandles struct {
	Default []Handle
	Sky     []Handle
	Fluid   []Handle
	Mesh    Handle
}

func uploadImages(u TextureUploader, imgs []texture.Image, kind texture.Kind) ([]Handle, error) {
	hs := make([]Handle, len(imgs))
	for i, img := range imgs {
		h, err := u.UploadTexture(img.Pix, img.Width, img.Height)
		if err != nil {
			return nil, errors.Wrapf(err, "%v[%d]", kind, i)
		}
		hs[i] = h
	}
	return hs, nil
}

// UploadLevel uploads the three texture arrays of the atlas and the
// triangles of l.
func UploadLevel(u Uploader, l *bsp.Level) (*LevelHandles, error) {
	var r LevelHandles
	var err error
	if l.Atlas != nil {
		if r.Default, err = uploadImages(u, l.Atlas.Default, texture.Default); err != nil {
			return nil, err
		}
		if r.Sky, err = uploadImages(u, l.Atlas.Sky, texture.Sky); err != nil {
			return nil, err
		}
		if r.Fluid, err = uploadImages(u, l.Atlas.Fluid, texture.Fluid); err != nil {
			return nil, err
		}
	}
	b := LevelVertexBytes(l.Triangles)
	if r.Mesh, err = u.UploadMesh(b, len(b)); err != nil {
		return nil, errors.Wrap(err, "level mesh")
	}
	return &r, nil
}

type ModelHandles struct {
	Skin   Handle
	Frames []Handle
}

// UploadModel uploads the skin and one vertex buffer per frame.
func UploadModel(u Uploader, m *mdl.Model) (*ModelHandles, error) {
	var r ModelHandles
	var err error
	if r.Skin, err = u.UploadTexture(m.Skin.Pix, m.Skin.Width, m.Skin.Height); err != nil {
		return nil, errors.Wrap(err, "skin")
	}
	r.Frames = make([]Handle, len(m.Frames))
	for i, f := range m.Frames {
		b := ModelVertexBytes(f.Vertices)
		if r.Frames[i], err = u.UploadMesh(b, len(b)); err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
	}
	return &r, nil
}
