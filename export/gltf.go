// SPDX-License-Identifier: GPL-2.0-or-later

// Package export writes decoded levels and models as glTF documents.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"kwark/bsp"
	"kwark/image"
	qmath "kwark/math"
	"kwark/mdl"
	"kwark/texture"
)

var ErrNoGeometry = errors.New("nothing to export")

type builder struct {
	doc       *gltf.Document
	sampler   uint32
	materials map[texture.Destination]uint32
}

func newBuilder() *builder {
	doc := gltf.NewDocument()
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		Name:      "nearest",
		MagFilter: gltf.MagNearest,
		MinFilter: gltf.MinNearest,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})
	return &builder{doc: doc, materials: make(map[texture.Destination]uint32)}
}

// material returns the material for img, adding it on first use.
func (b *builder) material(key texture.Destination, name string, img texture.Image) (uint32, error) {
	if m, ok := b.materials[key]; ok {
		return m, nil
	}
	var png bytes.Buffer
	if err := image.Write(&png, img, image.PNG, image.Options{}); err != nil {
		return 0, errors.Wrapf(err, "material %s", name)
	}
	imageIndex, err := modeler.WriteImage(b.doc, name+"_image", "image/png", &png)
	if err != nil {
		return 0, errors.Wrapf(err, "material %s", name)
	}
	textureIndex := uint32(len(b.doc.Textures))
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: gltf.Index(b.sampler),
		Source:  gltf.Index(imageIndex),
	})
	m := uint32(len(b.doc.Materials))
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
		AlphaMode:   gltf.AlphaMask,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: textureIndex},
		},
	})
	b.materials[key] = m
	return m, nil
}

func channel(f float32) uint8 {
	return uint8(qmath.Clamp(0, f*255, 255))
}

func sequence(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

func (b *builder) node(name string, mesh *gltf.Mesh) {
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, uint32(len(b.doc.Nodes)))
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(b.doc.Meshes) - 1)),
	})
}

// Level exports the renderable triangles of l, one primitive per texture.
// The flat face light is stored as vertex color.
func Level(name string, l *bsp.Level) (*gltf.Document, error) {
	batches := l.Batches()
	if len(batches) == 0 {
		return nil, errors.Wrapf(ErrNoGeometry, "level %s", name)
	}
	b := newBuilder()
	mesh := &gltf.Mesh{Name: name}
	for _, batch := range batches {
		img, ok := l.Atlas.Image(batch.Dest)
		if !ok {
			return nil, errors.Wrapf(texture.ErrUnknownSlot, "destination %v", batch.Dest)
		}
		mat, err := b.material(batch.Dest, batch.Dest.String(), img)
		if err != nil {
			return nil, err
		}
		n := len(batch.Vertices)
		positions := make([][3]float32, n)
		uvs := make([][2]float32, n)
		colors := make([][4]uint8, n)
		for i, v := range batch.Vertices {
			positions[i] = v.Pos.Array()
			uvs[i] = v.UV
			colors[i] = [4]uint8{
				channel(v.Light[0]), channel(v.Light[1]), channel(v.Light[2]), 255,
			}
		}
		indices := modeler.WriteIndices(b.doc, sequence(n))
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Indices: gltf.Index(indices),
			Attributes: map[string]uint32{
				"POSITION":   modeler.WritePosition(b.doc, positions),
				"TEXCOORD_0": modeler.WriteTextureCoord(b.doc, uvs),
				"COLOR_0":    modeler.WriteColor(b.doc, colors),
			},
			Material: gltf.Index(mat),
		})
	}
	b.node(name, mesh)
	return b.doc, nil
}

// Model exports the given frames of m as one node each. Without frames all
// frames are exported.
func Model(name string, m *mdl.Model, frames ...int) (*gltf.Document, error) {
	if len(frames) == 0 {
		frames = sequenceInts(len(m.Frames))
	}
	if len(frames) == 0 {
		return nil, errors.Wrapf(ErrNoGeometry, "model %s", name)
	}
	b := newBuilder()
	mat, err := b.material(texture.Destination{Kind: texture.Default}, name+"_skin", m.Skin)
	if err != nil {
		return nil, err
	}
	for _, fi := range frames {
		if fi < 0 || fi >= len(m.Frames) {
			return nil, errors.Wrapf(mdl.ErrBadIndex, "frame %d of %d", fi, len(m.Frames))
		}
		f := &m.Frames[fi]
		n := len(f.Vertices)
		positions := make([][3]float32, n)
		uvs := make([][2]float32, n)
		for i, v := range f.Vertices {
			positions[i] = v.Pos.Array()
			uvs[i] = v.UV
		}
		indices := modeler.WriteIndices(b.doc, sequence(n))
		frameName := f.Name
		if frameName == "" {
			frameName = fmt.Sprintf("frame%d", fi)
		}
		b.node(frameName, &gltf.Mesh{
			Name: frameName,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(indices),
				Attributes: map[string]uint32{
					"POSITION":   modeler.WritePosition(b.doc, positions),
					"TEXCOORD_0": modeler.WriteTextureCoord(b.doc, uvs),
				},
				Material: gltf.Index(mat),
			}},
		})
	}
	return b.doc, nil
}

func sequenceInts(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}

// WriteBinary encodes doc as a single glb stream.
func WriteBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrap(encoder.Encode(doc), "glb")
}
