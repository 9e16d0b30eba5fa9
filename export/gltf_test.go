// SPDX-License-Identifier: GPL-2.0-or-later

package export

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwark/bsp"
	"kwark/math/vec"
	"kwark/mdl"
	"kwark/texture"
)

func tri(dest texture.Destination, light float32) []bsp.Vertex {
	l := [3]float32{light, light, light}
	return []bsp.Vertex{
		{Pos: vec.Vec3{X: 0, Y: 0, Z: 0}, Light: l, Dest: dest},
		{Pos: vec.Vec3{X: 1, Y: 0, Z: 0}, UV: [2]float32{1, 0}, Light: l, Dest: dest},
		{Pos: vec.Vec3{X: 1, Y: 1, Z: 0}, UV: [2]float32{1, 1}, Light: l, Dest: dest},
	}
}

func testLevel() *bsp.Level {
	wall := texture.Destination{Kind: texture.Default}
	sky := texture.Destination{Kind: texture.Sky}
	debug := texture.Destination{Kind: texture.NotRenderable, Reason: texture.ReasonDebug}
	var vs []bsp.Vertex
	vs = append(vs, tri(wall, 1)...)
	vs = append(vs, tri(debug, 1)...)
	vs = append(vs, tri(sky, 0.5)...)
	vs = append(vs, tri(wall, 0.5)...)
	return &bsp.Level{
		Atlas: &texture.Atlas{
			Default: []texture.Image{texture.NewImage(4, 4)},
			Sky:     []texture.Image{texture.NewImage(2, 2), texture.NewImage(2, 2)},
		},
		Triangles: vs,
	}
}

func TestLevel(t *testing.T) {
	doc, err := Level("e1m1", testLevel())
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Meshes[0].Primitives, 2)
	assert.Len(t, doc.Materials, 2)
	assert.Len(t, doc.Images, 2)
	assert.Len(t, doc.Nodes, 1)
	assert.Equal(t, []uint32{0}, doc.Scenes[0].Nodes)

	p := doc.Meshes[0].Primitives[0]
	pos := doc.Accessors[p.Attributes["POSITION"]]
	assert.Equal(t, uint32(6), pos.Count)
}

func TestLevelEmpty(t *testing.T) {
	l := &bsp.Level{Atlas: &texture.Atlas{}}
	_, err := Level("empty", l)
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func testModel() *mdl.Model {
	f := mdl.Frame{Name: "stand1", Vertices: []mdl.Vertex{
		{Pos: vec.Vec3{X: 0, Y: 0, Z: 0}},
		{Pos: vec.Vec3{X: 1, Y: 0, Z: 0}},
		{Pos: vec.Vec3{X: 0, Y: 1, Z: 0}},
	}}
	g := f
	g.Name = ""
	return &mdl.Model{Skin: texture.NewImage(8, 4), Frames: []mdl.Frame{f, g}}
}

func TestModel(t *testing.T) {
	doc, err := Model("ogre", testModel())
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "stand1", doc.Nodes[0].Name)
	assert.Equal(t, "frame1", doc.Nodes[1].Name)
	assert.Len(t, doc.Materials, 1)

	doc, err = Model("ogre", testModel(), 1)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 1)

	_, err = Model("ogre", testModel(), 2)
	assert.ErrorIs(t, err, mdl.ErrBadIndex)
}

func TestWriteBinary(t *testing.T) {
	doc, err := Level("e1m1", testLevel())
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, WriteBinary(&b, doc))
	assert.Equal(t, "glTF", b.String()[:4])

	var got gltf.Document
	require.NoError(t, gltf.NewDecoder(&b).Decode(&got))
	assert.Len(t, got.Meshes, 1)
	assert.Len(t, got.Meshes[0].Primitives, 2)
}
