// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"kwark/math/vec"
	"kwark/texture"
)

type ST byte

const (
	S ST = iota
	T
)

type Plane struct {
	Normal vec.Vec3
	Dist   float32
	Type   byte
}

// Edge is an unordered pair of indices into Level.Vertexes.
type Edge struct {
	V [2]int
}

// Dir is the direction an edge is walked in by a face.
type Dir int8

const (
	Invalid Dir = iota
	Forward
	Backward
)

// EdgeRef is a decoded entry of the surface edge list. The sign of the
// on-disk value is turned into Dir, Index is always the magnitude.
type EdgeRef struct {
	Index int
	Dir   Dir
}

func NewEdgeRef(v int32) EdgeRef {
	switch {
	case v > 0:
		return EdgeRef{Index: int(v), Dir: Forward}
	case v < 0:
		return EdgeRef{Index: int(-int64(v)), Dir: Backward}
	}
	return EdgeRef{}
}

// Vertices returns the vertex indices of e in walk order.
func (r EdgeRef) Vertices(e Edge) (int, int) {
	if r.Dir == Backward {
		return e.V[1], e.V[0]
	}
	return e.V[0], e.V[1]
}

type Face struct {
	Plane     int
	Side      int
	FirstEdge int // index into Level.EdgeRefs
	NumEdges  int
	TexInfo   int
	Styles    [4]byte
	LightMap  int32 // byte offset into Level.Lighting or -1
}

// BaseLight is the light level used when the lightmap is not evaluated.
func (f *Face) BaseLight() byte {
	return f.Styles[1]
}

func (f *Face) HasLightMap() bool {
	return f.LightMap >= 0
}

type TexInfoPos struct {
	Pos    vec.Vec3
	Offset float32
}

type TexInfo struct {
	Vecs  [2]TexInfoPos
	Slot  int // atlas slot
	Flags uint32
}

// Project returns the unnormalized texture coordinate of p.
func (t *TexInfo) Project(p vec.Vec3) (float32, float32) {
	return vec.Dot(p, t.Vecs[S].Pos) + t.Vecs[S].Offset,
		vec.Dot(p, t.Vecs[T].Pos) + t.Vecs[T].Offset
}

type Submodel struct {
	Mins         vec.Vec3
	Maxs         vec.Vec3
	Origin       vec.Vec3
	HeadNode     [4]int
	VisLeafCount int
	FirstFace    int
	FaceCount    int
}

// Vertex is the renderer facing output of the triangulation.
type Vertex struct {
	Pos   vec.Vec3
	UV    [2]float32
	Light [3]float32
	Dest  texture.Destination
}

type Level struct {
	Version  int32
	Entities []*Entity
	Planes   []Plane
	Atlas    *texture.Atlas
	Vertexes []vec.Vec3
	TexInfos []TexInfo
	Faces    []Face
	Lighting []byte
	Edges    []Edge
	EdgeRefs []EdgeRef
	Models   []Submodel

	// Triangles is the result of Mesh, three vertices per triangle.
	Triangles []Vertex
	// FaceFirstVert is the index of the first Triangles vertex of every face.
	FaceFirstVert []int
}

// Bounds returns the bounding box of all level vertices.
func (l *Level) Bounds() vec.Box {
	var b vec.Box
	for _, v := range l.Vertexes {
		b.Extend(v)
	}
	return b
}

// Batch holds the triangles sharing one destination.
type Batch struct {
	Dest     texture.Destination
	Vertices []Vertex
}

// Batches groups Triangles by destination, in order of first appearance.
// Vertices of not renderable faces are dropped.
func (l *Level) Batches() []Batch {
	idx := make(map[texture.Destination]int)
	var bs []Batch
	for _, v := range l.Triangles {
		if !v.Dest.Renderable() {
			continue
		}
		i, ok := idx[v.Dest]
		if !ok {
			i = len(bs)
			idx[v.Dest] = i
			bs = append(bs, Batch{Dest: v.Dest})
		}
		bs[i].Vertices = append(bs[i].Vertices, v)
	}
	return bs
}
