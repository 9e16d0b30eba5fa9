// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"github.com/chewxy/math32"

	"kwark/math/vec"
	"kwark/texture"
)

type Vertex struct {
	Pos vec.Vec3
	UV  [2]float32
}

type Frame struct {
	Name     string
	Min      vec.Vec3 // packed bounds as stored in the file
	Max      vec.Vec3
	Vertices []Vertex // three per triangle
}

// FrameGroup is a single frame (Type 0) or a timed sequence of frames.
// Its frames are Model.Frames[First:First+Count].
type FrameGroup struct {
	Type  int32
	Min   vec.Vec3
	Max   vec.Vec3
	Times []float32 // end time of every frame, only for timed groups
	First int
	Count int
}

type Model struct {
	Header Header
	Skin   texture.Image
	Groups []FrameGroup
	Frames []Frame
}

// FrameAt returns the index into Model.Frames shown at time t.
func (g *FrameGroup) FrameAt(t float32) int {
	if g.Count <= 1 || len(g.Times) == 0 {
		return g.First
	}
	last := g.Times[len(g.Times)-1]
	if last <= 0 {
		return g.First
	}
	t = math32.Mod(t, last)
	if t < 0 {
		t += last
	}
	for i, e := range g.Times {
		if e > t {
			return g.First + i
		}
	}
	return g.First + g.Count - 1
}

// Bounds returns the bounding box of the expanded vertices of frame.
func (m *Model) Bounds(frame int) vec.Box {
	var b vec.Box
	if frame < 0 || frame >= len(m.Frames) {
		return b
	}
	for _, v := range m.Frames[frame].Vertices {
		b.Extend(v.Pos)
	}
	return b
}

// TriangleCount returns the number of triangles of every frame.
func (m *Model) TriangleCount() int {
	return int(m.Header.TriangleCount)
}
