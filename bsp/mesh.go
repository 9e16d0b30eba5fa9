// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/pkg/errors"

	"kwark/math/vec"
	"kwark/texture"
)

// FaceLoop returns the edge loop of face fi, two positions per edge
// reference in walk order. Zero references are skipped.
func (l *Level) FaceLoop(fi int) ([]vec.Vec3, error) {
	if fi < 0 || fi >= len(l.Faces) {
		return nil, errors.Wrapf(ErrBadIndex, "face %d of %d", fi, len(l.Faces))
	}
	f := &l.Faces[fi]
	if f.NumEdges <= 0 {
		return nil, nil
	}
	if f.FirstEdge < 0 || f.FirstEdge+f.NumEdges > len(l.EdgeRefs) {
		return nil, errors.Wrapf(ErrBadIndex, "face %d: surfedges [%d,+%d) of %d", fi, f.FirstEdge, f.NumEdges, len(l.EdgeRefs))
	}
	pos := make([]vec.Vec3, 0, 2*f.NumEdges)
	for _, ref := range l.EdgeRefs[f.FirstEdge : f.FirstEdge+f.NumEdges] {
		if ref.Dir == Invalid {
			continue
		}
		if ref.Index >= len(l.Edges) {
			return nil, errors.Wrapf(ErrBadIndex, "face %d: edge %d of %d", fi, ref.Index, len(l.Edges))
		}
		a, b := ref.Vertices(l.Edges[ref.Index])
		if a >= len(l.Vertexes) || b >= len(l.Vertexes) {
			return nil, errors.Wrapf(ErrBadIndex, "face %d: vertex %d/%d of %d", fi, a, b, len(l.Vertexes))
		}
		pos = append(pos, l.Vertexes[a], l.Vertexes[b])
	}
	return pos, nil
}

// FaceVertices triangulates face fi as a fan around the first loop position.
func (l *Level) FaceVertices(fi int) ([]Vertex, error) {
	pos, err := l.FaceLoop(fi)
	if err != nil {
		return nil, err
	}
	f := &l.Faces[fi]
	if f.TexInfo < 0 || f.TexInfo >= len(l.TexInfos) {
		return nil, errors.Wrapf(ErrUnknownTexInfo, "face %d: texinfo %d of %d", fi, f.TexInfo, len(l.TexInfos))
	}
	ti := &l.TexInfos[f.TexInfo]
	if l.Atlas == nil {
		return nil, errors.Wrapf(texture.ErrUnknownSlot, "face %d: no atlas", fi)
	}
	dest, err := l.Atlas.Destination(ti.Slot)
	if err != nil {
		return nil, errors.Wrapf(err, "face %d", fi)
	}
	w, h, hasSize := l.Atlas.Size(ti.Slot)

	light := 1 - float32(f.BaseLight())/255
	vert := func(p vec.Vec3) Vertex {
		v := Vertex{
			Pos:   p,
			Light: [3]float32{light, light, light},
			Dest:  dest,
		}
		if hasSize && w > 0 && h > 0 {
			s, t := ti.Project(p)
			v.UV = [2]float32{s / float32(w), t / float32(h)}
		}
		return v
	}

	n := len(pos) / 2
	if n < 2 {
		return nil, nil
	}
	out := make([]Vertex, 0, 3*(n-1))
	pivot := vert(pos[0])
	for i := 1; i < n; i++ {
		out = append(out, pivot, vert(pos[2*i]), vert(pos[2*i+1]))
	}
	return out, nil
}

// Mesh triangulates every face of the level.
func (l *Level) Mesh() ([]Vertex, error) {
	m, _, err := l.mesh()
	return m, err
}

func (l *Level) mesh() ([]Vertex, []int, error) {
	var out []Vertex
	first := make([]int, len(l.Faces))
	for i := range l.Faces {
		first[i] = len(out)
		vs, err := l.FaceVertices(i)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, vs...)
	}
	return out, first, nil
}

// ModelTriangles returns the triangles of the faces of submodel mi.
// Model 0 is the world.
func (l *Level) ModelTriangles(mi int) ([]Vertex, error) {
	if mi < 0 || mi >= len(l.Models) {
		return nil, errors.Wrapf(ErrBadIndex, "model %d of %d", mi, len(l.Models))
	}
	if len(l.FaceFirstVert) != len(l.Faces) {
		return nil, errors.New("level has no mesh")
	}
	m := &l.Models[mi]
	if m.FaceCount == 0 {
		return nil, nil
	}
	start := l.FaceFirstVert[m.FirstFace]
	end := len(l.Triangles)
	if last := m.FirstFace + m.FaceCount; last < len(l.Faces) {
		end = l.FaceFirstVert[last]
	}
	return l.Triangles[start:end], nil
}
