// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
	"kwark/math/vec"
	"kwark/palette"
	"kwark/texture"
)

var (
	ErrVersion        = errors.New("wrong bsp version")
	ErrLumpSize       = errors.New("funny lump size")
	ErrUnknownTexInfo = errors.New("unknown texinfo")
	ErrBadIndex       = errors.New("index out of range")
)

// ParseLevel decodes the level in r including its texture atlas.
func ParseLevel(r *binread.Reader, pal *palette.Palette) (*Level, error) {
	return parse(r, func(h *header) (*texture.Atlas, error) {
		sub, err := lump(r, h.Textures, "textures")
		if err != nil {
			return nil, err
		}
		if sub.Size() == 0 {
			return &texture.Atlas{}, nil
		}
		return texture.ParseAtlas(sub, pal)
	})
}

// ParseLevelWithAtlas decodes the level in r and routes its textures through
// an already decoded atlas. The texture lump of r is not read.
func ParseLevelWithAtlas(r *binread.Reader, atlas *texture.Atlas) (*Level, error) {
	return parse(r, func(*header) (*texture.Atlas, error) {
		return atlas, nil
	})
}

func parse(r *binread.Reader, atlas func(*header) (*texture.Atlas, error)) (*Level, error) {
	var h header
	if err := r.Read(0, &h); err != nil {
		return nil, errors.Wrap(err, "bsp header")
	}
	if h.Version != bspVersion {
		return nil, errors.Wrapf(ErrVersion, "%d should be %d", h.Version, bspVersion)
	}
	l := &Level{Version: h.Version}

	var err error
	if l.Atlas, err = atlas(&h); err != nil {
		return nil, err
	}
	if err := l.loadEntities(r, h.Entities); err != nil {
		return nil, err
	}
	if err := l.loadPlanes(r, h.Planes); err != nil {
		return nil, err
	}
	if err := l.loadVertexes(r, h.Vertexes); err != nil {
		return nil, err
	}
	if err := l.loadEdges(r, h.Edges); err != nil {
		return nil, err
	}
	if err := l.loadSurfaceEdges(r, h.SurfaceEdges); err != nil {
		return nil, err
	}
	if err := l.loadTexInfo(r, h.Texinfo); err != nil {
		return nil, err
	}
	if err := l.loadLighting(r, h.Lighting); err != nil {
		return nil, err
	}
	if err := l.loadFaces(r, h.Faces); err != nil {
		return nil, err
	}
	if err := l.loadSubmodels(r, h.Models); err != nil {
		return nil, err
	}
	if l.Triangles, l.FaceFirstVert, err = l.mesh(); err != nil {
		return nil, err
	}
	conlog.Debugf("bsp: %d vertexes, %d edges, %d faces, %d texinfo, %d models, %d triangles",
		len(l.Vertexes), len(l.Edges), len(l.Faces), len(l.TexInfos), len(l.Models), len(l.Triangles)/3)
	return l, nil
}

// lump returns a reader restricted to d.
func lump(r *binread.Reader, d directory, name string) (*binread.Reader, error) {
	sub, err := r.Sub(int64(d.Offset), int64(d.Size))
	if err != nil {
		return nil, errors.Wrapf(err, "%s lump", name)
	}
	return sub, nil
}

func readLump[T any](r *binread.Reader, d directory, name string) ([]T, error) {
	var zero T
	size := int64(binary.Size(zero))
	sub, err := lump(r, d, name)
	if err != nil {
		return nil, err
	}
	if sub.Size()%size != 0 {
		return nil, errors.Wrapf(ErrLumpSize, "%s lump: %d bytes, records of %d", name, sub.Size(), size)
	}
	out := make([]T, sub.Size()/size)
	if len(out) == 0 {
		return out, nil
	}
	if err := sub.Read(0, out); err != nil {
		return nil, errors.Wrapf(err, "%s lump", name)
	}
	return out, nil
}

func (l *Level) loadEntities(r *binread.Reader, d directory) error {
	sub, err := lump(r, d, "entities")
	if err != nil {
		return err
	}
	text, err := sub.Bytes(0, sub.Size())
	if err != nil {
		return errors.Wrap(err, "entities lump")
	}
	l.Entities, err = ParseEntities(text)
	return err
}

func (l *Level) loadPlanes(r *binread.Reader, d directory) error {
	ps, err := readLump[plane](r, d, "planes")
	if err != nil {
		return err
	}
	l.Planes = make([]Plane, len(ps))
	for i, p := range ps {
		l.Planes[i] = Plane{
			Normal: vec.VFromA(p.Normal),
			Dist:   p.Distance,
			Type:   byte(p.Type),
		}
	}
	return nil
}

func (l *Level) loadVertexes(r *binread.Reader, d directory) error {
	vs, err := readLump[vertex](r, d, "vertexes")
	if err != nil {
		return err
	}
	l.Vertexes = make([]vec.Vec3, len(vs))
	for i, v := range vs {
		l.Vertexes[i] = vec.Vec3{X: v.X, Y: v.Y, Z: v.Z}
	}
	return nil
}

func (l *Level) loadEdges(r *binread.Reader, d directory) error {
	es, err := readLump[edgeV0](r, d, "edges")
	if err != nil {
		return err
	}
	l.Edges = make([]Edge, len(es))
	for i, e := range es {
		v0, v1 := int(e.Vertex0), int(e.Vertex1)
		if v0 >= len(l.Vertexes) || v1 >= len(l.Vertexes) {
			return errors.Wrapf(ErrBadIndex, "edge %d: vertex %d/%d of %d", i, v0, v1, len(l.Vertexes))
		}
		l.Edges[i] = Edge{V: [2]int{v0, v1}}
	}
	return nil
}

func (l *Level) loadSurfaceEdges(r *binread.Reader, d directory) error {
	se, err := readLump[int32](r, d, "surfedges")
	if err != nil {
		return err
	}
	l.EdgeRefs = make([]EdgeRef, len(se))
	for i, v := range se {
		ref := NewEdgeRef(v)
		if ref.Index >= len(l.Edges) {
			return errors.Wrapf(ErrBadIndex, "surfedge %d: edge %d of %d", i, ref.Index, len(l.Edges))
		}
		l.EdgeRefs[i] = ref
	}
	return nil
}

func (l *Level) loadTexInfo(r *binread.Reader, d directory) error {
	ts, err := readLump[surface](r, d, "texinfo")
	if err != nil {
		return err
	}
	l.TexInfos = make([]TexInfo, len(ts))
	for i, t := range ts {
		l.TexInfos[i] = TexInfo{
			Vecs: [2]TexInfoPos{
				{Pos: vec.VFromA(t.VectorS), Offset: t.DistS},
				{Pos: vec.VFromA(t.VectorT), Offset: t.DistT},
			},
			Slot:  int(t.TextureID),
			Flags: t.Animated,
		}
		// every texinfo must name a known slot, used by a face or not
		if l.Atlas != nil {
			if _, err := l.Atlas.Destination(int(t.TextureID)); err != nil {
				return errors.Wrapf(err, "texinfo %d", i)
			}
		}
	}
	return nil
}

func (l *Level) loadLighting(r *binread.Reader, d directory) error {
	sub, err := lump(r, d, "lighting")
	if err != nil {
		return err
	}
	l.Lighting, err = sub.Bytes(0, sub.Size())
	return errors.Wrap(err, "lighting lump")
}

func (l *Level) loadFaces(r *binread.Reader, d directory) error {
	fs, err := readLump[faceV0](r, d, "faces")
	if err != nil {
		return err
	}
	l.Faces = make([]Face, len(fs))
	for i, f := range fs {
		l.Faces[i] = Face{
			Plane:     int(f.PlaneID),
			Side:      int(f.Side),
			FirstEdge: int(f.ListEdgeID),
			NumEdges:  int(f.ListEdgeNumber),
			TexInfo:   int(f.TexInfoID),
			Styles:    f.LightStyle,
			LightMap:  f.LightMap,
		}
	}
	return nil
}

func (l *Level) loadSubmodels(r *binread.Reader, d directory) error {
	ms, err := readLump[dmodel](r, d, "models")
	if err != nil {
		return err
	}
	l.Models = make([]Submodel, len(ms))
	for i, m := range ms {
		s := &l.Models[i]
		// spread the mins / maxs by a pixel
		s.Mins = vec.Vec3{X: m.BoundingBox[0] - 1, Y: m.BoundingBox[1] - 1, Z: m.BoundingBox[2] - 1}
		s.Maxs = vec.Vec3{X: m.BoundingBox[3] + 1, Y: m.BoundingBox[4] + 1, Z: m.BoundingBox[5] + 1}
		s.Origin = vec.VFromA(m.Origin)
		for j, n := range m.HeadNode {
			s.HeadNode[j] = int(n)
		}
		s.VisLeafCount = int(m.VisLeafCount)
		s.FirstFace = int(m.FirstFace)
		s.FaceCount = int(m.FaceCount)
		if s.FirstFace < 0 || s.FaceCount < 0 || s.FirstFace+s.FaceCount > len(l.Faces) {
			return errors.Wrapf(ErrBadIndex, "model %d: faces [%d,+%d) of %d", i, s.FirstFace, s.FaceCount, len(l.Faces))
		}
	}
	return nil
}
