// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
	"kwark/math/vec"
	"kwark/palette"
	"kwark/texture"
)

const headerSize = 84

var (
	ErrNotAlias             = errors.New("not an alias model")
	ErrVersion              = errors.New("wrong alias version")
	ErrHeader               = errors.New("bad alias header")
	ErrUnsupportedGroupSkin = errors.New("group skins not supported")
	ErrInvalidFrameCount    = errors.New("invalid # of frames")
	ErrInvalidGroupType     = errors.New("invalid frame group type")
	ErrBadIndex             = errors.New("index out of range")
)

type parser struct {
	r     *binread.Reader
	off   int64
	h     *Header
	st    []skinVertex
	tris  []triangle
	model *Model
}

// ParseModel decodes the alias model in r. Only the first skin is decoded,
// index palette.SkinTransparent becomes fully transparent.
func ParseModel(r *binread.Reader, pal *palette.Palette) (*Model, error) {
	m := &Model{}
	if err := r.Read(0, &m.Header); err != nil {
		return nil, errors.Wrap(err, "alias header")
	}
	h := &m.Header
	if h.ID != Magic {
		return nil, errors.Wrapf(ErrNotAlias, "id %#x", uint32(h.ID))
	}
	if h.Version != aliasVersion {
		return nil, errors.Wrapf(ErrVersion, "%d should be %d", h.Version, aliasVersion)
	}
	switch {
	case h.SkinCount < 1:
		return nil, errors.Wrapf(ErrHeader, "invalid # of skins: %d", h.SkinCount)
	case h.SkinWidth <= 0 || h.SkinHeight <= 0:
		return nil, errors.Wrapf(ErrHeader, "skin %dx%d", h.SkinWidth, h.SkinHeight)
	case h.VerticeCount <= 0:
		return nil, errors.Wrapf(ErrHeader, "invalid # of vertices: %d", h.VerticeCount)
	case h.TriangleCount <= 0:
		return nil, errors.Wrapf(ErrHeader, "invalid # of triangles: %d", h.TriangleCount)
	case h.FrameCount < 1:
		return nil, errors.Wrapf(ErrHeader, "invalid # of frames: %d", h.FrameCount)
	}

	p := &parser{r: r, off: headerSize, h: h, model: m}
	if err := p.skins(pal); err != nil {
		return nil, err
	}
	if err := p.tables(); err != nil {
		return nil, err
	}
	for g := 0; g < int(h.FrameCount); g++ {
		if err := p.group(); err != nil {
			return nil, errors.Wrapf(err, "frame group %d", g)
		}
	}
	conlog.Debugf("mdl: %d vertices, %d triangles, %d groups, %d frames, skin %dx%d",
		h.VerticeCount, h.TriangleCount, len(m.Groups), len(m.Frames), h.SkinWidth, h.SkinHeight)
	return m, nil
}

func (p *parser) int32() (int32, error) {
	v, err := p.r.Int32(p.off)
	p.off += 4
	return v, err
}

func (p *parser) read(data any, count, elemSize int64) error {
	if err := p.r.CheckCount(p.off, count, elemSize); err != nil {
		return err
	}
	if err := p.r.Read(p.off, data); err != nil {
		return err
	}
	p.off += count * elemSize
	return nil
}

// readSlice checks count against the remaining bytes before allocating.
func readSlice[T any](p *parser, count, elemSize int64) ([]T, error) {
	if err := p.r.CheckCount(p.off, count, elemSize); err != nil {
		return nil, err
	}
	out := make([]T, count)
	if err := p.read(out, count, elemSize); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) skins(pal *palette.Palette) error {
	w, h := int(p.h.SkinWidth), int(p.h.SkinHeight)
	n := int64(w) * int64(h)
	for i := 0; i < int(p.h.SkinCount); i++ {
		t, err := p.int32()
		if err != nil {
			return errors.Wrapf(err, "skin %d", i)
		}
		if t != ALIAS_SKIN_SINGLE {
			return errors.Wrapf(ErrUnsupportedGroupSkin, "skin %d has type %d", i, t)
		}
		if i > 0 {
			if err := p.r.CheckCount(p.off, n, 1); err != nil {
				return errors.Wrapf(err, "skin %d", i)
			}
			p.off += n
			continue
		}
		idx, err := p.r.Bytes(p.off, n)
		if err != nil {
			return errors.Wrap(err, "skin")
		}
		p.off += n
		p.model.Skin = texture.NewImage(w, h)
		pal.RGBAKeyed(p.model.Skin.Pix, idx, palette.SkinTransparent)
	}
	return nil
}

func (p *parser) tables() error {
	nv, nt := int64(p.h.VerticeCount), int64(p.h.TriangleCount)
	var err error
	if p.st, err = readSlice[skinVertex](p, nv, skinVertexSize); err != nil {
		return errors.Wrap(err, "skin vertices")
	}
	if p.tris, err = readSlice[triangle](p, nt, triangleSize); err != nil {
		return errors.Wrap(err, "triangles")
	}
	for i, t := range p.tris {
		for _, v := range t.Vertices {
			if v < 0 || int64(v) >= nv {
				return errors.Wrapf(ErrBadIndex, "triangle %d: vertex %d of %d", i, v, nv)
			}
		}
	}
	return nil
}

func (p *parser) group() error {
	t, err := p.int32()
	if err != nil {
		return err
	}
	g := FrameGroup{Type: t, First: len(p.model.Frames)}
	switch {
	case t == ALIAS_SINGLE:
		if err := p.frame(); err != nil {
			return err
		}
		f := &p.model.Frames[g.First]
		g.Min, g.Max, g.Count = f.Min, f.Max, 1
	case t > 0:
		var gh groupHeader
		if err := p.read(&gh, 1, groupHeaderSize); err != nil {
			return err
		}
		if gh.Count < 1 {
			return errors.Wrapf(ErrInvalidFrameCount, "%d", gh.Count)
		}
		g.Min, g.Max = p.position(gh.Min), p.position(gh.Max)
		if g.Times, err = readSlice[float32](p, int64(gh.Count), 4); err != nil {
			return errors.Wrap(err, "intervals")
		}
		for i := 0; i < int(gh.Count); i++ {
			if err := p.frame(); err != nil {
				return err
			}
		}
		g.Count = int(gh.Count)
	default:
		return errors.Wrapf(ErrInvalidGroupType, "%d", t)
	}
	p.model.Groups = append(p.model.Groups, g)
	return nil
}

func (p *parser) frame() error {
	var fh frameHeader
	if err := p.read(&fh, 1, frameHeaderSize); err != nil {
		return errors.Wrap(err, "frame header")
	}
	nv := int64(p.h.VerticeCount)
	verts, err := readSlice[frameVertex](p, nv, frameVertexSize)
	if err != nil {
		return errors.Wrapf(err, "frame %s", binread.String(fh.Name[:]))
	}
	p.model.Frames = append(p.model.Frames, Frame{
		Name:     binread.String(fh.Name[:]),
		Min:      p.position(fh.Min),
		Max:      p.position(fh.Max),
		Vertices: p.expand(verts),
	})
	return nil
}

// position unpacks a vertex, swapping the y and z axis.
func (p *parser) position(v frameVertex) vec.Vec3 {
	s, o := p.h.Scale, p.h.ScaleOrigin
	return vec.Vec3{
		X: float32(v.PackedPosition[0])*s[0] + o[0],
		Y: -(float32(v.PackedPosition[2]) * s[2]) - o[2],
		Z: float32(v.PackedPosition[1])*s[1] + o[1],
	}
}

// expand turns the indexed triangles into three vertices each, in the order
// of the triangle table.
func (p *parser) expand(verts []frameVertex) []Vertex {
	w, h := float32(p.h.SkinWidth), float32(p.h.SkinHeight)
	out := make([]Vertex, 0, 3*len(p.tris))
	for _, t := range p.tris {
		for _, i := range t.Vertices {
			st := p.st[i]
			v := Vertex{
				Pos: p.position(verts[i]),
				UV:  [2]float32{float32(st.S) / w, float32(st.T) / h},
			}
			if t.FacesFront == 0 && st.Onseam != 0 {
				v.UV[0] += 0.5
			}
			out = append(out, v)
		}
	}
	return out
}
