// SPDX-License-Identifier: GPL-2.0-or-later

// Package spr decodes sprite models (IDSP version 1).
package spr

import (
	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
	"kwark/palette"
	"kwark/texture"
)

var (
	ErrNotSprite         = errors.New("not a sprite")
	ErrVersion           = errors.New("wrong sprite version")
	ErrInvalidFrameCount = errors.New("invalid # of frames")
	ErrInvalidFrameType  = errors.New("invalid sprite frame type")
	ErrFrameSize         = errors.New("bad sprite frame size")
)

type parser struct {
	r   *binread.Reader
	off int64
	pal *palette.Palette
	s   *Sprite
}

// ParseSprite decodes the sprite in r, index Transparent becomes fully
// transparent.
func ParseSprite(r *binread.Reader, pal *palette.Palette) (*Sprite, error) {
	s := &Sprite{}
	if err := r.Read(0, &s.Header); err != nil {
		return nil, errors.Wrap(err, "sprite header")
	}
	h := &s.Header
	if h.ID != Magic {
		return nil, errors.Wrapf(ErrNotSprite, "id %#x", uint32(h.ID))
	}
	if h.Version != spriteVersion {
		return nil, errors.Wrapf(ErrVersion, "%d should be %d", h.Version, spriteVersion)
	}
	if h.FrameCount < 1 {
		return nil, errors.Wrapf(ErrInvalidFrameCount, "%d", h.FrameCount)
	}
	p := &parser{r: r, off: headerSize, pal: pal, s: s}
	for i := 0; i < int(h.FrameCount); i++ {
		if err := p.group(); err != nil {
			return nil, errors.Wrapf(err, "sprite frame %d", i)
		}
	}
	conlog.Debugf("spr: %d groups, %d frames, max %dx%d",
		len(s.Groups), len(s.Frames), h.MaxWidth, h.MaxHeight)
	return s, nil
}

func (p *parser) int32() (int32, error) {
	v, err := p.r.Int32(p.off)
	p.off += 4
	return v, err
}

func (p *parser) group() error {
	t, err := p.int32()
	if err != nil {
		return err
	}
	g := Group{Type: t, First: len(p.s.Frames)}
	switch t {
	case SPR_SINGLE:
		if err := p.frame(); err != nil {
			return err
		}
		g.Count = 1
	case SPR_GROUP:
		n, err := p.int32()
		if err != nil {
			return err
		}
		if n < 1 {
			return errors.Wrapf(ErrInvalidFrameCount, "group of %d", n)
		}
		if g.Times, err = p.r.Float32s(p.off, int(n)); err != nil {
			return errors.Wrap(err, "intervals")
		}
		p.off += 4 * int64(n)
		for i := 0; i < int(n); i++ {
			if err := p.frame(); err != nil {
				return err
			}
		}
		g.Count = int(n)
	default:
		return errors.Wrapf(ErrInvalidFrameType, "%d", t)
	}
	p.s.Groups = append(p.s.Groups, g)
	return nil
}

func (p *parser) frame() error {
	var fh frameHeader
	if err := p.r.Read(p.off, &fh); err != nil {
		return errors.Wrap(err, "frame header")
	}
	p.off += frameHeaderSize
	if fh.Width < 0 || fh.Height < 0 {
		return errors.Wrapf(ErrFrameSize, "%dx%d", fh.Width, fh.Height)
	}
	n := int64(fh.Width) * int64(fh.Height)
	idx, err := p.r.Bytes(p.off, n)
	if err != nil {
		return errors.Wrap(err, "frame pixels")
	}
	p.off += n
	img := texture.NewImage(int(fh.Width), int(fh.Height))
	p.pal.RGBAKeyed(img.Pix, idx, Transparent)
	p.s.Frames = append(p.s.Frames, Frame{
		Image: img,
		Up:    float32(fh.Origin[1]),
		Down:  float32(fh.Origin[1] - fh.Height),
		Left:  float32(fh.Origin[0]),
		Right: float32(fh.Width + fh.Origin[0]),
	})
	return nil
}
