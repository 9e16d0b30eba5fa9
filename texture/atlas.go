// SPDX-License-Identifier: GPL-2.0-or-later

package texture

import (
	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/conlog"
	"kwark/palette"
)

const headerSize = 40

// Header is the on-disk miptex header. Offsets are relative to the header
// and point to the four mip levels.
type Header struct {
	Name    [16]byte
	Width   uint32
	Height  uint32
	Offsets [4]uint32
}

func (h *Header) String() string {
	return binread.String(h.Name[:])
}

type Slot struct {
	Header  Header
	Present bool
	Offset  int32 // directory offset relative to the atlas
	Class   Class
	Image   Image // first mip level, decoded
	Dest    Destination
}

// Atlas is the decoded texture lump of a level.
type Atlas struct {
	Slots   []Slot
	Default []Image
	Sky     []Image // front, back pairs
	Fluid   []Image
}

// ParseAtlas decodes the texture directory found in r. Every present texture
// is decoded, the class only decides where it is routed to.
func ParseAtlas(r *binread.Reader, pal *palette.Palette) (*Atlas, error) {
	count, err := r.Int32(0)
	if err != nil {
		return nil, errors.Wrap(err, "texture count")
	}
	if err := r.CheckCount(4, int64(count), 4); err != nil {
		return nil, errors.Wrap(err, "texture directory")
	}
	offsets := make([]int32, count)
	if err := r.Read(4, offsets); err != nil {
		return nil, errors.Wrap(err, "texture directory")
	}

	a := &Atlas{Slots: make([]Slot, count)}
	for i, off := range offsets {
		s := &a.Slots[i]
		s.Offset = off
		if off > 0 {
			if err := r.Read(int64(off), &s.Header); err != nil {
				return nil, errors.Wrapf(err, "texture header %d", i)
			}
			s.Present = true
		}
		if err := a.decode(r, pal, i); err != nil {
			return nil, err
		}
	}
	conlog.Debugf("atlas: %d slots, %d default, %d sky, %d fluid",
		len(a.Slots), len(a.Default), len(a.Sky), len(a.Fluid))
	return a, nil
}

func (a *Atlas) decode(r *binread.Reader, pal *palette.Palette, i int) error {
	s := &a.Slots[i]
	name := s.Header.String()
	s.Class = Classify(name, s.Header.Width, s.Header.Height)

	if s.Present {
		n := int64(s.Header.Width) * int64(s.Header.Height)
		indices, err := r.Bytes(int64(s.Offset)+int64(s.Header.Offsets[0]), n)
		if err != nil {
			return errors.Wrapf(err, "texture %d (%s) pixels", i, name)
		}
		s.Image = NewImage(int(s.Header.Width), int(s.Header.Height))
		pal.RGBA(s.Image.Pix, indices)
	}

	switch s.Class {
	case ClassDebug:
		s.Dest = Destination{Kind: NotRenderable, Reason: ReasonDebug}
		if !s.Present {
			s.Dest.Reason = ReasonAbsent
		}
	case ClassSky:
		front, back, err := SplitSky(s.Image)
		if err != nil {
			return errors.Wrapf(err, "texture %d (%s)", i, name)
		}
		s.Dest = Destination{Kind: Sky, Index: len(a.Sky)}
		a.Sky = append(a.Sky, front, back)
	case ClassFluid:
		s.Dest = Destination{Kind: Fluid, Index: len(a.Fluid)}
		a.Fluid = append(a.Fluid, s.Image)
	default:
		s.Dest = Destination{Kind: Default, Index: len(a.Default)}
		a.Default = append(a.Default, s.Image)
	}
	conlog.Debugf("texture %d %q %dx%d: %v -> %v", i, name, s.Header.Width, s.Header.Height, s.Class, s.Dest)
	return nil
}

// Destination returns the routing of slot. Slots outside the atlas or
// without a header are ErrUnknownSlot.
func (a *Atlas) Destination(slot int) (Destination, error) {
	if slot < 0 || slot >= len(a.Slots) {
		return Destination{}, errors.Wrapf(ErrUnknownSlot, "slot %d of %d", slot, len(a.Slots))
	}
	if !a.Slots[slot].Present {
		return Destination{}, errors.Wrapf(ErrUnknownSlot, "slot %d is absent", slot)
	}
	return a.Slots[slot].Dest, nil
}

// Image returns the image a destination refers to.
func (a *Atlas) Image(d Destination) (Image, bool) {
	var arr []Image
	switch d.Kind {
	case Default:
		arr = a.Default
	case Sky:
		arr = a.Sky
	case Fluid:
		arr = a.Fluid
	default:
		return Image{}, false
	}
	if d.Index < 0 || d.Index >= len(arr) {
		return Image{}, false
	}
	return arr[d.Index], true
}

// Size returns the size of the destination image of slot, which is what
// texture coordinates are normalized with. ok is false for slots that are
// not renderable.
func (a *Atlas) Size(slot int) (w, h int, ok bool) {
	d, err := a.Destination(slot)
	if err != nil || !d.Renderable() {
		return 0, 0, false
	}
	img, ok := a.Image(d)
	if !ok {
		return 0, 0, false
	}
	return img.Width, img.Height, true
}
