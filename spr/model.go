// SPDX-License-Identifier: GPL-2.0-or-later

package spr

import (
	"github.com/chewxy/math32"

	"kwark/math/vec"
	"kwark/texture"
)

// Frame is one decoded picture. Up, Down, Left and Right are the extents of
// the quad relative to the entity origin.
type Frame struct {
	Image texture.Image
	Up    float32
	Down  float32
	Left  float32
	Right float32
}

// Group is a single frame (Type SPR_SINGLE) or a timed sequence of frames.
// Its frames are Sprite.Frames[First:First+Count].
type Group struct {
	Type  int32
	Times []float32 // end time of every frame, only for timed groups
	First int
	Count int
}

type Sprite struct {
	Header Header
	Groups []Group
	Frames []Frame
}

// FrameAt returns the index into Sprite.Frames shown at time t.
func (g *Group) FrameAt(t float32) int {
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

// Bounds is the box every orientation of the sprite fits into.
func (s *Sprite) Bounds() vec.Box {
	hw := float32(s.Header.MaxWidth / 2)
	hh := float32(s.Header.MaxHeight / 2)
	var b vec.Box
	b.Extend(vec.Vec3{X: -hw, Y: -hw, Z: -hh})
	b.Extend(vec.Vec3{X: hw, Y: hw, Z: hh})
	return b
}
