// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"kwark/binread"
	"kwark/math/vec"
	"kwark/model"
	"kwark/palette"
)

func init() {
	model.Register(bspVersion, load)
}

func load(r *binread.Reader, pal *palette.Palette) (model.Model, error) {
	l, err := ParseLevel(r, pal)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Level) Type() model.Type {
	return model.ModBrush
}

// Mins is the lower corner of the world submodel, or of all vertexes when
// the level has no submodels.
func (l *Level) Mins() vec.Vec3 {
	if len(l.Models) > 0 {
		return l.Models[0].Mins
	}
	b := l.Bounds()
	return b.Mins
}

func (l *Level) Maxs() vec.Vec3 {
	if len(l.Models) > 0 {
		return l.Models[0].Maxs
	}
	b := l.Bounds()
	return b.Maxs
}
