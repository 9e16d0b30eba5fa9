// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"kwark/binread"
	"kwark/math/vec"
	"kwark/model"
	"kwark/palette"
)

func init() {
	model.Register(Magic, load)
}

func load(r *binread.Reader, pal *palette.Palette) (model.Model, error) {
	m, err := ParseModel(r, pal)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Type() model.Type {
	return model.ModAlias
}

func (m *Model) box() vec.Box {
	var b vec.Box
	for i := range m.Frames {
		for _, v := range m.Frames[i].Vertices {
			b.Extend(v.Pos)
		}
	}
	return b
}

// Mins is the lower corner of the box around every frame.
func (m *Model) Mins() vec.Vec3 {
	return m.box().Mins
}

func (m *Model) Maxs() vec.Vec3 {
	return m.box().Maxs
}
