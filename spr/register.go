// SPDX-License-Identifier: GPL-2.0-or-later

package spr

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
	s, err := ParseSprite(r, pal)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sprite) Type() model.Type {
	return model.ModSprite
}

func (s *Sprite) Mins() vec.Vec3 {
	return s.Bounds().Mins
}

func (s *Sprite) Maxs() vec.Vec3 {
	return s.Bounds().Maxs
}
