// SPDX-License-Identifier: GPL-2.0-or-later

// Package model dispatches an asset to the decoder registered for the
// magic number in its first four bytes.
package model

import (
	"sync"

	"github.com/pkg/errors"

	"kwark/binread"
	"kwark/palette"
)

var ErrUnknownFormat = errors.New("unknown file format")

type LoadFunc func(r *binread.Reader, pal *palette.Palette) (Model, error)

type Source interface {
	Reader(name string) (*binread.Reader, error)
}

var (
	mu      sync.RWMutex
	loaders = make(map[uint32]LoadFunc)
)

// Register makes f the decoder for files starting with magic.
func Register(magic uint32, f LoadFunc) {
	mu.Lock()
	defer mu.Unlock()
	loaders[magic] = f
}

// Decode reads the magic of r and runs the matching decoder.
func Decode(r *binread.Reader, pal *palette.Palette) (Model, error) {
	magic, err := r.Int32(0)
	if err != nil {
		return nil, err
	}
	mu.RLock()
	f, ok := loaders[uint32(magic)]
	mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "magic %#x", uint32(magic))
	}
	return f(r, pal)
}

func Load(src Source, name string, pal *palette.Palette) (Model, error) {
	r, err := src.Reader(name)
	if err != nil {
		return nil, err
	}
	m, err := Decode(r, pal)
	return m, errors.Wrap(err, name)
}
