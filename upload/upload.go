// SPDX-License-Identifier: GPL-2.0-or-later

// Package upload is the boundary to the renderer. Decoded images and
// vertex buffers are handed to a TextureUploader or MeshUploader which
// returns an opaque Handle.
package upload

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"kwark/conlog"
)

var (
	ErrSize          = errors.New("buffer size mismatch")
	ErrUnknownHandle = errors.New("unknown handle")
)

type Handle uuid.UUID

func newHandle() Handle {
	return Handle(uuid.Must(uuid.NewV7()))
}

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

type TextureUploader interface {
	// UploadTexture takes an RGBA8 buffer of w*h pixels.
	UploadTexture(pix []byte, w, h int) (Handle, error)
}

type MeshUploader interface {
	// UploadMesh takes size bytes of interleaved vertex data.
	UploadMesh(buf []byte, size int) (Handle, error)
}

type Uploader interface {
	TextureUploader
	MeshUploader
}

type Texture struct {
	Width  int
	Height int
	Pix    []byte
}

// Registry keeps copies of everything uploaded in memory. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.Mutex
	textures map[Handle]*Texture
	meshes   map[Handle][]byte
}

func NewRegistry() *Registry {
	return &Registry{
		textures: make(map[Handle]*Texture),
		meshes:   make(map[Handle][]byte),
	}
}

func (r *Registry) UploadTexture(pix []byte, w, h int) (Handle, error) {
	if w <= 0 || h <= 0 || len(pix) != w*h*4 {
		return Handle{}, errors.Wrapf(ErrSize, "%d bytes for %dx%d", len(pix), w, h)
	}
	t := &Texture{Width: w, Height: h, Pix: append([]byte(nil), pix...)}
	id := newHandle()
	r.mu.Lock()
	r.textures[id] = t
	r.mu.Unlock()
	conlog.Debugf("upload: texture %v %dx%d", id, w, h)
	return id, nil
}

func (r *Registry) UploadMesh(buf []byte, size int) (Handle, error) {
	if size < 0 || size != len(buf) {
		return Handle{}, errors.Wrapf(ErrSize, "%d bytes, declared %d", len(buf), size)
	}
	id := newHandle()
	r.mu.Lock()
	r.meshes[id] = append([]byte(nil), buf...)
	r.mu.Unlock()
	conlog.Debugf("upload: mesh %v %d bytes", id, size)
	return id, nil
}

func (r *Registry) Texture(h Handle) (*Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.textures[h]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "texture %v", h)
	}
	return t, nil
}

func (r *Registry) Mesh(h Handle) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[h]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "mesh %v", h)
	}
	return m, nil
}

// Release drops h, which may be a texture or a mesh.
func (r *Registry) Release(h Handle) {
	r.mu.Lock()
	delete(r.textures, h)
	delete(r.meshes, h)
	r.mu.Unlock()
}

// Len returns the number of stored textures and meshes.
func (r *Registry) Len() (textures, meshes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.textures), len(r.meshes)
}
