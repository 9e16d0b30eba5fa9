// SPDX-License-Identifier: GPL-2.0-or-later

// Package web serves the decoded assets of a pack over http.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"kwark/bsp"
	"kwark/conlog"
	"kwark/export"
	"kwark/image"
	"kwark/manifest"
	"kwark/mdl"
	"kwark/pack"
	"kwark/palette"
	"kwark/spr"
	"kwark/texture"
	"kwark/wad"
)

type Server struct {
	src manifest.Source
	pal *palette.Palette

	mu     sync.Mutex
	levels map[string]*bsp.Level
	models map[string]*mdl.Model
}

func NewServer(src manifest.Source, pal *palette.Palette) *Server {
	return &Server{
		src:    src,
		pal:    pal,
		levels: make(map[string]*bsp.Level),
		models: make(map[string]*mdl.Model),
	}
}

// Handler returns the routes wrapped with request logging and panic
// recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/entries", s.handleEntries).Methods(http.MethodGet)
	r.HandleFunc("/manifest", s.handleManifest).Methods(http.MethodGet)
	r.HandleFunc("/level/{name:.+}/textures/{slot:[0-9]+}.png", s.handleLevelTexture).Methods(http.MethodGet)
	r.HandleFunc("/level/{name:.+}/mesh.glb", s.handleLevelMesh).Methods(http.MethodGet)
	r.HandleFunc("/model/{name:.+}/skin.png", s.handleModelSkin).Methods(http.MethodGet)
	r.HandleFunc("/model/{name:.+}/frame/{frame:[0-9]+}.glb", s.handleModelFrame).Methods(http.MethodGet)
	r.HandleFunc("/sprite/{name:.+}/frame/{frame:[0-9]+}.png", s.handleSpriteFrame).Methods(http.MethodGet)
	r.HandleFunc("/wad/{name:.+}/pic/{lump}.png", s.handleWadPic).Methods(http.MethodGet)

	logw := zap.NewStdLog(conlog.L()).Writer()
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(logw, h)
}

func (s *Server) ListenAndServe(addr string) error {
	conlog.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusUnprocessableEntity
	if errors.Is(err, pack.ErrNotFound) {
		code = http.StatusNotFound
	}
	conlog.Debugf("[web] %d: %v", code, err)
	http.Error(w, err.Error(), code)
}

func (s *Server) level(name string) (*bsp.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.levels[name]; ok {
		return l, nil
	}
	r, err := s.src.Reader(name)
	if err != nil {
		return nil, err
	}
	l, err := bsp.ParseLevel(r, s.pal)
	if err != nil {
		return nil, err
	}
	s.levels[name] = l
	return l, nil
}

func (s *Server) model(name string) (*mdl.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.models[name]; ok {
		return m, nil
	}
	r, err := s.src.Reader(name)
	if err != nil {
		return nil, err
	}
	m, err := mdl.ParseModel(r, s.pal)
	if err != nil {
		return nil, err
	}
	s.models[name] = m
	return m, nil
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.src.Names())
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	if err := manifest.Build(s.src, s.pal).EncodeJSON(&b); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b.Bytes())
}

func (s *Server) handleLevelTexture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, err := s.level(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	slot, _ := strconv.Atoi(vars["slot"])
	if slot >= len(l.Atlas.Slots) || !l.Atlas.Slots[slot].Present {
		http.Error(w, "no such texture", http.StatusNotFound)
		return
	}
	s.writePNG(w, l.Atlas.Slots[slot].Image)
}

func (s *Server) writePNG(w http.ResponseWriter, img texture.Image) {
	var b bytes.Buffer
	if err := image.Write(&b, img, image.PNG, image.Options{}); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(b.Bytes())
}

func (s *Server) handleLevelMesh(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	l, err := s.level(name)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := export.Level(name, l)
	if err != nil {
		writeError(w, err)
		return
	}
	var b bytes.Buffer
	if err := export.WriteBinary(&b, doc); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Write(b.Bytes())
}

func (s *Server) handleModelSkin(w http.ResponseWriter, r *http.Request) {
	m, err := s.model(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	s.writePNG(w, m.Skin)
}

func (s *Server) handleModelFrame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, err := s.model(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	frame, _ := strconv.Atoi(vars["frame"])
	if frame >= len(m.Frames) {
		http.Error(w, "no such frame", http.StatusNotFound)
		return
	}
	doc, err := export.Model(vars["name"], m, frame)
	if err != nil {
		writeError(w, err)
		return
	}
	var b bytes.Buffer
	if err := export.WriteBinary(&b, doc); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Write(b.Bytes())
}

func (s *Server) handleSpriteFrame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rd, err := s.src.Reader(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	sp, err := spr.ParseSprite(rd, s.pal)
	if err != nil {
		writeError(w, err)
		return
	}
	frame, _ := strconv.Atoi(vars["frame"])
	if frame >= len(sp.Frames) {
		http.Error(w, "no such frame", http.StatusNotFound)
		return
	}
	s.writePNG(w, sp.Frames[frame].Image)
}

func (s *Server) handleWadPic(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rd, err := s.src.Reader(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	wd, err := wad.Load(rd)
	if err != nil {
		writeError(w, err)
		return
	}
	img, err := wd.Pic(vars["lump"], s.pal)
	if errors.Is(err, wad.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	s.writePNG(w, img)
}
