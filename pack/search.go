// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"kwark/binread"
)

// Search is an ordered set of packs. Later packs override earlier ones, the
// same way pak1.pak overrides pak0.pak.
type Search struct {
	packs []*Pack
}

// OpenDir adds pak0.pak, pak1.pak, ... from dir until the first missing one.
func OpenDir(dir string) (*Search, error) {
	s := &Search{}
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		if _, err := os.Stat(pfp); err != nil {
			break
		}
		p, err := Open(pfp)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Add(p)
	}
	if len(s.packs) == 0 {
		return nil, &binread.FileError{Op: "open", Path: filepath.Join(dir, "pak0.pak"), Err: os.ErrNotExist}
	}
	return s, nil
}

// NewSearch returns a Search over the given packs, lowest priority first.
func NewSearch(packs ...*Pack) *Search {
	return &Search{packs: packs}
}

// Add puts p on top of the search order.
func (s *Search) Add(p *Pack) {
	s.packs = append(s.packs, p)
}

// Packs returns the packs lowest priority first.
func (s *Search) Packs() []*Pack {
	return s.packs
}

func (s *Search) find(name string) (*Pack, error) {
	for i := len(s.packs) - 1; i >= 0; i-- {
		if _, err := s.packs[i].Entry(name); err == nil {
			return s.packs[i], nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, name)
}

func (s *Search) Entry(name string) (Entry, error) {
	p, err := s.find(name)
	if err != nil {
		return Entry{}, err
	}
	return p.Entry(name)
}

func (s *Search) Open(name string) (*io.SectionReader, error) {
	p, err := s.find(name)
	if err != nil {
		return nil, err
	}
	return p.Open(name)
}

func (s *Search) Reader(name string) (*binread.Reader, error) {
	p, err := s.find(name)
	if err != nil {
		return nil, err
	}
	return p.Reader(name)
}

func (s *Search) ReadFile(name string) ([]byte, error) {
	p, err := s.find(name)
	if err != nil {
		return nil, err
	}
	return p.ReadFile(name)
}

// Names returns the union of all entry names, sorted.
func (s *Search) Names() []string {
	seen := make(map[string]bool)
	var n []string
	for _, p := range s.packs {
		for _, e := range p.entries {
			if !seen[e.Name] {
				seen[e.Name] = true
				n = append(n, e.Name)
			}
		}
	}
	sort.Strings(n)
	return n
}

func (s *Search) Close() error {
	var first error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
