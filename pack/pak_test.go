// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"kwark/binread"
)

func buildPack(t *testing.T, names []string, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, names, files); err != nil {
		t.Fatalf("could not write pack: %v", err)
	}
	return buf.Bytes()
}

func TestPak(t *testing.T) {
	files := map[string][]byte{
		"doc1.txt":         []byte("this is the first doc 2. version\r\n"),
		"testdir/doc4.txt": []byte(`this is the fourth doc 2. version`),
	}
	data := buildPack(t, []string{"doc1.txt", "testdir/doc4.txt"}, files)
	p, err := NewReader(bytes.NewReader(data), int64(len(data)), "pak1.pak")
	if err != nil {
		t.Fatalf("could not open pak1.pak: %v", err)
	}
	if p.String() != "pak1.pak" {
		t.Errorf("pack String error: want %v got %v", "pak1.pak", p.String())
	}
	f1, err := p.Open("doc1.txt")
	if err != nil {
		t.Fatalf("Got no file 'doc1.txt': %v", err)
	}
	b1, err := io.ReadAll(f1)
	if err != nil {
		t.Fatalf("Could not read f1: %v", err)
	}
	if string(b1) != "this is the first doc 2. version\r\n" {
		t.Errorf("f1 contents is '%v'", b1)
	}
	b5, err := p.ReadFile("testdir/doc4.txt")
	if err != nil {
		t.Fatalf("Could not read f5: %v", err)
	}
	if string(b5) != `this is the fourth doc 2. version` {
		t.Errorf("f5 contents is '%v'", string(b5))
	}
}

func TestEntryExactOffsets(t *testing.T) {
	files := map[string][]byte{
		"gfx/palette.lmp": make([]byte, 768),
		"maps/start.bsp":  make([]byte, 10),
	}
	data := buildPack(t, []string{"gfx/palette.lmp", "maps/start.bsp"}, files)
	p, err := NewReader(bytes.NewReader(data), int64(len(data)), "pak0.pak")
	if err != nil {
		t.Fatal(err)
	}
	e, err := p.Entry("maps/start.bsp")
	if err != nil {
		t.Fatal(err)
	}
	want := Entry{Name: "maps/start.bsp", Offset: headerSize + 768, Size: 10}
	if e != want {
		t.Errorf("Entry = %+v, want %+v", e, want)
	}
	if len(p.Entries()) != 2 {
		t.Errorf("Entries() has %d elements, want 2", len(p.Entries()))
	}
}

func TestEntryNotFound(t *testing.T) {
	data := buildPack(t, []string{"a"}, map[string][]byte{"a": {1}})
	p, err := NewReader(bytes.NewReader(data), int64(len(data)), "pak0.pak")
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Entry("b")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Entry(b) error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Entry(b) error = %v, want os.ErrNotExist", err)
	}
	// names are compared exactly
	if _, err := p.Entry("A"); err == nil {
		t.Errorf("Entry(A) found a case folded match")
	}
}

func TestBadMagic(t *testing.T) {
	data := buildPack(t, nil, nil)
	copy(data, "KCAP")
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), "bad.pak")
	if !errors.Is(err, ErrNotPack) {
		t.Errorf("got %v, want ErrNotPack", err)
	}
}

func TestDirectoryTruncated(t *testing.T) {
	var buf bytes.Buffer
	h := header{ID: [4]byte{'P', 'A', 'C', 'K'}, Offset: headerSize, Size: 10 * entrySize}
	binary.Write(&buf, binary.LittleEndian, &h)
	data := buf.Bytes()
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), "short.pak")
	if !errors.Is(err, binread.ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestDuplicateEntry(t *testing.T) {
	data := buildPack(t, []string{"a", "a"}, map[string][]byte{"a": {1}})
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), "dup.pak")
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("got %v, want ErrDuplicateEntry", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pak"))
	var fe *binread.FileError
	if !errors.As(err, &fe) {
		t.Errorf("got %v, want FileError", err)
	}
}

func TestSearchOrder(t *testing.T) {
	dir := t.TempDir()
	p0 := buildPack(t, []string{"doc1.txt", "doc2.txt"}, map[string][]byte{
		"doc1.txt": []byte("this is the first doc\r\n"),
		"doc2.txt": []byte("this is the second doc"),
	})
	p1 := buildPack(t, []string{"doc1.txt"}, map[string][]byte{
		"doc1.txt": []byte("this is the first doc 2. version\r\n"),
	})
	if err := os.WriteFile(filepath.Join(dir, "pak0.pak"), p0, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pak1.pak"), p1, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer s.Close()
	b, err := s.ReadFile("doc1.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "this is the first doc 2. version\r\n" {
		t.Errorf("contents: %v", string(b))
	}
	b, err = s.ReadFile("doc2.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "this is the second doc" {
		t.Errorf("contents: %v", string(b))
	}
	if got := s.Names(); len(got) != 2 {
		t.Errorf("Names() = %v", got)
	}
}

func TestOpenDirEmpty(t *testing.T) {
	if _, err := OpenDir(t.TempDir()); err == nil {
		t.Error("OpenDir on an empty dir succeeded")
	}
}
