// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"*water0", "#water0"},
		{"wall", "wall"},
		{"../../etc/x", ".._.._etc_x"},
		{`..\x`, ".._x"},
		{"..", "_.."},
		{".", "_."},
		{"", "_"},
		{"c:x", "c_x"},
	}
	for _, tt := range tests {
		if got := fileName(tt.in); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputStaysInDir(t *testing.T) {
	dir := filepath.Join("out", "maps")
	for _, n := range []string{"../x", "../../x", "/abs", `..\..\x`, "..", "a/../../b"} {
		p := filepath.Join(dir, fileName(n))
		if filepath.Dir(p) != dir {
			t.Errorf("fileName(%q) escapes %s: %s", n, dir, p)
		}
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"maps/e1m1.bsp", "e1m1"},
		{"progs/player.mdl", "player"},
		{"..", "_."},
		{"maps/..", "_."},
	}
	for _, tt := range tests {
		got := base(tt.in)
		if got != tt.want {
			t.Errorf("base(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("base(%q) = %q has a separator", tt.in, got)
		}
	}
}
