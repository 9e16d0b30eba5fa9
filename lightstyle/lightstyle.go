// SPDX-License-Identifier: GPL-2.0-or-later

// Package lightstyle evaluates the animated light strings of the world
// entity, one character per tenth of a second.
package lightstyle

import (
	"github.com/pkg/errors"
)

const (
	// Rate is the number of characters per second.
	Rate = 10
	// Normal is the raw value of 'm', full brightness.
	Normal = 12 * 22
)

var ErrBadStyle = errors.New("bad light style")

type Style struct {
	unprocessed string
	lightMap    []int
	average     int
	peak        int
}

// Parse builds a style from characters x with 'a' <= x <= 'z'.
func Parse(s string) (*Style, error) {
	st := &Style{unprocessed: s, lightMap: make([]int, len(s))}
	// shift to zero based and scale by 22
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return nil, errors.Wrapf(ErrBadStyle, "%q at %d", s[i], i)
		}
		st.lightMap[i] = (int(s[i]) - int('a')) * 22
	}
	st.average, st.peak = avgPeak(st.lightMap)
	return st, nil
}

func avgPeak(d []int) (int, int) {
	if len(d) == 0 {
		return Normal, Normal
	}
	s := 0
	m := 0
	for _, v := range d {
		s += v
		if v > m {
			m = v
		}
	}
	return s / len(d), m
}

func (s *Style) String() string {
	return s.unprocessed
}

// Raw returns the value at time t in seconds, Normal being full brightness.
func (s *Style) Raw(t float64) int {
	if len(s.lightMap) == 0 {
		return Normal
	}
	idx := int(t * Rate)
	if idx < 0 {
		idx = 0
	}
	return s.lightMap[idx%len(s.lightMap)]
}

// Value returns the brightness at time t, 1 for 'm'.
func (s *Style) Value(t float64) float32 {
	return float32(s.Raw(t)) / Normal
}

func (s *Style) Average() float32 {
	return float32(s.average) / Normal
}

func (s *Style) Peak() float32 {
	return float32(s.peak) / Normal
}

// world.qc
var defaults = []string{
	"m",
	"mmnmmommommnonmmonqnmmo",
	"abcdefghijklmnopqrstuvwxyzyxwvutsrqponmlkjihgfedcba",
	"mmmmmaaaaammmmmaaaaaabcdefgabcdefg",
	"mamamamamama",
	"jklmnopqrstuvwxyzyxwvutsrqponmlkj",
	"nmonqnmomnmomomno",
	"mmmaaaabcdefgmmmmaaaammmaamm",
	"mmmaaammmaaammmabcdefaaaammmmabcdefmmmaaaa",
	"aaaaaaaazzzzzzzz",
	"mmamammmmammamamaaamammma",
	"abcdefghijklmnopqrrqponmlkjihgfedcba",
}

// Defaults returns the styles 0 to 11 the stock game sets up.
func Defaults() []*Style {
	r := make([]*Style, len(defaults))
	for i, d := range defaults {
		s, err := Parse(d)
		if err != nil {
			panic(err)
		}
		r[i] = s
	}
	return r
}
