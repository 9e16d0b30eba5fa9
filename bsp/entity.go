// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	qmath "kwark/math"
	"kwark/math/vec"
)

var (
	ErrEntitySyntax  = errors.New("bad entity text")
	ErrMissingEntity = errors.New("missing entity")
)

type Entity struct {
	properties map[string]string
	src        []byte
}

func NewEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string), src: p}
	// parse the entity line by line
	lines := bytes.Split(p, []byte("\n"))
	for _, l := range lines {
		// look for something of the form
		// "key" "value"
		q := bytes.IndexByte(l, '"')
		if q == -1 {
			continue
		}
		r := l[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		key := string(r[:q])
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		e.properties[key] = string(r[:q])
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Name returns the classname.
func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// PropertyNames returns the keys in sorted order.
func (e *Entity) PropertyNames() []string {
	n := make([]string, 0, len(e.properties))
	for k := range e.properties {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Source returns the text the entity was parsed from, braces included.
func (e *Entity) Source() []byte {
	return e.src
}

// Origin parses the "origin" property, three space separated numbers.
func (e *Entity) Origin() (vec.Vec3, bool) {
	v, ok := e.properties["origin"]
	if !ok {
		return vec.Vec3{}, false
	}
	f := strings.Fields(v)
	if len(f) != 3 {
		return vec.Vec3{}, false
	}
	var a [3]float32
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return vec.Vec3{}, false
		}
		a[i] = float32(x)
	}
	return vec.VFromA(a), true
}

// Angle parses the "angle" property, the yaw in degrees.
func (e *Entity) Angle() (float32, bool) {
	v, ok := e.properties["angle"]
	if !ok {
		return 0, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(x), true
}

// Yaw returns the "angle" property within [0,360). The values -1 (up) and
// -2 (down) are not a yaw.
func (e *Entity) Yaw() (float32, bool) {
	a, ok := e.Angle()
	if !ok || a == -1 || a == -2 {
		return 0, false
	}
	return qmath.AngleMod32(a), true
}

func ParseEntities(data []byte) ([]*Entity, error) {
	/*
		The data looks like:
		{
		  "name" "value"
		  "name2" "value2"
		}
		{
		  "name3" "value"
		  {
		    ()()()...
		  }
		}
		But I have not seen the nested stuff
	*/
	// First split the entities
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				return nil, errors.Wrapf(ErrEntitySyntax, "unexpected '}' at %d", i)
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			q ^= 1
		}
	}
	if start != -1 {
		return nil, errors.Wrapf(ErrEntitySyntax, "unclosed '{' at %d", start)
	}
	es := make([]*Entity, 0, len(ess))
	for _, e := range ess {
		es = append(es, NewEntity(e))
	}
	return es, nil
}

// EntitiesByClass returns all entities with the given classname.
func (l *Level) EntitiesByClass(class string) []*Entity {
	var r []*Entity
	for _, e := range l.Entities {
		if n, _ := e.Name(); n == class {
			r = append(r, e)
		}
	}
	return r
}

// FindEntity returns the first entity with the given classname.
func (l *Level) FindEntity(class string) (*Entity, error) {
	for _, e := range l.Entities {
		if n, _ := e.Name(); n == class {
			return e, nil
		}
	}
	return nil, errors.Wrapf(ErrMissingEntity, "%s", class)
}

// Require checks that an entity of every class is present.
func (l *Level) Require(classes ...string) error {
	for _, c := range classes {
		if _, err := l.FindEntity(c); err != nil {
			return err
		}
	}
	return nil
}
