// SPDX-License-Identifier: GPL-2.0-or-later

package manifest

import (
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

func (m *Manifest) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "yaml")
	}
	return enc.Close()
}

// Struct converts m into a protobuf Struct with the same field names as the
// yaml encoding.
func (m *Manifest) Struct() (*structpb.Struct, error) {
	entries := make([]any, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, e.asMap())
	}
	return structpb.NewStruct(map[string]any{"entries": entries})
}

func (e *Entry) asMap() map[string]any {
	r := map[string]any{
		"name": e.Name,
		"size": e.Size,
		"crc":  int(e.CRC),
	}
	if e.Error != "" {
		r["error"] = e.Error
	}
	if l := e.Level; l != nil {
		tex := make([]any, 0, len(l.Textures))
		for _, t := range l.Textures {
			tex = append(tex, map[string]any{
				"slot":   t.Slot,
				"name":   t.Name,
				"width":  t.Width,
				"height": t.Height,
				"class":  t.Class,
				"dest":   t.Dest,
			})
		}
		ents := make(map[string]any, len(l.Entities))
		for k, v := range l.Entities {
			ents[k] = v
		}
		r["level"] = map[string]any{
			"textures":  tex,
			"faces":     l.Faces,
			"triangles": l.Triangles,
			"models":    l.Models,
			"entities":  ents,
		}
	}
	if m := e.Model; m != nil {
		frames := make([]any, len(m.Frames))
		for i, f := range m.Frames {
			frames[i] = f
		}
		r["model"] = map[string]any{
			"skin_width":  m.SkinWidth,
			"skin_height": m.SkinHeight,
			"triangles":   m.Triangles,
			"groups":      m.Groups,
			"frames":      frames,
		}
	}
	if sp := e.Sprite; sp != nil {
		r["sprite"] = map[string]any{
			"width":  sp.Width,
			"height": sp.Height,
			"groups": sp.Groups,
			"frames": sp.Frames,
		}
	}
	if len(e.Lumps) > 0 {
		ls := make([]any, 0, len(e.Lumps))
		for _, l := range e.Lumps {
			ls = append(ls, map[string]any{
				"name": l.Name,
				"type": l.Type,
				"size": l.Size,
			})
		}
		r["lumps"] = ls
	}
	return r
}

func (m *Manifest) EncodeJSON(w io.Writer) error {
	s, err := m.Struct()
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "json")
	}
	_, err = w.Write(b)
	return err
}

// EncodeProto writes the binary protobuf encoding of Struct.
func (m *Manifest) EncodeProto(w io.Writer) error {
	s, err := m.Struct()
	if err != nil {
		return err
	}
	b, err := proto.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "proto")
	}
	_, err = w.Write(b)
	return err
}
