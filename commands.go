// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"kwark/bsp"
	"kwark/config"
	"kwark/conlog"
	"kwark/crc"
	"kwark/export"
	"kwark/image"
	"kwark/lightstyle"
	"kwark/manifest"
	"kwark/mdl"
	"kwark/model"
	"kwark/pack"
	"kwark/palette"
	"kwark/spr"
	"kwark/texture"
	"kwark/upload"
	"kwark/wad"
	"kwark/web"
)

type env struct {
	cfg *config.Config
	src *pack.Search
	pal *palette.Palette
}

// setup merges defaults, config file and flags, starts logging and opens the
// packs.
func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("game-dir") {
		cfg.GameDir = c.String("game-dir")
	}
	if c.IsSet("pak") {
		cfg.Pak = c.String("pak")
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("format") {
		cfg.ImageFormat = c.String("format")
	}
	if c.IsSet("scale") {
		cfg.ImageScale = c.Int("scale")
	}
	if c.IsSet("edge-fix") {
		cfg.EdgeFix = c.Bool("edge-fix")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := conlog.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if cfg.Pak != "" {
		p, err := pack.Open(cfg.Pak)
		if err != nil {
			return nil, err
		}
		e.src = pack.NewSearch(p)
	} else if e.src, err = pack.OpenDir(cfg.GameDir); err != nil {
		return nil, err
	}
	if e.pal, err = palette.Load(e.src); err != nil {
		e.src.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) Close() {
	e.src.Close()
}

func (e *env) outPath(parts ...string) (string, error) {
	p := filepath.Join(append([]string{e.cfg.OutputDir}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", err
	}
	return p, nil
}

func (e *env) level(name string) (*bsp.Level, error) {
	r, err := e.src.Reader(name)
	if err != nil {
		return nil, err
	}
	return bsp.ParseLevel(r, e.pal)
}

func (e *env) model(name string) (*mdl.Model, error) {
	r, err := e.src.Reader(name)
	if err != nil {
		return nil, err
	}
	return mdl.ParseModel(r, e.pal)
}

var unsafeName = strings.NewReplacer("*", "#", "/", "_", "\\", "_", ":", "_", "\x00", "_")

// fileName turns a texture name into a single path element. '*' is not
// allowed on every filesystem and separators or dot names would leave the
// output directory.
func fileName(n string) string {
	n = unsafeName.Replace(n)
	if strings.Trim(n, ".") == "" {
		return "_" + n
	}
	return n
}

func base(name string) string {
	return fileName(strings.TrimSuffix(path.Base(name), path.Ext(name)))
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list",
			Usage: "List the entries of the packs",
			Action: func(c *cli.Context) error {
				e, err := setup(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer e.Close()
				for _, n := range e.src.Names() {
					en, err := e.src.Entry(n)
					if err != nil {
						return cli.Exit(err, 1)
					}
					data, err := e.src.ReadFile(n)
					if err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Printf("%9d %04x %s\n", en.Size, crc.Sum(data), n)
				}
				return nil
			},
		},
		{
			Name:      "textures",
			Usage:     "Write the textures of a level",
			ArgsUsage: "MAP",
			Action:    texturesAction,
		},
		{
			Name:      "level",
			Usage:     "Decode a level and write it as glb",
			ArgsUsage: "MAP",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:  "require",
					Value: cli.NewStringSlice("info_player_start"),
					Usage: "entity classes that must be present",
				},
			},
			Action: levelAction,
		},
		{
			Name:      "model",
			Usage:     "Decode an alias model and write its skin and frames",
			ArgsUsage: "MDL",
			Flags: []cli.Flag{
				&cli.IntSliceFlag{
					Name:  "frame",
					Usage: "frames to export, all if not set",
				},
			},
			Action: modelAction,
		},
		{
			Name:      "sprite",
			Usage:     "Write the frames of a sprite",
			ArgsUsage: "SPR",
			Action:    spriteAction,
		},
		{
			Name:      "pics",
			Usage:     "Write the pictures of a WAD2 file",
			ArgsUsage: "[WAD]",
			Action:    picsAction,
		},
		{
			Name:      "entities",
			Usage:     "Print the entities of a level",
			ArgsUsage: "MAP",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "class",
					Usage: "only entities of this class",
				},
			},
			Action: entitiesAction,
		},
		{
			Name:      "inspect",
			Usage:     "Dump the decoded headers of an entry",
			ArgsUsage: "ENTRY",
			Action:    inspectAction,
		},
		{
			Name:  "manifest",
			Usage: "Summarize all levels and models",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "encoding",
					Value: "yaml",
					Usage: "yaml, json or proto",
				},
				&cli.StringFlag{
					Name:  "out",
					Usage: "write to file instead of stdout",
				},
			},
			Action: manifestAction,
		},
		{
			Name:      "lightstyles",
			Usage:     "Print the default light styles",
			ArgsUsage: "[TIME]",
			Action:    lightstylesAction,
		},
		{
			Name:  "serve",
			Usage: "Serve the decoded assets over http",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "listen",
					EnvVars: []string{"KWARK_LISTEN"},
					Usage:   "address to listen on",
				},
			},
			Action: func(c *cli.Context) error {
				e, err := setup(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer e.Close()
				return web.NewServer(e.src, e.pal).ListenAndServe(e.cfg.Listen)
			},
		},
	}
}

func needArg(c *cli.Context) {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
}

func texturesAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := c.Args().First()
	l, err := e.level(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	f, o := e.cfg.Format(), e.cfg.ImageOptions()
	write := func(n string, img texture.Image) error {
		p, err := e.outPath(base(name), fileName(n)+f.Ext())
		if err != nil {
			return err
		}
		conlog.Debugf("writing %s", p)
		return image.WriteFile(p, img, f, o)
	}
	count := 0
	for i, s := range l.Atlas.Slots {
		if !s.Present || s.Image.Width == 0 {
			continue
		}
		n := fmt.Sprintf("%03d_%s", i, s.Header.String())
		if err := write(n, s.Image); err != nil {
			return cli.Exit(err, 1)
		}
		count++
		if s.Dest.Kind == texture.Sky {
			if err := write(n+"_front", l.Atlas.Sky[s.Dest.Index]); err != nil {
				return cli.Exit(err, 1)
			}
			if err := write(n+"_back", l.Atlas.Sky[s.Dest.Index+1]); err != nil {
				return cli.Exit(err, 1)
			}
		}
	}
	conlog.Printf("%s: wrote %d textures", name, count)
	return nil
}

func levelAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := c.Args().First()
	l, err := e.level(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := l.Require(c.StringSlice("require")...); err != nil {
		return cli.Exit(err, 1)
	}
	b := l.Bounds()
	fmt.Printf("%s: %d vertexes, %d faces, %d triangles, %d submodels\n",
		name, len(l.Vertexes), len(l.Faces), len(l.Triangles)/3, len(l.Models))
	fmt.Printf("bounds %v %v\n", b.Mins, b.Maxs)
	fmt.Printf("textures: %d default, %d sky, %d fluid\n",
		len(l.Atlas.Default), len(l.Atlas.Sky), len(l.Atlas.Fluid))
	if start, err := l.FindEntity("info_player_start"); err == nil {
		o, _ := start.Origin()
		a, _ := start.Angle()
		fmt.Printf("start %v angle %v\n", o, a)
	}

	reg := upload.NewRegistry()
	hs, err := upload.UploadLevel(reg, l)
	if err != nil {
		return cli.Exit(err, 1)
	}
	mesh, _ := reg.Mesh(hs.Mesh)
	textures, _ := reg.Len()
	fmt.Printf("upload: %d textures, %d mesh bytes\n", textures, len(mesh))

	doc, err := export.Level(name, l)
	if err != nil {
		return cli.Exit(err, 1)
	}
	p, err := e.outPath(base(name) + ".glb")
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := writeDoc(p, func(f *os.File) error { return export.WriteBinary(f, doc) }); err != nil {
		return cli.Exit(err, 1)
	}
	conlog.Printf("wrote %s", p)
	return nil
}

func writeDoc(p string, w func(*os.File) error) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := w(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func modelAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := c.Args().First()
	m, err := e.model(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("%s: skin %dx%d, %d triangles, %d groups, %d frames\n",
		name, m.Skin.Width, m.Skin.Height, m.TriangleCount(), len(m.Groups), len(m.Frames))
	for i, g := range m.Groups {
		fmt.Printf("group %d: type %d, frames %d..%d, times %v\n", i, g.Type, g.First, g.First+g.Count-1, g.Times)
	}

	f := e.cfg.Format()
	p, err := e.outPath(base(name) + "_skin" + f.Ext())
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := image.WriteFile(p, m.Skin, f, e.cfg.ImageOptions()); err != nil {
		return cli.Exit(err, 1)
	}
	doc, err := export.Model(name, m, c.IntSlice("frame")...)
	if err != nil {
		return cli.Exit(err, 1)
	}
	p, err = e.outPath(base(name) + ".glb")
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := writeDoc(p, func(f *os.File) error { return export.WriteBinary(f, doc) }); err != nil {
		return cli.Exit(err, 1)
	}
	conlog.Printf("wrote %s", p)
	return nil
}

func spriteAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := c.Args().First()
	r, err := e.src.Reader(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	s, err := spr.ParseSprite(r, e.pal)
	if err != nil {
		return cli.Exit(err, 1)
	}
	f, o := e.cfg.Format(), e.cfg.ImageOptions()
	for i, fr := range s.Frames {
		p, err := e.outPath(base(name), fmt.Sprintf("%03d%s", i, f.Ext()))
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := image.WriteFile(p, fr.Image, f, o); err != nil {
			return cli.Exit(err, 1)
		}
	}
	conlog.Printf("%s: wrote %d frames", name, len(s.Frames))
	return nil
}

func picsAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := "gfx.wad"
	if c.NArg() > 0 {
		name = c.Args().First()
	}
	r, err := e.src.Reader(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	w, err := wad.Load(r)
	if err != nil {
		return cli.Exit(err, 1)
	}
	pics, err := w.Pics(e.pal)
	if err != nil {
		return cli.Exit(err, 1)
	}
	f, o := e.cfg.Format(), e.cfg.ImageOptions()
	for n, img := range pics {
		p, err := e.outPath(base(name), fileName(n)+f.Ext())
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := image.WriteFile(p, img, f, o); err != nil {
			return cli.Exit(err, 1)
		}
	}
	conlog.Printf("%s: wrote %d pictures", name, len(pics))
	return nil
}

func entitiesAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	l, err := e.level(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	ents := l.Entities
	if class := c.String("class"); class != "" {
		ents = l.EntitiesByClass(class)
	}
	for _, en := range ents {
		fmt.Println("{")
		for _, k := range en.PropertyNames() {
			v, _ := en.Property(k)
			fmt.Printf("  %q %q\n", k, v)
		}
		fmt.Println("}")
	}
	return nil
}

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	MaxDepth:                3,
}

func inspectAction(c *cli.Context) error {
	needArg(c)
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	name := c.Args().First()
	en, err := e.src.Entry(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	spewConfig.Dump(en)
	if strings.ToLower(path.Ext(name)) == ".wad" {
		r, err := e.src.Reader(name)
		if err != nil {
			return cli.Exit(err, 1)
		}
		w, err := wad.Load(r)
		if err != nil {
			return cli.Exit(err, 1)
		}
		spewConfig.Dump(w.Lumps())
		return nil
	}
	m, err := model.Load(e.src, name, e.pal)
	if errors.Is(err, model.ErrUnknownFormat) {
		return nil
	}
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("%s model, mins %v maxs %v\n", m.Type(), m.Mins(), m.Maxs())
	switch m := m.(type) {
	case *bsp.Level:
		headers := make([]texture.Header, len(m.Atlas.Slots))
		for i, s := range m.Atlas.Slots {
			headers[i] = s.Header
		}
		spewConfig.Dump(headers, m.Models)
	case *mdl.Model:
		spewConfig.Dump(m.Header, m.Groups)
	case *spr.Sprite:
		spewConfig.Dump(m.Header, m.Groups)
	}
	return nil
}

func manifestAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer e.Close()
	m := manifest.Build(e.src, e.pal)

	out := os.Stdout
	if p := c.String("out"); p != "" {
		f, err := os.Create(p)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer f.Close()
		out = f
	}
	switch c.String("encoding") {
	case "yaml":
		err = m.EncodeYAML(out)
	case "json":
		err = m.EncodeJSON(out)
	case "proto":
		err = m.EncodeProto(out)
	default:
		err = errors.Errorf("unknown encoding %q", c.String("encoding"))
	}
	if err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func lightstylesAction(c *cli.Context) error {
	t := 0.0
	if c.NArg() > 0 {
		var err error
		if t, err = strconv.ParseFloat(c.Args().First(), 64); err != nil {
			return cli.Exit(err, 1)
		}
	}
	for i, s := range lightstyle.Defaults() {
		fmt.Printf("%2d %.2f avg %.2f peak %.2f %s\n", i, s.Value(t), s.Average(), s.Peak(), s)
	}
	return nil
}
