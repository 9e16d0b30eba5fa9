// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"kwark/conlog"
)

func main() {
	app := cli.NewApp()

	app.Name = "kwark"
	app.Usage = "Quake pack, level and model extraction"
	app.Version = "0.3.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"KWARK_CONFIG"},
			Usage:   "path to a yaml config file",
		},
		&cli.StringFlag{
			Name:    "game-dir",
			Aliases: []string{"basedir"},
			EnvVars: []string{"KWARK_GAME_DIR"},
			Usage:   "directory with pak0.pak, pak1.pak, ...",
		},
		&cli.StringFlag{
			Name:    "pak",
			EnvVars: []string{"KWARK_PAK"},
			Usage:   "single pack file, overrides game-dir",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			EnvVars: []string{"KWARK_OUTPUT_DIR"},
			Usage:   "output directory",
		},
		&cli.StringFlag{
			Name:    "format",
			EnvVars: []string{"KWARK_IMAGE_FORMAT"},
			Usage:   "image format: png, webp, tga or bmp",
		},
		&cli.IntFlag{
			Name:    "scale",
			EnvVars: []string{"KWARK_IMAGE_SCALE"},
			Usage:   "integer image upscale",
		},
		&cli.BoolFlag{
			Name:    "edge-fix",
			EnvVars: []string{"KWARK_EDGE_FIX"},
			Usage:   "bleed colors into transparent pixels",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"KWARK_LOG_LEVEL"},
			Usage:   "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:    "log-file",
			EnvVars: []string{"KWARK_LOG_FILE"},
			Usage:   "additional rotating json log file",
		},
	}

	app.Commands = commands()
	app.After = func(*cli.Context) error {
		conlog.Sync()
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
