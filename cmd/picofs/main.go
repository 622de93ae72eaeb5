// picofs is a command-line tool for creating and manipulating picofs disk
// images: raw files holding the blocks of the embedded file system.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/picofs/picofs/disks"
)

func main() {
	app := &cli.App{
		Name:  "picofs",
		Usage: "Manage picofs disk image files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "geometry",
				Aliases: []string{"g"},
				Value:   "classroom",
				Usage:   "disk geometry preset; one of: " + presetList(),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create a blank disk image",
				ArgsUsage: "IMAGE",
				Action:    formatImage,
			},
			{
				Name:      "put",
				Usage:     "Store a file, replacing any previous contents",
				ArgsUsage: "IMAGE NAME [SOURCE]",
				Action:    putFile,
			},
			{
				Name:      "append",
				Usage:     "Append to a stored file",
				ArgsUsage: "IMAGE NAME [SOURCE]",
				Action:    appendFile,
			},
			{
				Name:      "cat",
				Usage:     "Print a stored file to stdout",
				ArgsUsage: "IMAGE NAME",
				Action:    catFile,
			},
			{
				Name:      "ls",
				Usage:     "List the stored files",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "csv", Usage: "emit the listing as CSV"},
				},
				Action: listFiles,
			},
			{
				Name:      "fsck",
				Usage:     "Check the image for cross-structure inconsistencies",
				ArgsUsage: "IMAGE",
				Action:    checkImage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err)
	}
}

func presetList() string {
	list := ""
	for i, slug := range disks.PresetSlugs() {
		if i > 0 {
			list += ", "
		}
		list += slug
	}
	return list
}
