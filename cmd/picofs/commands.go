package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/picofs/picofs/disks"
	"github.com/picofs/picofs/fs"
	"github.com/picofs/picofs/ramdisk"
)

// loadFileSystem opens the image named by the first positional argument
// under the geometry selected by --geometry.
func loadFileSystem(c *cli.Context) (*fs.FileSystem, *ramdisk.Disk, error) {
	geo, err := disks.GetPredefinedGeometry(c.String("geometry"))
	if err != nil {
		return nil, nil, err
	}

	imagePath := c.Args().Get(0)
	if imagePath == "" {
		return nil, nil, fmt.Errorf("an IMAGE argument is required")
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	disk, err := ramdisk.FromReader(file, geo.BlockSize, geo.TotalBlocks)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %q: %w", imagePath, err)
	}
	log.WithFields(log.Fields{
		"image":    imagePath,
		"geometry": c.String("geometry"),
	}).Debug("loaded disk image")

	fsys, err := fs.New(disk, geo)
	if err != nil {
		return nil, nil, err
	}
	return fsys, disk, nil
}

// saveImage writes the disk back to the image file.
func saveImage(c *cli.Context, disk *ramdisk.Disk) error {
	imagePath := c.Args().Get(0)
	file, err := os.Create(imagePath)
	if err != nil {
		return err
	}
	if _, err := disk.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// readSource reads the contents to store: the optional third positional
// argument names a host file, otherwise stdin is consumed.
func readSource(c *cli.Context) ([]byte, error) {
	sourcePath := c.Args().Get(2)
	if sourcePath == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(sourcePath)
}

func formatImage(c *cli.Context) error {
	geo, err := disks.GetPredefinedGeometry(c.String("geometry"))
	if err != nil {
		return err
	}
	imagePath := c.Args().Get(0)
	if imagePath == "" {
		return fmt.Errorf("an IMAGE argument is required")
	}

	file, err := os.Create(imagePath)
	if err != nil {
		return err
	}
	disk := ramdisk.New(geo.BlockSize, geo.TotalBlocks)
	if _, err := disk.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"image":  imagePath,
		"blocks": geo.TotalBlocks,
		"bytes":  geo.BlockSize * geo.TotalBlocks,
	}).Info("created blank image")
	return nil
}

func putFile(c *cli.Context) error {
	return storeFile(c, (*fs.FileSystem).OpenCreate)
}

func appendFile(c *cli.Context) error {
	return storeFile(c, (*fs.FileSystem).OpenAppend)
}

func storeFile(
	c *cli.Context, open func(*fs.FileSystem, string) (int, error),
) error {
	name := c.Args().Get(1)
	if name == "" {
		return fmt.Errorf("a NAME argument is required")
	}

	contents, err := readSource(c)
	if err != nil {
		return err
	}

	fsys, disk, err := loadFileSystem(c)
	if err != nil {
		return err
	}

	fd, err := open(fsys, name)
	if err != nil {
		return err
	}
	if err := fsys.Write(fd, contents); err != nil {
		return err
	}
	if err := fsys.Close(fd); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"name":  name,
		"bytes": len(contents),
	}).Debug("stored file")
	return saveImage(c, disk)
}

func catFile(c *cli.Context) error {
	name := c.Args().Get(1)
	if name == "" {
		return fmt.Errorf("a NAME argument is required")
	}

	fsys, _, err := loadFileSystem(c)
	if err != nil {
		return err
	}

	fd, err := fsys.OpenRead(name)
	if err != nil {
		return err
	}
	buffer := make([]byte, fsys.Geometry().BlockSize)
	for {
		n, err := fsys.Read(fd, buffer)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(buffer[:n]); err != nil {
			return err
		}
		if n < len(buffer) {
			return fsys.Close(fd)
		}
	}
}

func listFiles(c *cli.Context) error {
	fsys, _, err := loadFileSystem(c)
	if err != nil {
		return err
	}

	entries, err := fsys.ListEntries()
	if err != nil {
		return err
	}

	if c.Bool("csv") {
		return gocsv.Marshal(&entries, os.Stdout)
	}
	for _, entry := range entries {
		fmt.Printf("%-16s %5d B  %d blocks\n", entry.Name, entry.Size, entry.Blocks)
	}
	return nil
}

func checkImage(c *cli.Context) error {
	fsys, _, err := loadFileSystem(c)
	if err != nil {
		return err
	}

	stat, err := fsys.Stat()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"files":       stat.Files,
		"blocks_free": stat.BlocksFree,
	}).Info("image statistics")

	if err := fsys.CheckConsistency(); err != nil {
		return fmt.Errorf("image is inconsistent: %w", err)
	}
	fmt.Println("image is consistent")
	return nil
}
