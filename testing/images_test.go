package testing_test

import (
	"bytes"
	"testing"

	"github.com/picofs/picofs/disks"
	pt "github.com/picofs/picofs/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndReloadImage(t *testing.T) {
	geo, err := disks.GetPredefinedGeometry("classroom")
	require.NoError(t, err)

	files := map[string]string{
		"alpha": "first file",
		"beta":  "second file, a little longer than the first one",
		"gamma": "third",
	}
	fsys, disk := pt.BuildImage(t, geo, files)

	for name, contents := range files {
		assert.Equal(t, contents, pt.ReadWholeFile(t, fsys, name))
	}
	require.NoError(t, fsys.CheckConsistency())

	// A reloaded image must read back identically.
	var image bytes.Buffer
	_, err = disk.WriteTo(&image)
	require.NoError(t, err)

	reloaded, _ := pt.LoadImage(t, bytes.NewReader(image.Bytes()), geo)
	for name, contents := range files {
		assert.Equal(t, contents, pt.ReadWholeFile(t, reloaded, name))
	}
	require.NoError(t, reloaded.CheckConsistency())
}
