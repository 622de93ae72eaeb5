package disks_test

import (
	"testing"

	"github.com/picofs/picofs/disks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPresetValidates(t *testing.T) {
	slugs := disks.PresetSlugs()
	require.NotEmpty(t, slugs)

	for _, slug := range slugs {
		geo, err := disks.GetPredefinedGeometry(slug)
		require.NoError(t, err, "preset %q", slug)
		assert.NoError(t, geo.Validate(), "preset %q", slug)
	}
}

func TestClassroomPreset(t *testing.T) {
	geo, err := disks.GetPredefinedGeometry("classroom")
	require.NoError(t, err)

	assert.EqualValues(t, 64, geo.BlockSize)
	assert.EqualValues(t, 255, geo.TotalBlocks)
	assert.EqualValues(t, 512, geo.MaxFileBytes())
	assert.EqualValues(t, 32, geo.MaxFilesStored)
}

func TestUnknownSlug(t *testing.T) {
	_, err := disks.GetPredefinedGeometry("floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classroom", "error should list known slugs")
}
