package picofs_test

import (
	"errors"
	"testing"

	"github.com/picofs/picofs"
	"github.com/stretchr/testify/assert"
)

func TestErrorWithMessage(t *testing.T) {
	newErr := picofs.ErrDiskFull.WithMessage("no free bit in the data bitmap")
	assert.Equal(
		t,
		"no space left on device: no free bit in the data bitmap",
		newErr.Error(),
		"error message is wrong")
	assert.ErrorIs(t, newErr, picofs.ErrDiskFull)
}

func TestErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := picofs.ErrFileNotFound.Wrap(originalErr)

	assert.EqualValues(
		t, "no such file: original error", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, picofs.ErrFileNotFound, "sentinel not set as parent")
}
