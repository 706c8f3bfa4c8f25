package sfserr_test

import (
	"errors"
	"testing"

	"github.com/dargueta/simplefs/sfserr"
	"github.com/stretchr/testify/assert"
)

func TestFSErrorWithMessage(t *testing.T) {
	newErr := sfserr.ErrBadMagic.WithMessage("0xdeadbeef")
	assert.Equal(t, "superblock has wrong magic number: 0xdeadbeef", newErr.Error())
	assert.ErrorIs(t, newErr, sfserr.ErrBadMagic)
}

func TestFSErrorWrap(t *testing.T) {
	originalErr := errors.New("short write")
	newErr := sfserr.ErrIO.Wrap(originalErr)

	assert.Equal(t, "disk I/O failed: short write", newErr.Error())
	assert.ErrorIs(t, newErr, originalErr)
	assert.ErrorIs(t, newErr, sfserr.ErrIO)
}
