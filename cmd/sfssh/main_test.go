package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBlockCountAcceptsRawInteger(t *testing.T) {
	blocks, err := resolveBlockCount("360")
	require.NoError(t, err)
	assert.EqualValues(t, 360, blocks)
}

func TestResolveBlockCountAcceptsPresetSlug(t *testing.T) {
	blocks, err := resolveBlockCount("floppy")
	require.NoError(t, err)
	assert.EqualValues(t, 360, blocks)
}

func TestResolveBlockCountRejectsUnknownValue(t *testing.T) {
	_, err := resolveBlockCount("not-a-real-preset")
	assert.Error(t, err)
}
