package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclass.dev/pkg/reclass/internal/model"
)

func TestTreeRoundTrip(t *testing.T) {
	ctx := context.Background()
	tree := NewTree("mem://localhost/adapter-tree")

	require.NoError(t, tree.Upload(ctx, "b/nested/two.bin", []byte{2}))
	require.NoError(t, tree.Upload(ctx, "a/one.bin", []byte{1}))

	paths, err := tree.List(ctx)
	require.NoError(t, err)

	// Listing is lexical regardless of upload order.
	assert.Equal(t, []model.Path{"a/one.bin", "b/nested/two.bin"}, paths)

	data, err := tree.Download(ctx, "b/nested/two.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data)
}

func TestTreeDownloadMissing(t *testing.T) {
	ctx := context.Background()
	tree := NewTree("mem://localhost/adapter-missing")

	_, err := tree.Download(ctx, "absent.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.bin")
}

func TestTreeRoot(t *testing.T) {
	assert.Equal(t, "mem://localhost/r", NewTree("mem://localhost/r").Root())
}
