package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "copied", Copied.String())
	assert.Equal(t, "transformed", Transformed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestPathIsClass(t *testing.T) {
	assert.True(t, Path("a/b/C.class").IsClass())
	assert.False(t, Path("a/b/C.classx").IsClass())
	assert.False(t, Path("META-INF/MANIFEST.MF").IsClass())
}

func TestNormalize(t *testing.T) {
	opts := RunOptions{}.Normalize()

	assert.NotNil(t, opts.ClassInclusionVoter)
	assert.NotNil(t, opts.TransformationVoter)
	assert.NotNil(t, opts.ResourceVoter)
	assert.Equal(t, 1, opts.Threads)

	// Explicit settings survive normalization.
	opts = RunOptions{TransformationVoter: RejectAll, Threads: 8}.Normalize()
	assert.False(t, opts.TransformationVoter("a.class"))
	assert.Equal(t, 8, opts.Threads)
}
