package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolver(t *testing.T) {
	t.Run("EmptyRoot", func(t *testing.T) {
		_, err := NewResolver("")
		assert.Error(t, err)
	})

	t.Run("ValidRoot", func(t *testing.T) {
		r, err := NewResolver(t.TempDir())
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(r.Root()))
	})
}

func TestResolverAbs(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)

	t.Run("RelativeJoinsRoot", func(t *testing.T) {
		abs, err := r.Abs("cabinet/contract.pdf")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "cabinet", "contract.pdf"), abs)
	})

	t.Run("AbsolutePassesThrough", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "other.pdf")
		abs, err := r.Abs(outside)
		require.NoError(t, err)
		assert.Equal(t, outside, abs)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := r.Abs("")
		assert.Error(t, err)
	})
}

func TestResolverRel(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)

	t.Run("InsideVault", func(t *testing.T) {
		assert.Equal(t, "cabinet/a.pdf", r.Rel(filepath.Join(root, "cabinet", "a.pdf")))
	})

	t.Run("OutsideVaultStaysAbsolute", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "b.pdf")
		assert.Equal(t, outside, r.Rel(outside))
	})
}

func TestResolverEnsure(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)

	t.Run("Inside", func(t *testing.T) {
		abs, err := r.Ensure("cabinet/doc.pdf")
		require.NoError(t, err)
		assert.True(t, r.Within(abs))
	})

	t.Run("TraversalRejected", func(t *testing.T) {
		_, err := r.Ensure("../escape.pdf")
		assert.Error(t, err)
	})
}
