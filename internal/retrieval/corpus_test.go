package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFragments() []Fragment {
	return []Fragment{
		{ResumeID: "alice", ChunkID: 0, Text: "## Summary\nBackend engineer"},
		{ResumeID: "bob", ChunkID: 0, Text: "## Skills\nPython, SQL"},
		{ResumeID: "alice", ChunkID: 1, Text: "## Experience\nBuilt payment systems in Go"},
	}
}

func TestNewCorpus(t *testing.T) {
	frags := sampleFragments()

	t.Run("aligned matrix", func(t *testing.T) {
		c, err := NewCorpus(frags, [][]float32{{1, 0}, {0, 1}, {1, 1}})
		require.NoError(t, err)
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, 2, c.Dim())
		assert.True(t, c.HasVectors())
	})

	t.Run("no vectors", func(t *testing.T) {
		c, err := NewCorpus(frags, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Dim())
		assert.False(t, c.HasVectors())
	})

	t.Run("row count mismatch", func(t *testing.T) {
		_, err := NewCorpus(frags, [][]float32{{1, 0}, {0, 1}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := NewCorpus(frags, [][]float32{{1, 0}, {0, 1, 2}, {1, 1}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestCorpus_Lookups(t *testing.T) {
	c, err := NewCorpus(sampleFragments(), nil)
	require.NoError(t, err)

	f, ok := c.Lookup("alice", 1)
	require.True(t, ok)
	assert.Contains(t, f.Text, "payment systems")

	_, ok = c.Lookup("alice", 7)
	assert.False(t, ok)

	alice := c.ResumeFragments("alice")
	require.Len(t, alice, 2)
	assert.Equal(t, 0, alice[0].ChunkID)
	assert.Equal(t, 1, alice[1].ChunkID)

	assert.Empty(t, c.ResumeFragments("nobody"))
	assert.Equal(t, []string{"alice", "bob"}, c.ResumeIDs())
}
