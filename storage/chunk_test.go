package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdpserv/h5json/storage"
)

func TestGuessChunk_SmallDatasetKeepsExtent(t *testing.T) {
	// 10 float64 elements is far below the minimum chunk target; the chunk
	// covers the whole dataset.
	chunk, err := storage.GuessChunk([]uint64{10}, []uint64{10}, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10}, chunk)
}

func TestGuessChunk_UnlimitedAxisGuess(t *testing.T) {
	// A zero extent stands for an unlimited axis whose size is unknown.
	chunk, err := storage.GuessChunk([]uint64{0}, []uint64{0}, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1024}, chunk)
}

func TestGuessChunk_HalvesRoundRobin(t *testing.T) {
	chunk, err := storage.GuessChunk([]uint64{100, 100}, []uint64{100, 100}, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{25, 25}, chunk)
}

func TestGuessChunk_LargeDatasetBounds(t *testing.T) {
	chunk, err := storage.GuessChunk([]uint64{1000000}, []uint64{1000000}, 8)
	require.NoError(t, err)
	require.Len(t, chunk, 1)
	assert.Less(t, chunk[0], uint64(1000000))
	// The resulting chunk stays within the byte-size clamp.
	bytes := chunk[0] * 8
	assert.Less(t, bytes, uint64(1024*1024))
	assert.Greater(t, bytes, uint64(4*1024))
}

func TestGuessChunk_Errors(t *testing.T) {
	_, err := storage.GuessChunk(nil, nil, 8)
	require.Error(t, err)
	_, err = storage.GuessChunk([]uint64{10}, []uint64{10}, 0)
	require.Error(t, err)
}
