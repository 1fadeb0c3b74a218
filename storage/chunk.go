package storage

import (
	"errors"
	"math"
)

// Chunk sizing targets, in bytes. These mirror the widely used heuristic of
// the reference library: aim near 16 KiB per chunk, scaled by dataset size,
// clamped between 8 KiB and 1 MiB.
const (
	chunkBase = 16 * 1024
	chunkMin  = 8 * 1024
	chunkMax  = 1024 * 1024
)

// unlimitedGuess stands in for axes with no usable extent.
const unlimitedGuess = 1024

// GuessChunk derives a chunk shape for a dataset with the given current
// dimensions and element byte width. Axes of size zero (unlimited axes whose
// extent is not yet known) are guessed at 1024. maxdims is accepted for call
// symmetry with the storage schema; the heuristic works off the current
// extent. Dimensions are halved round-robin until the chunk byte size lands
// near the scaled target.
func GuessChunk(dims, maxdims []uint64, itemSize int) ([]uint64, error) {
	if len(dims) == 0 {
		return nil, errors.New("chunks not allowed for scalar datasets")
	}
	if itemSize <= 0 {
		return nil, errors.New("item size must be positive")
	}

	chunks := make([]float64, len(dims))
	for i, d := range dims {
		if d == 0 {
			chunks[i] = unlimitedGuess
			continue
		}
		chunks[i] = float64(d)
	}

	datasetSize := product(chunks) * float64(itemSize)
	targetSize := float64(chunkBase) * math.Pow(2, math.Log10(datasetSize/(1024*1024)))
	if targetSize > chunkMax {
		targetSize = chunkMax
	} else if targetSize < chunkMin {
		targetSize = chunkMin
	}

	idx := 0
	for {
		chunkBytes := product(chunks) * float64(itemSize)
		if (chunkBytes < targetSize || math.Abs(chunkBytes-targetSize)/targetSize < 0.5) &&
			chunkBytes < chunkMax {
			break
		}
		if product(chunks) == 1 {
			break
		}
		chunks[idx%len(chunks)] = math.Ceil(chunks[idx%len(chunks)] / 2)
		idx++
	}

	out := make([]uint64, len(chunks))
	for i, c := range chunks {
		out[i] = uint64(c)
	}
	return out, nil
}

func product(xs []float64) float64 {
	p := 1.0
	for _, x := range xs {
		p *= x
	}
	return p
}
