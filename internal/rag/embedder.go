package rag

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"math"
)

// Embedder turns texts into vectors of a fixed length.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// HashEmbedder is a deterministic offline embedder. Identical texts map to
// identical unit vectors; it carries no semantic signal beyond that.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a HashEmbedder producing dim-length vectors.
func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimensions() int {
	return h.dim
}

func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = hashEmbed(t, h.dim)
	}
	return out, nil
}

// hashEmbed seeds a linear congruential generator with the text's sha1 and
// L2-normalizes the sequence.
func hashEmbed(text string, dim int) []float32 {
	const (
		a = 1664525
		c = 1013904223
		m = 1<<31 - 1
	)

	sum := sha1.Sum([]byte(text))
	x := binary.BigEndian.Uint32(sum[:4])

	v := make([]float32, dim)
	var norm float64
	for i := range v {
		x = (a*x + c) & m
		f := 2*float64(x)/float64(m) - 1
		v[i] = float32(f)
		norm += f * f
	}

	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}
