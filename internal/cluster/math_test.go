package cluster

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: got %v, want 1", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors: got %v, want 0", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Fatalf("opposite vectors: got %v, want -1", got)
	}
	if got := CosineSimilarity(nil, []float32{1}); got != 0 {
		t.Fatalf("empty input: got %v, want 0", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero vector: got %v, want 0", got)
	}
}

func TestMeanVector(t *testing.T) {
	mean, ok := MeanVector([][]float32{{1, 2}, {3, 4}})
	if !ok {
		t.Fatal("expected mean for non-empty input")
	}
	if mean[0] != 2 || mean[1] != 3 {
		t.Fatalf("got %v, want [2 3]", mean)
	}

	if _, ok := MeanVector(nil); ok {
		t.Fatal("expected no mean for empty input")
	}

	// Mismatched dimensions are skipped, not averaged.
	mean, ok = MeanVector([][]float32{{2, 4}, {1, 2, 3}})
	if !ok {
		t.Fatal("expected mean from matching vectors")
	}
	if mean[0] != 2 || mean[1] != 4 {
		t.Fatalf("got %v, want [2 4]", mean)
	}
}
