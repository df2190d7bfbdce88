package cluster

import (
	"testing"
)

func TestPartitionEmpty(t *testing.T) {
	labels := Partition(nil, 4)
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}

func TestPartitionSingleVector(t *testing.T) {
	labels := Partition([][]float32{{0.1, 0.2}}, 4)
	if len(labels) != 1 || labels[0] != 0 {
		t.Fatalf("expected [0], got %v", labels)
	}
}

func TestPartitionLabelRange(t *testing.T) {
	vectors := [][]float32{
		{1, 0}, {0.9, 0.1}, {1.1, -0.1},
		{0, 1}, {0.1, 0.9}, {-0.1, 1.1},
		{-1, -1}, {-0.9, -1.1},
	}
	k := 3
	labels := Partition(vectors, k)
	if len(labels) != len(vectors) {
		t.Fatalf("expected %d labels, got %d", len(vectors), len(labels))
	}
	for i, l := range labels {
		if l < 0 || l >= k {
			t.Fatalf("label %d out of range at index %d", l, i)
		}
	}
}

func TestPartitionCapsKAtN(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}
	labels := Partition(vectors, 10)
	for i, l := range labels {
		if l < 0 || l >= len(vectors) {
			t.Fatalf("label %d out of range at index %d", l, i)
		}
	}
}

func TestPartitionDeterministic(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}, {0, 0.9, 0.1}, {0, 0, 1}, {0.1, 0, 0.9},
	}
	first := Partition(vectors, 3)
	for run := 0; run < 5; run++ {
		again := Partition(vectors, 3)
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d: labels differ at %d: %v vs %v", run, i, first, again)
			}
		}
	}
}

func TestPartitionSeparatesDistinctGroups(t *testing.T) {
	vectors := [][]float32{
		{10, 0}, {10.1, 0.1}, {9.9, -0.1},
		{-10, 0}, {-10.1, 0.1}, {-9.9, -0.1},
	}
	labels := Partition(vectors, 2)

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Fatalf("first group split across clusters: %v", labels)
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Fatalf("second group split across clusters: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Fatalf("distinct groups merged: %v", labels)
	}
}
