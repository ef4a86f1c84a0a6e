package embeddings

import (
	"math"
	"testing"
)

func TestCosineIdentical(t *testing.T) {
	v := []float32{0.5, 0.5, 0.1}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cosine of identical vectors = %f, want 1.0", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := Cosine(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("cosine of orthogonal vectors = %f, want 0", got)
	}
}

func TestCosineMismatchedOrEmpty(t *testing.T) {
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("cosine of empty vectors = %f, want 0", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("cosine of mismatched vectors = %f, want 0", got)
	}
}

func TestSimilarityMatrix(t *testing.T) {
	m := SimilarityMatrix([][]float32{{1, 0}, {0, 1}, {1, 0}})
	if len(m) != 3 {
		t.Fatalf("expected 3x3 matrix, got %d rows", len(m))
	}
	for i := range m {
		if m[i][i] != 1.0 {
			t.Errorf("diagonal [%d][%d] = %f, want 1.0", i, i, m[i][i])
		}
	}
	if math.Abs(m[0][2]-1.0) > 1e-9 {
		t.Errorf("identical vectors similarity = %f, want 1.0", m[0][2])
	}
	if math.Abs(m[0][1]) > 1e-9 {
		t.Errorf("orthogonal vectors similarity = %f, want 0", m[0][1])
	}
}
