package cluster

import "math"

func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na <= 0 || nb <= 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func MeanVector(vs [][]float32) ([]float32, bool) {
	if len(vs) == 0 {
		return nil, false
	}
	var dim int
	for _, v := range vs {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil, false
	}
	sum := make([]float64, dim)
	n := 0
	for _, v := range vs {
		if len(v) != dim {
			continue
		}
		for i := 0; i < dim; i++ {
			sum[i] += float64(v[i])
		}
		n++
	}
	if n == 0 {
		return nil, false
	}
	out := make([]float32, dim)
	for i := 0; i < dim; i++ {
		out[i] = float32(sum[i] / float64(n))
	}
	return out, true
}

func squaredDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
