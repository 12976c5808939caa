package topics

import "math/rand"

// nmfSeed fixes the factorization's random initialization so a fit over
// the same corpus always produces the same topics.
const nmfSeed = 42

const (
	nmfIterations   = 200
	inferIterations = 50
	nmfEpsilon      = 1e-9
)

// factorize decomposes the non-negative matrix V (docs x terms) into
// W (docs x k) and H (k x terms) by multiplicative updates minimizing the
// Frobenius reconstruction error.
func factorize(V [][]float64, k int) (W, H [][]float64) {
	docs := len(V)
	terms := len(V[0])

	rng := rand.New(rand.NewSource(nmfSeed))
	W = randomMatrix(rng, docs, k)
	H = randomMatrix(rng, k, terms)

	for iter := 0; iter < nmfIterations; iter++ {
		// H <- H * (W^T V) / (W^T W H)
		WtV := matMul(transpose(W), V)
		WtWH := matMul(matMul(transpose(W), W), H)
		hadamardUpdate(H, WtV, WtWH)

		// W <- W * (V H^T) / (W H H^T)
		VHt := matMul(V, transpose(H))
		WHHt := matMul(W, matMul(H, transpose(H)))
		hadamardUpdate(W, VHt, WHHt)
	}
	return W, H
}

// project solves the non-negative least squares problem for one document
// row against a fixed H, using the same multiplicative update.
func project(v []float64, H [][]float64) []float64 {
	k := len(H)
	rng := rand.New(rand.NewSource(nmfSeed))
	w := make([]float64, k)
	for i := range w {
		w[i] = rng.Float64() + nmfEpsilon
	}

	Ht := transpose(H)
	HHt := matMul(H, Ht)

	for iter := 0; iter < inferIterations; iter++ {
		// w <- w * (v H^T) / (w H H^T)
		var vHt = make([]float64, k)
		for j := 0; j < k; j++ {
			for t := range v {
				vHt[j] += v[t] * Ht[t][j]
			}
		}
		for j := 0; j < k; j++ {
			var denom float64
			for l := 0; l < k; l++ {
				denom += w[l] * HHt[l][j]
			}
			w[j] *= vHt[j] / (denom + nmfEpsilon)
		}
	}
	return w
}

// reconstructionError is the squared Frobenius distance between V and WH.
func reconstructionError(V, W, H [][]float64) float64 {
	WH := matMul(W, H)
	var sum float64
	for i := range V {
		for j := range V[i] {
			d := V[i][j] - WH[i][j]
			sum += d * d
		}
	}
	return sum
}

func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.Float64() + nmfEpsilon
		}
	}
	return m
}

func transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return nil
	}
	t := make([][]float64, len(m[0]))
	for j := range t {
		t[j] = make([]float64, len(m))
		for i := range m {
			t[j][i] = m[i][j]
		}
	}
	return t
}

func matMul(a, b [][]float64) [][]float64 {
	rows, inner, cols := len(a), len(b), len(b[0])
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for l := 0; l < inner; l++ {
			if a[i][l] == 0 {
				continue
			}
			av := a[i][l]
			for j := 0; j < cols; j++ {
				out[i][j] += av * b[l][j]
			}
		}
	}
	return out
}

// hadamardUpdate applies m <- m * num / denom elementwise.
func hadamardUpdate(m, num, denom [][]float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= num[i][j] / (denom[i][j] + nmfEpsilon)
		}
	}
}
