package factor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	rotationMaxIterations = 1000
	rotationTolerance     = 1e-8
)

// orthomax applies an orthogonal rotation to the loading matrix using the
// SVD-based orthomax family: gamma=1 gives varimax, gamma=0 quartimax.
// Rows are Kaiser-normalized before rotation and restored afterwards.
func orthomax(loadings *mat.Dense, method string) (*mat.Dense, int, error) {
	var gamma float64
	switch method {
	case RotationVarimax:
		gamma = 1.0
	case RotationQuartimax:
		gamma = 0.0
	default:
		return nil, 0, fmt.Errorf("unsupported rotation method %q", method)
	}

	p, m := loadings.Dims()
	if m < 2 {
		// A single factor has nothing to rotate against
		out := mat.DenseCopyOf(loadings)
		return out, 0, nil
	}

	// Kaiser normalization: scale each row to unit communality
	norms := make([]float64, p)
	working := mat.NewDense(p, m, nil)
	for i := 0; i < p; i++ {
		sum := 0.0
		for f := 0; f < m; f++ {
			v := loadings.At(i, f)
			sum += v * v
		}
		norms[i] = math.Sqrt(sum)
		for f := 0; f < m; f++ {
			if norms[i] > 0 {
				working.Set(i, f, loadings.At(i, f)/norms[i])
			}
		}
	}

	rotation := identity(m)
	criterion := 0.0
	converged := false
	iterations := 0

	rotated := mat.NewDense(p, m, nil)
	target := mat.NewDense(p, m, nil)
	var middle mat.Dense

	for iter := 1; iter <= rotationMaxIterations; iter++ {
		iterations = iter
		rotated.Mul(working, rotation)

		// target = rotated^3 - (gamma/p) * rotated * diag(column sums of rotated^2)
		colSums := make([]float64, m)
		for f := 0; f < m; f++ {
			for i := 0; i < p; i++ {
				v := rotated.At(i, f)
				colSums[f] += v * v
			}
		}
		for i := 0; i < p; i++ {
			for f := 0; f < m; f++ {
				v := rotated.At(i, f)
				target.Set(i, f, v*v*v-(gamma/float64(p))*v*colSums[f])
			}
		}

		middle.Mul(working.T(), target)

		var svd mat.SVD
		if ok := svd.Factorize(&middle, mat.SVDThin); !ok {
			return nil, iterations, fmt.Errorf("svd failed at rotation iteration %d", iter)
		}

		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)
		rotation.Mul(&u, v.T())

		next := 0.0
		for _, s := range svd.Values(nil) {
			next += s
		}
		if next <= criterion*(1+rotationTolerance) {
			converged = true
			break
		}
		criterion = next
	}

	if !converged {
		return nil, iterations, fmt.Errorf("%w after %d iterations", ErrNoConvergence, iterations)
	}

	rotated.Mul(working, rotation)
	for i := 0; i < p; i++ {
		for f := 0; f < m; f++ {
			rotated.Set(i, f, rotated.At(i, f)*norms[i])
		}
	}
	return rotated, iterations, nil
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
