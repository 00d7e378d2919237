// Package factor implements the linear factor-extraction routine used to
// derive deprivation-indicator weights.
//
// The routine is principal-component based: the sample covariance matrix of
// the input is eigen-decomposed, loadings for the retained factors are the
// eigenvectors scaled by the square root of their eigenvalues, and an
// optional orthomax rotation (varimax or quartimax) is applied. Eigenvalues,
// explained-variance shares and communalities are returned as structured
// diagnostics; rendering them (scree plot, tables) is a concern of the
// reporting layer, not of this package.
package factor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rotation method names accepted by Analyze
const (
	RotationVarimax   = "varimax"
	RotationQuartimax = "quartimax"
	RotationNone      = "none"
)

var (
	// ErrSingularCovariance indicates the covariance matrix has insufficient
	// rank for the requested number of factors
	ErrSingularCovariance = errors.New("singular covariance matrix")

	// ErrNoConvergence indicates the rotation did not converge
	ErrNoConvergence = errors.New("factor rotation did not converge")
)

// Result contains the factor-extraction outputs and diagnostics
type Result struct {
	Indicators        []string  `json:"indicators"`
	NumFactors        int       `json:"num_factors"`
	NumObservations   int       `json:"num_observations"`
	Rotation          string    `json:"rotation"`
	Loadings          *mat.Dense `json:"-"`                  // indicators x factors
	Eigenvalues       []float64 `json:"eigenvalues"`         // all, descending
	ExplainedVariance []float64 `json:"explained_variance"`  // proportion per component
	Communalities     []float64 `json:"communalities"`       // per indicator
	RotationIterations int      `json:"rotation_iterations"`
}

// Loading returns the loading of indicator i on factor f
func (r *Result) Loading(i, f int) float64 {
	return r.Loadings.At(i, f)
}

// ValidRotation reports whether name is a supported rotation method
func ValidRotation(name string) bool {
	switch name {
	case RotationVarimax, RotationQuartimax, RotationNone:
		return true
	}
	return false
}

// Analyze runs PCA-based factor extraction over data (observations x
// indicators) and returns loadings for the first nFactors components plus
// diagnostics. The indicators slice names the columns and is used in error
// and diagnostic output.
func Analyze(data *mat.Dense, indicators []string, nFactors int, rotation string) (*Result, error) {
	n, p := data.Dims()
	if p != len(indicators) {
		return nil, fmt.Errorf("analyze: %d columns but %d indicator names", p, len(indicators))
	}
	if n < 2 {
		return nil, fmt.Errorf("analyze: need at least 2 observations, got %d", n)
	}
	if nFactors < 1 || nFactors > p {
		return nil, fmt.Errorf("analyze: factor count %d outside [1, %d]", nFactors, p)
	}
	if !ValidRotation(rotation) {
		return nil, fmt.Errorf("analyze: unknown rotation method %q", rotation)
	}

	cov, constant := covarianceMatrix(data)
	if len(constant) > 0 {
		names := make([]string, len(constant))
		for i, idx := range constant {
			names[i] = indicators[idx]
		}
		return nil, fmt.Errorf("%w: zero-variance indicators %v over %d zones", ErrSingularCovariance, names, n)
	}

	// Scree diagnostics come from the covariance matrix (classic PCA);
	// loadings come from the correlation matrix so indicators on very
	// different scales contribute comparably.
	eigenvalues, _, err := eigenDescending(cov)
	if err != nil {
		return nil, fmt.Errorf("analyze %d indicators over %d zones: %w", p, n, err)
	}

	corrValues, vectors, err := eigenDescending(correlationMatrix(cov))
	if err != nil {
		return nil, fmt.Errorf("analyze %d indicators over %d zones: %w", p, n, err)
	}

	// Retained factors must carry real variance; rank-deficient input cannot
	// support the requested factor count.
	tol := 1e-10 * corrValues[0]
	for f := 0; f < nFactors; f++ {
		if corrValues[f] <= tol {
			return nil, fmt.Errorf("%w: rank %d below requested %d factors (%d indicators, %d zones)",
				ErrSingularCovariance, f, nFactors, p, n)
		}
	}

	loadings := mat.NewDense(p, nFactors, nil)
	for f := 0; f < nFactors; f++ {
		scale := math.Sqrt(corrValues[f])
		for i := 0; i < p; i++ {
			loadings.Set(i, f, vectors.At(i, f)*scale)
		}
	}
	stabilizeSigns(loadings)

	iterations := 0
	if rotation != RotationNone {
		rotated, iters, err := orthomax(loadings, rotation)
		if err != nil {
			return nil, fmt.Errorf("rotate %d indicators over %d zones: %w", p, n, err)
		}
		loadings = rotated
		iterations = iters
		stabilizeSigns(loadings)
	}

	total := 0.0
	for _, ev := range eigenvalues {
		total += ev
	}
	explained := make([]float64, p)
	for i, ev := range eigenvalues {
		if total > 0 {
			explained[i] = ev / total
		}
	}

	communalities := make([]float64, p)
	for i := 0; i < p; i++ {
		sum := 0.0
		for f := 0; f < nFactors; f++ {
			l := loadings.At(i, f)
			sum += l * l
		}
		communalities[i] = sum
	}

	return &Result{
		Indicators:         append([]string(nil), indicators...),
		NumFactors:         nFactors,
		NumObservations:    n,
		Rotation:           rotation,
		Loadings:           loadings,
		Eigenvalues:        eigenvalues,
		ExplainedVariance:  explained,
		Communalities:      communalities,
		RotationIterations: iterations,
	}, nil
}

// covarianceMatrix computes the sample covariance matrix (ddof=1) and reports
// the indices of zero-variance columns
func covarianceMatrix(data *mat.Dense) (*mat.SymDense, []int) {
	n, p := data.Dims()

	means := make([]float64, p)
	for j := 0; j < p; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += data.At(i, j)
		}
		means[j] = sum / float64(n)
	}

	centered := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			centered.Set(i, j, data.At(i, j)-means[j])
		}
	}

	var product mat.Dense
	product.Mul(centered.T(), centered)

	cov := mat.NewSymDense(p, nil)
	var constant []int
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			cov.SetSym(i, j, product.At(i, j)/float64(n-1))
		}
		if cov.At(i, i) == 0 {
			constant = append(constant, i)
		}
	}
	return cov, constant
}

// correlationMatrix rescales a covariance matrix to unit diagonal
func correlationMatrix(cov *mat.SymDense) *mat.SymDense {
	p, _ := cov.Dims()
	corr := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			corr.SetSym(i, j, cov.At(i, j)/math.Sqrt(cov.At(i, i)*cov.At(j, j)))
		}
	}
	return corr
}

// eigenDescending returns eigenvalues and eigenvectors of a symmetric matrix
// sorted by descending eigenvalue, with small negative eigenvalues clamped
// to zero
func eigenDescending(cov *mat.SymDense) ([]float64, *mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, nil, errors.New("eigen decomposition failed")
	}

	p, _ := cov.Dims()
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// gonum returns ascending order; reverse in place
	sorted := make([]float64, p)
	reversed := mat.NewDense(p, p, nil)
	for j := 0; j < p; j++ {
		src := p - 1 - j
		ev := values[src]
		if ev < 0 {
			ev = 0
		}
		sorted[j] = ev
		for i := 0; i < p; i++ {
			reversed.Set(i, j, vectors.At(i, src))
		}
	}
	return sorted, reversed, nil
}

// stabilizeSigns flips each factor so its largest-magnitude loading is
// positive, making eigenvector sign choice deterministic across runs
func stabilizeSigns(loadings *mat.Dense) {
	p, m := loadings.Dims()
	for f := 0; f < m; f++ {
		maxAbs := 0.0
		sign := 1.0
		for i := 0; i < p; i++ {
			v := loadings.At(i, f)
			if math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				sign = 1.0
				if v < 0 {
					sign = -1.0
				}
			}
		}
		if sign < 0 {
			for i := 0; i < p; i++ {
				loadings.Set(i, f, -loadings.At(i, f))
			}
		}
	}
}
