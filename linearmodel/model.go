// Package linearmodel fits linear regressions over gonum matrices. The regression based forecasting
// models build a design matrix of trend, seasonal and event features and solve it with one of these.
package linearmodel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than features")
	ErrSingularMatrix     = errors.New("design matrix is rank deficient")
	ErrColMismatch        = errors.New("column size mismatch")
)

// Model is a fitted linear regression
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// NewDenseFromColumns builds an m x n matrix from n feature columns of length m
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, ErrNoTrainingMatrix
	}
	m := len(cols[0])
	for i, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows instead of %d, %w", i, len(col), m, ErrColMismatch)
		}
	}
	if m == 0 {
		return nil, ErrNoTrainingMatrix
	}

	x := mat.NewDense(m, len(cols), nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	return x, nil
}

// NewTarget wraps observations into an m x 1 target matrix
func NewTarget(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, append([]float64(nil), y...))
}

// withIntercept prepends a constant 1.0 column to x
func withIntercept(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T()
}

func checkTarget(x, y mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	return nil
}

func predict(x mat.Matrix, intercept float64, coef []float64, fitIntercept bool) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if fitIntercept {
		coef = append([]float64{intercept}, coef...)
		x = withIntercept(x)
	}
	n := len(coef)

	_, xn := x.Dims()
	if xn != n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn, n, ErrFeatureLenMismatch)
	}

	var res mat.Dense
	res.Mul(mat.NewDense(1, n, coef), x.T())
	return res.RawRowView(0), nil
}
