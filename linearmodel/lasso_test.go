package linearmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLassoOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *LassoOptions
		err      error
		expected *LassoOptions
	}{
		"nil": {nil, nil, NewDefaultLassoOptions()},
		"valid": {
			&LassoOptions{
				Lambda:     1.0,
				Iterations: 100,
				Tolerance:  1e-5,
			}, nil,
			&LassoOptions{
				Lambda:     1.0,
				Iterations: 100,
				Tolerance:  1e-5,
			},
		},
		"invalid lambda": {
			&LassoOptions{Lambda: -1.0},
			ErrNegativeLambda, nil,
		},
		"invalid iterations": {
			&LassoOptions{Iterations: -1.0},
			ErrNegativeIterations, nil,
		},
		"invalid tolerance": {
			&LassoOptions{Tolerance: -1.0},
			ErrNegativeTolerance, nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestLassoRegression(t *testing.T) {
	tol := 1e-5
	desTol := 1e-6
	ones := []float64{1, 1, 1, 1, 1}

	testData := map[string]struct {
		cols         [][]float64
		fitIntercept bool
		intercept    float64
		coef         []float64
	}{
		"model intercept": {
			cols:         [][]float64{linearX0, linearX1},
			fitIntercept: true,
			intercept:    2.0,
			coef:         []float64{3.0, 4.0},
		},
		"model no intercept": {
			cols:      [][]float64{ones, linearX0, linearX1},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
		"zero feature is ignored": {
			cols:         [][]float64{linearX0, linearX1, {0, 0, 0, 0, 0}},
			fitIntercept: true,
			intercept:    2.0,
			coef:         []float64{3.0, 4.0, 0.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := NewDenseFromColumns(td.cols)
			require.Nil(t, err)

			opt := NewDefaultLassoOptions()
			opt.Lambda = 0
			opt.Tolerance = desTol
			opt.FitIntercept = td.fitIntercept

			model, err := NewLassoRegression(opt)
			require.Nil(t, err)

			testModel(t, model, x, NewTarget(linearY), td.intercept, td.coef, tol)
		})
	}
}

func TestLassoRegressionShrinks(t *testing.T) {
	x, err := NewDenseFromColumns([][]float64{linearX0, linearX1})
	require.NoError(t, err)

	opt := NewDefaultLassoOptions()
	opt.Lambda = 1e9
	model, err := NewLassoRegression(opt)
	require.NoError(t, err)
	require.NoError(t, model.Fit(x, NewTarget(linearY)))

	assert.Equal(t, []float64{0, 0}, model.Coef())
	assert.Equal(t, 0.0, model.Intercept())
}

func TestSoftThreshold(t *testing.T) {
	testData := map[string]struct {
		x        float64
		gamma    float64
		expected float64
	}{
		"positive above":   {3, 1, 2},
		"positive below":   {0.5, 1, 0},
		"negative above":   {-3, 1, -2},
		"negative below":   {-0.5, 1, 0},
		"zero gamma":       {1.5, 0, 1.5},
		"equal magnitudes": {1, 1, 0},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, SoftThreshold(td.x, td.gamma))
		})
	}
}
