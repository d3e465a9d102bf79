package native

import (
	"fmt"
)

const (
	DefaultAlpha         = 0.3
	DefaultBeta          = 0.1
	DefaultGamma         = 0.1
	DefaultFourierOrders = 3

	DefaultOutlierLowerPerc   = 0.1
	DefaultOutlierUpperPerc   = 0.9
	DefaultOutlierTukeyFactor = 1.5
)

// Options configures the models run by the native backend
type Options struct {
	// Models lists the model names to run, in output order
	Models []string

	// Alpha, Beta and Gamma are the level, trend and seasonal smoothing factors of HoltWinters
	Alpha float64
	Beta  float64
	Gamma float64

	// FourierOrders caps the number of sin/cos pairs of the seasonal period. The effective order
	// never exceeds half the period and shrinks until the design has fewer features than points.
	FourierOrders int

	// Regularization is the L1 penalty of the lasso fit used when least squares is singular
	Regularization float64

	// Holidays adds a US federal holiday indicator to the Fourier design
	Holidays bool

	// OutlierPasses refits the Fourier model this many times after dropping outlying residuals
	OutlierPasses      int
	OutlierLowerPerc   float64
	OutlierUpperPerc   float64
	OutlierTukeyFactor float64
}

// NewDefaultOptions runs every model with standard smoothing and no outlier removal
func NewDefaultOptions() *Options {
	return &Options{
		Models:             []string{ModelSeasonalNaive, ModelHoltWinters, ModelFourier},
		Alpha:              DefaultAlpha,
		Beta:               DefaultBeta,
		Gamma:              DefaultGamma,
		FourierOrders:      DefaultFourierOrders,
		OutlierLowerPerc:   DefaultOutlierLowerPerc,
		OutlierUpperPerc:   DefaultOutlierUpperPerc,
		OutlierTukeyFactor: DefaultOutlierTukeyFactor,
	}
}

// Validate runs basic validation on native backend options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	if len(o.Models) == 0 {
		return nil, ErrNoModels
	}
	seen := make(map[string]struct{})
	for _, name := range o.Models {
		if _, exists := modelNames[name]; !exists {
			return nil, fmt.Errorf("%q, %w", name, ErrUnknownModel)
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("%q listed twice, %w", name, ErrUnknownModel)
		}
		seen[name] = struct{}{}
	}

	for label, v := range map[string]float64{"alpha": o.Alpha, "beta": o.Beta, "gamma": o.Gamma} {
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("%s is %v, %w", label, v, ErrInvalidSmoothing)
		}
	}
	if o.FourierOrders < 1 {
		return nil, ErrInvalidOrders
	}
	if o.Regularization < 0 {
		return nil, ErrNegativeLambda
	}
	if o.OutlierPasses < 0 {
		return nil, ErrNegativePasses
	}
	if o.OutlierPasses > 0 {
		if o.OutlierLowerPerc < 0 || o.OutlierUpperPerc > 1 || o.OutlierLowerPerc >= o.OutlierUpperPerc {
			return nil, ErrInvalidPercentiles
		}
	}
	return o, nil
}

var modelNames = map[string]struct{}{
	ModelSeasonalNaive: {},
	ModelHoltWinters:   {},
	ModelFourier:       {},
}

func (o *Options) newModel(name string) (Model, error) {
	switch name {
	case ModelSeasonalNaive:
		return SeasonalNaive{}, nil
	case ModelHoltWinters:
		return &HoltWinters{Alpha: o.Alpha, Beta: o.Beta, Gamma: o.Gamma}, nil
	case ModelFourier:
		return &Fourier{
			MaxOrders:          o.FourierOrders,
			Regularization:     o.Regularization,
			Holidays:           o.Holidays,
			OutlierPasses:      o.OutlierPasses,
			OutlierLowerPerc:   o.OutlierLowerPerc,
			OutlierUpperPerc:   o.OutlierUpperPerc,
			OutlierTukeyFactor: o.OutlierTukeyFactor,
		}, nil
	}
	return nil, fmt.Errorf("%q, %w", name, ErrUnknownModel)
}
