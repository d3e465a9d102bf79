package weatherman

import (
	"fmt"

	"github.com/bryanwhiting/weatherman/backend/native"
	"github.com/bryanwhiting/weatherman/backend/remote"
	"github.com/bryanwhiting/weatherman/backtest"
	"github.com/bryanwhiting/weatherman/dataset"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/request"
)

// Options configures every collaborator of the forecaster
type Options struct {
	// DefaultBackend is used when a request asks for auto
	DefaultBackend request.Backend

	BacktestOptions *backtest.Options
	NativeOptions   *native.Options
	RemoteOptions   *remote.Options

	// Demo serves demo mode requests
	Demo history.DemoLoader
}

// NewDefaultOptions resolves auto to the native backend, evaluates backtest windows sequentially
// and serves demo requests from the simulated dataset. The remote backend stays unavailable
// until an endpoint is set.
func NewDefaultOptions() *Options {
	return &Options{
		DefaultBackend:  request.BackendNative,
		BacktestOptions: backtest.NewDefaultOptions(),
		NativeOptions:   native.NewDefaultOptions(),
		RemoteOptions:   remote.NewDefaultOptions(),
		Demo:            &dataset.Simulated{},
	}
}

// Validate fills in defaults for unset options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.DefaultBackend == "" || o.DefaultBackend == request.BackendAuto {
		o.DefaultBackend = request.BackendNative
	}
	if _, err := request.ParseBackend(string(o.DefaultBackend)); err != nil {
		return nil, fmt.Errorf("invalid default backend, %w", err)
	}

	var err error
	if o.BacktestOptions, err = o.BacktestOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest options, %w", err)
	}
	if o.NativeOptions, err = o.NativeOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid native backend options, %w", err)
	}
	if o.RemoteOptions == nil {
		o.RemoteOptions = remote.NewDefaultOptions()
	}
	return o, nil
}
