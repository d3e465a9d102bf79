// Package remote forwards forecasts to an external forecasting service over HTTP with a JSON body.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/goccy/go-json"
)

const (
	Name = "remote"

	DefaultTimeout = 60 * time.Second

	forecastPath = "/forecast"
	healthPath   = "/healthz"

	// maximum number of response body bytes quoted in errors
	errBodyLimit = 512
)

var (
	ErrNotConfigured   = errors.New("no remote forecasting endpoint configured")
	ErrUnhealthy       = errors.New("remote forecasting service failed its health check")
	ErrBadStatus       = errors.New("remote forecasting service returned an error status")
	ErrMissingModels   = errors.New("remote response lists no models")
	ErrMissingValue    = errors.New("remote response is missing a model value")
	ErrInvalidEndpoint = errors.New("remote endpoint must be an http or https url")
)

// Options configures the remote client
type Options struct {
	Endpoint    string
	Timeout     time.Duration
	HealthCheck bool

	// Client overrides the http client, mostly for tests
	Client *http.Client
}

func NewDefaultOptions() *Options {
	return &Options{
		Timeout: DefaultTimeout,
	}
}

// Validate fills defaults and rejects an unusable endpoint
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Endpoint == "" {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(o.Endpoint, "http://") && !strings.HasPrefix(o.Endpoint, "https://") {
		return nil, fmt.Errorf("%q, %w", o.Endpoint, ErrInvalidEndpoint)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o, nil
}

// Backend is a client of the remote forecasting service
type Backend struct {
	endpoint string
	client   *http.Client
}

// New creates a remote backend. When HealthCheck is set the service must answer its health
// endpoint before the backend is returned.
func New(ctx context.Context, opt *Options) (*Backend, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	client := opt.Client
	if client == nil {
		client = &http.Client{Timeout: opt.Timeout}
	}
	b := &Backend{
		endpoint: strings.TrimRight(opt.Endpoint, "/"),
		client:   client,
	}

	if opt.HealthCheck {
		if err := b.health(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Backend) Name() string {
	return Name
}

type forecastRequest struct {
	Horizon          int           `json:"horizon"`
	FrequencySeconds float64       `json:"frequency_seconds"`
	SeasonalPeriod   int           `json:"seasonal_period"`
	History          history.Table `json:"history"`
}

type forecastRow struct {
	SeriesID  string             `json:"unique_id"`
	Timestamp time.Time          `json:"ds"`
	Values    map[string]float64 `json:"values"`
}

type forecastResponse struct {
	Models   []string      `json:"models"`
	Forecast []forecastRow `json:"forecast"`
}

// Forecast posts the history to the service and converts its answer into a frame ordered by
// series then timestamp.
func (b *Backend) Forecast(ctx context.Context, table history.Table, spec backend.Spec) (*backend.Frame, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, backend.ErrEmptyHistory
	}

	body, err := json.Marshal(forecastRequest{
		Horizon:          spec.Horizon,
		FrequencySeconds: spec.Frequency.Seconds(),
		SeasonalPeriod:   spec.SeasonalPeriod,
		History:          table,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode forecast request, %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+forecastPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build forecast request, %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to reach remote forecasting service, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("status %d: %s, %w", resp.StatusCode, strings.TrimSpace(string(snippet)), ErrBadStatus)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("unable to decode forecast response, %w", err)
	}
	return toFrame(decoded, table.SeriesIDs())
}

func toFrame(resp forecastResponse, seriesOrder []string) (*backend.Frame, error) {
	if len(resp.Models) == 0 {
		return nil, ErrMissingModels
	}

	rank := make(map[string]int, len(seriesOrder))
	for i, id := range seriesOrder {
		rank[id] = i
	}
	rows := resp.Forecast
	sort.SliceStable(rows, func(i, j int) bool {
		ri, iKnown := rank[rows[i].SeriesID]
		rj, jKnown := rank[rows[j].SeriesID]
		if iKnown != jKnown {
			return iKnown
		}
		if rows[i].SeriesID != rows[j].SeriesID {
			if iKnown {
				return ri < rj
			}
			return rows[i].SeriesID < rows[j].SeriesID
		}
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	frame := &backend.Frame{
		Models: resp.Models,
		Rows:   make([]backend.FrameRow, 0, len(rows)),
	}
	for _, row := range rows {
		values := make([]float64, len(resp.Models))
		for i, model := range resp.Models {
			v, exists := row.Values[model]
			if !exists {
				return nil, fmt.Errorf("series %q at %s has no %s value, %w", row.SeriesID, row.Timestamp, model, ErrMissingValue)
			}
			values[i] = v
		}
		frame.Rows = append(frame.Rows, backend.FrameRow{
			SeriesID:  row.SeriesID,
			Timestamp: row.Timestamp,
			Values:    values,
		})
	}
	return frame, nil
}

func (b *Backend) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+healthPath, nil)
	if err != nil {
		return fmt.Errorf("unable to build health request, %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%v, %w", err, ErrUnhealthy)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, %w", resp.StatusCode, ErrUnhealthy)
	}
	return nil
}
