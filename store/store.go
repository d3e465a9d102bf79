// Package store persists job results as JSON documents and keeps an index of the stored runs,
// newest first.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bryanwhiting/weatherman"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	ErrNoResult = errors.New("no result to store")
	ErrNoSlug   = errors.New("slug is required")
)

// Provenance describes the CI run that produced a result
type Provenance struct {
	Repo   string `json:"repo"`
	RunID  string `json:"run_id"`
	Actor  string `json:"actor"`
	SHA    string `json:"sha"`
	RunURL string `json:"run_url"`
}

// NewProvenance fills in the run url when both the repository and the run id are known
func NewProvenance(repo, runID, actor, sha string) Provenance {
	p := Provenance{Repo: repo, RunID: runID, Actor: actor, SHA: sha}
	if repo != "" && runID != "" {
		p.RunURL = fmt.Sprintf("https://github.com/%s/actions/runs/%s", repo, runID)
	}
	return p
}

// Meta is attached to every stored result
type Meta struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	CreatedAt      time.Time  `json:"created_at"`
	Provenance     Provenance `json:"github"`
	HistoryPoints  int        `json:"history_points"`
	ForecastPoints int        `json:"forecast_points"`
	BestModel      string     `json:"best_model,omitempty"`
}

// NewMeta describes res under a fresh run id
func NewMeta(slug string, res *weatherman.Result, createdAt time.Time, prov Provenance) Meta {
	m := Meta{
		ID:         uuid.NewString(),
		Slug:       slug,
		CreatedAt:  createdAt.UTC(),
		Provenance: prov,
	}
	if res != nil {
		m.HistoryPoints = len(res.History)
		m.ForecastPoints = len(res.Forecast)
		m.BestModel, _ = res.BestModel()
	}
	return m
}

// Document is the stored form of a result
type Document struct {
	*weatherman.Result
	Meta *Meta `json:"meta,omitempty"`
}

// WriteResult encodes the result, with meta when given, to path creating parent directories
func WriteResult(path string, res *weatherman.Result, meta *Meta) error {
	if res == nil {
		return ErrNoResult
	}
	data, err := json.MarshalIndent(Document{Result: res, Meta: meta}, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode result, %w", err)
	}
	return writeFile(path, data)
}

// ReadResult decodes a document previously written by WriteResult
func ReadResult(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read result, %w", err)
	}
	doc := &Document{Result: &weatherman.Result{}}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("unable to decode result %s, %w", path, err)
	}
	return doc, nil
}

// Entry is one run listed in the index
type Entry struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	Granularity    string    `json:"granularity"`
	Horizon        int       `json:"horizon"`
	HistoryPoints  int       `json:"history_points"`
	ForecastPoints int       `json:"forecast_points"`
	Backend        string    `json:"backend"`
	BestModel      string    `json:"best_model,omitempty"`
	RunURL         string    `json:"run_url"`
	Path           string    `json:"path"`
}

// NewEntry summarizes a stored result for the index
func NewEntry(meta Meta, res *weatherman.Result) Entry {
	e := Entry{
		Slug:           meta.Slug,
		Title:          meta.Slug,
		CreatedAt:      meta.CreatedAt,
		HistoryPoints:  meta.HistoryPoints,
		ForecastPoints: meta.ForecastPoints,
		BestModel:      meta.BestModel,
		RunURL:         meta.Provenance.RunURL,
		Path:           "/forecasts/" + meta.Slug,
	}
	if res == nil {
		return e
	}
	e.Backend = res.Backend
	if req := res.Request; req != nil {
		e.Granularity = req.Granularity.String()
		e.Horizon = req.Horizon
		if len(req.SeriesNames) > 0 {
			e.Title = strings.Join(req.SeriesNames, ", ")
		}
	}
	return e
}

// Index is a JSON array of entries stored at Path
type Index struct {
	Path string
}

// Load returns the stored entries. A missing file is an empty index.
func (idx *Index) Load() ([]Entry, error) {
	data, err := os.ReadFile(idx.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read index, %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unable to decode index %s, %w", idx.Path, err)
	}
	return entries, nil
}

// Upsert replaces any entry with the same slug and saves the index sorted newest first
func (idx *Index) Upsert(entry Entry) error {
	if entry.Slug == "" {
		return ErrNoSlug
	}
	entries, err := idx.Load()
	if err != nil {
		return err
	}

	kept := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Slug != entry.Slug {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry)
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.After(kept[j].CreatedAt)
	})

	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode index, %w", err)
	}
	return writeFile(idx.Path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create directory for %s, %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return nil
}
