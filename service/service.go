/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package service wires a heatviz configuration into a run producing
// heatmap documents.
package service

import (
	"context"
	"fmt"
	"iter"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/safehtml"

	daybucket "github.com/ilhamster/traceviz/heatviz/analysis/day_bucket"
	"github.com/ilhamster/traceviz/heatviz/color"
	"github.com/ilhamster/traceviz/heatviz/config"
	datasource "github.com/ilhamster/traceviz/heatviz/data_source"
	fielddispatcher "github.com/ilhamster/traceviz/heatviz/field_dispatcher"
	"github.com/ilhamster/traceviz/heatviz/heatmap"
	"github.com/ilhamster/traceviz/heatviz/table"
)

// Service renders the fields of a configuration to documents.
type Service struct {
	cfg        *config.Config
	source     *datasource.DataSource
	dispatcher *fielddispatcher.FieldDispatcher
	renderer   *heatmap.Renderer
}

// New returns a new Service for the provided configuration, which must be
// valid.
func New(cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	source, err := newDataSource(cfg)
	if err != nil {
		return nil, err
	}
	fields := make([]*fielddispatcher.Field, 0, len(cfg.Fields))
	for idx := range cfg.Fields {
		f := &cfg.Fields[idx]
		enc, err := encoding(f)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.ID, err)
		}
		fields = append(fields, &fielddispatcher.Field{
			Category: f.Category(),
			Index:    f.Index,
			Encoding: enc,
		})
	}
	dispatcher, err := fielddispatcher.New(source, fields...)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:        cfg,
		source:     source,
		dispatcher: dispatcher,
		renderer: heatmap.New(&table.RenderSettings{
			CellWidthPx: cfg.CellWidthPx,
			RowHeightPx: cfg.RowHeightPx,
		}),
	}, nil
}

func newDataSource(cfg *config.Config) (*datasource.DataSource, error) {
	inputs, err := datasource.Inputs(cfg.Input)
	if err != nil {
		return nil, err
	}
	fetcher, err := datasource.NewFileFetcher(cfg.CacheSize, cfg.Layout())
	if err != nil {
		return nil, err
	}
	return datasource.New(inputs, fetcher, cfg.Verbose)
}

// Header returns the header columns of the configuration's first input.  Only
// the configuration's input and row layout are used.
func Header(ctx context.Context, cfg *config.Config) ([]string, error) {
	c := *cfg
	c.CacheSize = 1
	source, err := newDataSource(&c)
	if err != nil {
		return nil, err
	}
	return source.Header(ctx)
}

// encoding returns the color encoding builder for the provided field.
func encoding(f *config.Field) (fielddispatcher.EncodingFunc, error) {
	switch f.Kind {
	case config.Numeric:
		space := color.DefaultSpace
		if len(f.Gradient) > 0 {
			var err error
			if space, err = color.NewSpace(f.ID, f.Gradient...); err != nil {
				return nil, err
			}
		}
		unit := f.Unit
		return func(ds *daybucket.Dataset) color.Encoding {
			return color.NewGradient(space, ds.Range(), unit)
		}, nil
	case config.Categorical:
		entries := color.SleepStageColors
		if len(f.Colors) > 0 {
			entries = make([]color.LabelColor, len(f.Colors))
			for idx, lc := range f.Colors {
				entries[idx] = color.LabelColor{Label: lc.Label, Color: lc.Color}
			}
		}
		fallback := f.Fallback
		if fallback == "" {
			fallback = color.DefaultFallback
		}
		tbl, err := color.NewTable(fallback, entries...)
		if err != nil {
			return nil, err
		}
		return func(ds *daybucket.Dataset) color.Encoding {
			return tbl.WithObserved(ds.Labels()...)
		}, nil
	default:
		return nil, fmt.Errorf("unknown kind '%s'", f.Kind)
	}
}

// Inputs returns the paths of the receiver's inputs, in order.
func (s *Service) Inputs() []string {
	return s.source.Inputs()
}

// Run renders the receiver's fields and writes their documents, returning
// the paths written.  In Single mode a single document holds every field;
// in PerField mode each field is written to its own document, and an index
// links them.  Documents are written completely or not at all.
func (s *Service) Run(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() {
		log.Printf("rendered %d fields in %s", len(s.cfg.Fields), time.Since(start))
	}()
	if s.cfg.Mode() == config.Single {
		return s.runSingle(ctx)
	}
	return s.runPerField(ctx)
}

func (s *Service) runSingle(ctx context.Context) ([]string, error) {
	fields, err := s.dispatcher.Fields(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.Output), 0o755); err != nil {
		return nil, err
	}
	if err := writeFile(s.cfg.Output, s.renderer.Document(s.cfg.Title, fields...)); err != nil {
		return nil, err
	}
	return []string{s.cfg.Output}, nil
}

func (s *Service) runPerField(ctx context.Context) ([]string, error) {
	dir := s.cfg.Output
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := s.dispatcher.Dispatch(ctx, func(ctx context.Context, f heatmap.Field) error {
		cat := f.Dataset.Category()
		return writeFile(
			filepath.Join(dir, cat.Filename()),
			s.renderer.Document(cat.DisplayName(), f),
		)
	}); err != nil {
		return nil, err
	}
	cats := s.dispatcher.Categories()
	index, err := heatmap.Index(s.cfg.Title, cats)
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(dir, heatmap.IndexFilename)
	if err := writeFile(indexPath, single(index)); err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(cats)+1)
	for _, cat := range cats {
		ret = append(ret, filepath.Join(dir, cat.Filename()))
	}
	return append(ret, indexPath), nil
}

func single(h safehtml.HTML) iter.Seq2[safehtml.HTML, error] {
	return func(yield func(safehtml.HTML, error) bool) {
		yield(h, nil)
	}
}

// writeFile writes the provided fragments to a hidden temporary file beside
// path, then renames it to path.  On failure the temporary file is removed
// and any existing file at path is untouched.
func writeFile(path string, seq iter.Seq2[safehtml.HTML, error]) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err := heatmap.WriteTo(tmp, seq); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
