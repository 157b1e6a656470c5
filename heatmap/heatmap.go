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

// Package heatmap renders day-bucketed datasets as calendar heatmap HTML
// documents.
//
// A document comprises a header, then one section per tracked field.  Each
// section holds a table with one row per day, in ascending date order, and one
// cell per sample in that day, colored by the field's color.Encoding; then a
// legend showing the encoding's colors.  Documents are produced as lazy
// sequences of safehtml.HTML fragments, so they may be streamed to storage
// as they are rendered:
//
//	doc := heatmap.New(heatmap.DefaultRenderSettings).Document(title, fields...)
//	err := heatmap.WriteTo(w, doc)
//
// An index document linking to per-field documents is produced by Index.
package heatmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	daybucket "github.com/ilhamster/traceviz/heatviz/analysis/day_bucket"
	"github.com/ilhamster/traceviz/heatviz/color"
	"github.com/ilhamster/traceviz/heatviz/style"
	"github.com/ilhamster/traceviz/heatviz/table"
)

const page = `
{{define "head"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.}}</title><style>
body { font-family: sans-serif; }
table.heatmap { border-spacing: 0; white-space: nowrap; }
</style></head><body>
<h1>{{.}}</h1>
{{end}}
{{define "section"}}<section id="{{.ID}}"><h2>{{.Name}}</h2>{{with .Description}}<p>{{.}}</p>{{end}}
{{end}}
{{define "legend"}}<h3>Legend</h3>
{{end}}
{{define "section_close"}}</section>
{{end}}
{{define "tail"}}</body></html>
{{end}}`

var pageTmpl = template.Must(template.New("page").Parse(page))

// DefaultRenderSettings renders each sample as a narrow cell.
var DefaultRenderSettings = &table.RenderSettings{
	CellWidthPx: 1,
	RowHeightPx: 16,
}

// legendPadding pads legend cells, which hold text.
const legendPadding = "0 4px"

// ErrNoCategory is returned when rendering a Field whose Dataset has no
// category.
var ErrNoCategory = errors.New("dataset has no category")

// Field pairs a tracked field's Dataset with its color encoding.
type Field struct {
	Dataset  *daybucket.Dataset
	Encoding color.Encoding
}

// Renderer renders heatmap documents.
type Renderer struct {
	settings *table.RenderSettings
}

// New returns a new Renderer sizing heatmap cells per the provided settings.
// If settings is nil, cells take their natural size.
func New(settings *table.RenderSettings) *Renderer {
	return &Renderer{
		settings: settings,
	}
}

// fragments is a lazy sequence of markup fragments.  A non-nil error ends the
// sequence.
type fragments = iter.Seq2[safehtml.HTML, error]

func execute(name string, data any) fragments {
	return func(yield func(safehtml.HTML, error) bool) {
		h, err := pageTmpl.ExecuteTemplateToHTML(name, data)
		if err != nil {
			yield(safehtml.HTML{}, fmt.Errorf("failed to render %s: %w", name, err))
			return
		}
		yield(h, nil)
	}
}

func concat(seqs ...fragments) fragments {
	return func(yield func(safehtml.HTML, error) bool) {
		for _, seq := range seqs {
			for h, err := range seq {
				if !yield(h, err) || err != nil {
					return
				}
			}
		}
	}
}

// Document returns the fragments of a complete HTML document with the
// provided title and one section per provided field, in order.
func (r *Renderer) Document(title string, fields ...Field) iter.Seq2[safehtml.HTML, error] {
	seqs := []fragments{execute("head", title)}
	for _, f := range fields {
		seqs = append(seqs, r.Section(f))
	}
	seqs = append(seqs, execute("tail", nil))
	return concat(seqs...)
}

// Section returns the fragments of a single field's section: a heading, the
// field's day table, and its legend.
func (r *Renderer) Section(f Field) iter.Seq2[safehtml.HTML, error] {
	cat := f.Dataset.Category()
	if cat == nil {
		return func(yield func(safehtml.HTML, error) bool) {
			yield(safehtml.HTML{}, ErrNoCategory)
		}
	}
	if err := cat.Validate(); err != nil {
		return func(yield func(safehtml.HTML, error) bool) {
			yield(safehtml.HTML{}, err)
		}
	}
	return concat(
		execute("section", struct {
			ID          safehtml.Identifier
			Name        string
			Description string
		}{cat.Identifier(), cat.DisplayName(), cat.Description()}),
		table.New("", r.settings).Render(dayRows(f)),
		execute("legend", nil),
		Legend(f.Encoding),
		execute("section_close", nil),
	)
}

// clock renders a minute of the day as HH:MM.
func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func dayRows(f Field) iter.Seq[table.RowUpdate] {
	return func(yield func(table.RowUpdate) bool) {
		for _, day := range f.Dataset.Days() {
			cells := func(yield func(table.CellUpdate) bool) {
				for _, sample := range day.Samples {
					cell := table.Cell("", style.New().Background(f.Encoding.Color(sample.Value))).
						WithTitle(clock(sample.Minute) + " " + sample.Value.String())
					if !yield(cell) {
						return
					}
				}
			}
			if !yield(table.Row(day.Date.String(), cells)) {
				return
			}
		}
	}
}

// Legend returns the fragments of a single-row table showing each of the
// provided encoding's legend entries as a labeled color swatch.
func Legend(enc color.Encoding) iter.Seq2[safehtml.HTML, error] {
	cells := func(yield func(table.CellUpdate) bool) {
		for _, entry := range enc.Legend() {
			s := style.New().
				Background(entry.Color).
				Foreground(color.TextColor(entry.Color)).
				Padding(legendPadding)
			if !yield(table.Cell(entry.Label, s)) {
				return
			}
		}
	}
	return table.New("", nil).Render(func(yield func(table.RowUpdate) bool) {
		yield(table.Row("", cells))
	})
}

// WriteTo streams the provided fragments to w.  It returns the first error
// yielded by the sequence or encountered writing.
func WriteTo(w io.Writer, seq iter.Seq2[safehtml.HTML, error]) error {
	bw := bufio.NewWriter(w)
	for h, err := range seq {
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(h.String()); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
