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

// Package table provides structural helpers for rendering HTML tables as
// streams of markup fragments.  A new table may be created via
//
//	tab := table.New(caption, renderSettings)
//
// Rows are supplied lazily, as a sequence of Row() values, each holding a
// sequence of Cell() values:
//
//	rows := func(yield func(table.RowUpdate) bool) {
//	  yield(table.Row("2015-04-01", cells))
//	}
//
// Then, the table's markup is produced by ranging over
//
//	tab.Render(rows)
//
// which yields one safehtml.HTML fragment per structural element:
//
//	table open (with optional caption)
//	  row open (with optional header cell)
//	    repeated cells
//	  row close
//	table close
//
// Every fragment ends in HTML text context, so fragments may be concatenated
// or written to an output stream in order.  Nothing is buffered: rows and
// cells are pulled from their sequences only as the output is consumed.
package table

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	"github.com/ilhamster/traceviz/heatviz/style"
)

const fragments = `
{{define "open"}}<table class="heatmap">{{with .Caption}}<caption>{{.}}</caption>{{end}}
{{end}}
{{define "row_open"}}<tr>{{with .Header}}<th scope="row">{{.}}</th>{{end}}{{end}}
{{define "cell"}}<td style="{{.Style}}"{{with .Title}} title="{{.}}"{{end}}>{{.Text}}</td>{{end}}
{{define "row_close"}}</tr>
{{end}}
{{define "close"}}</table>
{{end}}`

var tmpl = template.Must(template.New("table").Parse(fragments))

// RenderSettings is a collection of rendering settings for tables.
type RenderSettings struct {
	// The width of a cell in pixels.  If zero, cells take their natural width.
	CellWidthPx int64
	// The height of a row in pixels.  If zero, rows take their natural height.
	RowHeightPx int64
}

func px(v int64) string {
	return strconv.FormatInt(v, 10) + "px"
}

// size applies the receiver's cell dimensions to the provided style.
func (rs *RenderSettings) size(s *style.Style) *style.Style {
	if rs == nil {
		return s
	}
	if rs.CellWidthPx > 0 {
		s.Width(px(rs.CellWidthPx))
	}
	if rs.RowHeightPx > 0 {
		s.Height(px(rs.RowHeightPx))
	}
	return s
}

// CellUpdate describes a single table cell.
type CellUpdate struct {
	text  string
	title string
	style style.Style
}

// Cell returns a new cell with the provided text and style.  A nil style
// leaves the cell unstyled.
func Cell(text string, s *style.Style) CellUpdate {
	cu := CellUpdate{text: text}
	if s != nil {
		cu.style = *s
	}
	return cu
}

// WithTitle annotates the receiving cell with hover text.
func (cu CellUpdate) WithTitle(title string) CellUpdate {
	cu.title = title
	return cu
}

// RowUpdate describes a table row.
type RowUpdate struct {
	header string
	cells  iter.Seq[CellUpdate]
}

// Row returns a new row with the provided header and cells.  If header is
// empty, the row has no header cell.
func Row(header string, cells iter.Seq[CellUpdate]) RowUpdate {
	return RowUpdate{
		header: header,
		cells:  cells,
	}
}

// Cells returns a sequence over the provided cells.
func Cells(cells ...CellUpdate) iter.Seq[CellUpdate] {
	return func(yield func(CellUpdate) bool) {
		for _, cell := range cells {
			if !yield(cell) {
				return
			}
		}
	}
}

// Node is a table awaiting its rows.
type Node struct {
	caption  string
	settings *RenderSettings
}

// New returns a new table with the provided caption (which may be empty) and
// render settings (which may be nil).
func New(caption string, renderSettings *RenderSettings) *Node {
	return &Node{
		caption:  caption,
		settings: renderSettings,
	}
}

type cellData struct {
	Text  string
	Title string
	Style safehtml.Style
}

// Render returns the sequence of markup fragments for the receiver populated
// with the provided rows.  Iteration stops at the first error, which is
// yielded with an empty fragment.  Rows are consumed as the sequence is
// iterated, so the returned sequence is only as restartable as rows is.
func (n *Node) Render(rows iter.Seq[RowUpdate]) iter.Seq2[safehtml.HTML, error] {
	return func(yield func(safehtml.HTML, error) bool) {
		emit := func(name string, data any) bool {
			h, err := tmpl.ExecuteTemplateToHTML(name, data)
			if err != nil {
				yield(safehtml.HTML{}, fmt.Errorf("failed to render table %s: %w", name, err))
				return false
			}
			return yield(h, nil)
		}
		if !emit("open", struct{ Caption string }{n.caption}) {
			return
		}
		for row := range rows {
			if !emit("row_open", struct{ Header string }{row.header}) {
				return
			}
			if row.cells != nil {
				for cell := range row.cells {
					s := n.settings.size(&cell.style)
					if !emit("cell", cellData{
						Text:  cell.text,
						Title: cell.title,
						Style: s.Define(),
					}) {
						return
					}
				}
			}
			if !emit("row_close", nil) {
				return
			}
		}
		emit("close", nil)
	}
}
