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

package heatmap

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	daybucket "github.com/ilhamster/traceviz/heatviz/analysis/day_bucket"
	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
	"github.com/ilhamster/traceviz/heatviz/category"
	"github.com/ilhamster/traceviz/heatviz/color"
	testutil "github.com/ilhamster/traceviz/heatviz/test_util"
)

var (
	tempCat  = category.New("temp", "Temperature", "Wrist temperature")
	sleepCat = category.New("sleep", "Sleep stage", "")
)

// dataset parses the provided lines, each tagged with its source ordinal, into
// a Dataset.
func dataset(t *testing.T, cat *category.Category, sourcedLines map[int][]string) *daybucket.Dataset {
	t.Helper()
	b := daybucket.NewBuilder(cat)
	// Sources are added in reverse ordinal order.
	for source := len(sourcedLines) - 1; source >= 0; source-- {
		for _, line := range sourcedLines[source] {
			rec, err := rowreader.ParseLine(line, rowreader.DefaultLayout())
			if err != nil {
				t.Fatalf("ParseLine(%q) yielded unexpected error %s", line, err)
			}
			b.Add(rec, source)
		}
	}
	return b.Build()
}

var (
	rowRe    = regexp.MustCompile(`<tr><th scope="row">([0-9-]+)</th>`)
	cellRe   = regexp.MustCompile(`<td style="background-color:(#[0-9a-f]{6});height:16px;width:1px;" title="([^"]*)"></td>`)
	swatchRe = regexp.MustCompile(`<td style="background-color:(#[0-9a-f]{6});color:#[0-9a-f]{6};padding:0 4px;">([^<]*)</td>`)
)

// summary extracts day rows, cell colors and hover text, and legend swatches
// from a rendered section.
type summary struct {
	Days     []string
	Cells    []string
	Swatches []string
}

func summarize(markup string) summary {
	s := summary{Days: []string{}, Cells: []string{}, Swatches: []string{}}
	for _, m := range rowRe.FindAllStringSubmatch(markup, -1) {
		s.Days = append(s.Days, m[1])
	}
	for _, m := range cellRe.FindAllStringSubmatch(markup, -1) {
		s.Cells = append(s.Cells, m[2]+"="+m[1])
	}
	for _, m := range swatchRe.FindAllStringSubmatch(markup, -1) {
		s.Swatches = append(s.Swatches, m[2]+"="+m[1])
	}
	return s
}

func TestSection(t *testing.T) {
	for _, test := range []struct {
		description string
		field       func(t *testing.T) Field
		want        summary
	}{{
		description: "one day of temperatures",
		field: func(t *testing.T) Field {
			ds := dataset(t, tempCat, map[int][]string{
				0: {"2015-04-01 00:01:00,98.6", "2015-04-01 00:02:00,99.0"},
			})
			return Field{ds, color.NewGradient(nil, ds.Range(), "F")}
		},
		want: summary{
			Days:  []string{"2015-04-01"},
			Cells: []string{"00:01 98.6=#0000ff", "00:02 99=#ff0000"},
			Swatches: []string{
				"Data missing=#000000",
				"98.6 F=#0000ff",
				"98.7 F=#4000bf",
				"98.8 F=#800080",
				"98.9 F=#bf0040",
				"99 F=#ff0000",
			},
		},
	}, {
		description: "days ascend regardless of file read order",
		field: func(t *testing.T) Field {
			ds := dataset(t, tempCat, map[int][]string{
				0: {"2015-04-01 10:00:00,36.1"},
				1: {"2015-04-02 10:00:00,36.5"},
			})
			return Field{ds, color.NewGradient(nil, ds.Range(), "")}
		},
		want: summary{
			Days:  []string{"2015-04-01", "2015-04-02"},
			Cells: []string{"10:00 36.1=#0000ff", "10:00 36.5=#ff0000"},
			Swatches: []string{
				"Data missing=#000000",
				"36.1=#0000ff",
				"36.2=#4000bf",
				"36.3=#800080",
				"36.4=#bf0040",
				"36.5=#ff0000",
			},
		},
	}, {
		description: "no positive readings render as missing",
		field: func(t *testing.T) Field {
			ds := dataset(t, tempCat, map[int][]string{
				0: {"2015-04-01 00:00:00,0", "2015-04-01 00:01:00,-2", "2015-04-01 00:02:00,"},
			})
			return Field{ds, color.NewGradient(nil, ds.Range(), "F")}
		},
		want: summary{
			Days: []string{"2015-04-01"},
			Cells: []string{
				"00:00 0=#000000",
				"00:01 -2=#000000",
				"00:02 &lt;missing&gt;=#000000",
			},
			Swatches: []string{"Data missing=#000000"},
		},
	}, {
		description: "sleep stages",
		field: func(t *testing.T) Field {
			ds := dataset(t, sleepCat, map[int][]string{
				0: {"2015-04-01 23:58:00,deep", "2015-04-01 23:59:00,napping"},
			})
			return Field{ds, color.DefaultSleepStages().WithObserved(ds.Labels()...)}
		},
		want: summary{
			Days:  []string{"2015-04-01"},
			Cells: []string{"23:58 deep=#000080", "23:59 napping=#808080"},
			Swatches: []string{
				"Data missing=#000000",
				"deep=#000080",
				"light=#4169e1",
				"rem=#00c000",
				"awake=#ffd700",
				"napping=#808080",
			},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			markup, err := testutil.Render(New(DefaultRenderSettings).Section(test.field(t)))
			if err != nil {
				t.Fatalf("Section() yielded unexpected error %s", err)
			}
			got := summarize(markup)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Section() => %s, diff (-want +got) %s", markup, diff)
			}
		})
	}
}

func TestLegend(t *testing.T) {
	tab, err := color.NewTable(color.DefaultFallback, color.LabelColor{Label: "deep", Color: "#000080"})
	if err != nil {
		t.Fatalf("NewTable() yielded unexpected error %s", err)
	}
	msg, different := testutil.NewFragmentComparator().
		WithTestFragments(Legend(tab.WithObserved("napping"))).
		WithWantFragments(
			"<table class=\"heatmap\">\n",
			"<tr>",
			"<td style=\"background-color:#000000;color:#ffffff;padding:0 4px;\">Data missing</td>",
			"<td style=\"background-color:#000080;color:#ffffff;padding:0 4px;\">deep</td>",
			"<td style=\"background-color:#808080;color:#000000;padding:0 4px;\">napping</td>",
			"</tr>\n",
			"</table>\n",
		).
		Compare(t)
	if different {
		t.Error(msg)
	}
}

func TestDocument(t *testing.T) {
	temps := dataset(t, tempCat, map[int][]string{
		0: {"2015-04-01 00:01:00,98.6", "2015-04-01 00:02:00,99.0"},
	})
	stages := dataset(t, sleepCat, map[int][]string{
		0: {"2015-04-01 00:01:00,rem"},
	})
	markup, err := testutil.Render(New(DefaultRenderSettings).Document("My <body>",
		Field{temps, color.NewGradient(nil, temps.Range(), "F")},
		Field{stages, color.DefaultSleepStages()},
	))
	if err != nil {
		t.Fatalf("Document() yielded unexpected error %s", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>\n",
		"<title>My &lt;body&gt;</title>",
		"<h1>My &lt;body&gt;</h1>",
		"<section id=\"field-temp\"><h2>Temperature</h2><p>Wrist temperature</p>",
		"<section id=\"field-sleep\"><h2>Sleep stage</h2>\n",
		"</body></html>\n",
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("Document() => %s, missing %q", markup, want)
		}
	}
	if got := strings.Count(markup, "<h3>Legend</h3>"); got != 2 {
		t.Errorf("Document() has %d legends, want 2", got)
	}
	if strings.Index(markup, "field-temp") > strings.Index(markup, "field-sleep") {
		t.Errorf("Document() reordered its fields")
	}
}

func TestDocumentRejectsUncategorizedDataset(t *testing.T) {
	ds := daybucket.NewBuilder(nil).Build()
	_, err := testutil.Render(New(nil).Document("title", Field{ds, color.NewGradient(nil, ds.Range(), "")}))
	if !errors.Is(err, ErrNoCategory) {
		t.Errorf("Document() yielded error %v, want %v", err, ErrNoCategory)
	}
}

func TestIndex(t *testing.T) {
	h, err := Index("Visualizing your body", []*category.Category{tempCat, sleepCat})
	if err != nil {
		t.Fatalf("Index() yielded unexpected error %s", err)
	}
	markup := h.String()
	for _, want := range []string{
		"<title>Visualizing your body</title>",
		"<li><a href=\"temp.html\">Temperature</a></li>",
		"<li><a href=\"sleep.html\">Sleep stage</a></li>",
		"<option value=\"\">-</option><option value=\"temp.html\">Temperature</option><option value=\"sleep.html\">Sleep stage</option>",
		"<iframe id=\"viewer\"></iframe>",
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("Index() => %s, missing %q", markup, want)
		}
	}
	if _, err := Index("bad", []*category.Category{category.New("../x", "", "")}); err == nil {
		t.Errorf("Index() with an invalid category yielded no error")
	}
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errDiskFull
}

func TestWriteTo(t *testing.T) {
	ds := dataset(t, tempCat, map[int][]string{0: {"2015-04-01 00:01:00,98.6"}})
	doc := New(nil).Document("t", Field{ds, color.NewGradient(nil, ds.Range(), "")})
	var sb strings.Builder
	if err := WriteTo(&sb, doc); err != nil {
		t.Fatalf("WriteTo() yielded unexpected error %s", err)
	}
	want, err := testutil.Render(New(nil).Document("t", Field{ds, color.NewGradient(nil, ds.Range(), "")}))
	if err != nil {
		t.Fatalf("Render() yielded unexpected error %s", err)
	}
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("WriteTo() diff (-want +got) %s", diff)
	}
	if err := WriteTo(failingWriter{}, New(nil).Document("t")); !errors.Is(err, errDiskFull) {
		t.Errorf("WriteTo() yielded error %v, want %v", err, errDiskFull)
	}
}
