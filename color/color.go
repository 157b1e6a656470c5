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

// Package color maps measurements to colors.
//
// A measurement may be encoded in one of two ways:
//
//   - A numeric measurement is positioned along a Gradient: a color Space
//     spanning the dataset's observed range.  A Space comprises a sequence of
//     HTML hex colors; a value at the range minimum takes the first color, a
//     value at the range maximum takes the last, and values between take the
//     linear interpolation of the sequence.
//   - A categorical measurement is looked up in a Table of label colors.
//     Labels absent from the Table take the Table's fallback color.
//
// Both encodings are total: every measurement, including a missing one, maps
// to a color.  Missing measurements always take MissingColor.
//
// So a temperature field spanning 29-36 degrees could be encoded as:
//
//	space := color.MustNewSpace("heat", "#0000ff", "#ff0000")
//	grad := color.NewGradient(space, dataset.Range(), "C")
//	cellColor := grad.Color(measurement)
//
// and a sleep-stage field as:
//
//	tab, err := color.NewTable(color.DefaultFallback,
//	  color.LabelColor{Label: "deep", Color: "#000080"},
//	  color.LabelColor{Label: "rem", Color: "#00ff00"},
//	)
package color

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
	continuousaxis "github.com/ilhamster/traceviz/heatviz/continuous_axis"
)

const (
	// DefaultFallback is the color of categorical labels with no configured
	// color.
	DefaultFallback = "#808080"
	// MissingLabel describes MissingColor in legends.
	MissingLabel = "Data missing"
	// maxNormalized is the top of the normalized gradient scale.
	maxNormalized = 255
)

// MissingColor is the color of missing measurements.
var MissingColor = colorful.Color{R: 0, G: 0, B: 0}

// Parse parses an HTML hex color, as in "#ff0080" or "#f08".
func Parse(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color '%s': %w", hex, err)
	}
	return c, nil
}

// TextColor returns black or white, whichever reads better on the provided
// background.
func TextColor(background colorful.Color) colorful.Color {
	r, g, b := background.Clamped().RGB255()
	// Integer luma, in thousandths.
	if 299*int(r)+587*int(g)+114*int(b) < 128000 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return colorful.Color{R: 0, G: 0, B: 0}
}

// Space represents a color space: a color continuum that can map positions in
// [0, 1] to colors.
type Space struct {
	colors []colorful.Color
}

// NewSpace defines a new color space.  Colors in this space will be linearly
// interpolated between the specified colors, which must be HTML hex colors.
func NewSpace(name string, colors ...string) (*Space, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("color space '%s' has no colors", name)
	}
	s := &Space{
		colors: make([]colorful.Color, len(colors)),
	}
	for idx, hex := range colors {
		c, err := Parse(hex)
		if err != nil {
			return nil, fmt.Errorf("color space '%s': %w", name, err)
		}
		s.colors[idx] = c
	}
	return s, nil
}

// MustNewSpace is like NewSpace, but panics on error.  It is intended for
// spaces declared from constants.
func MustNewSpace(name string, colors ...string) *Space {
	s, err := NewSpace(name, colors...)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultSpace runs from pure blue, rgb(0,0,255), to pure red, rgb(255,0,0):
// a value normalized to n in [0, 255] takes the color rgb(n, 0, 255-n).
var DefaultSpace = MustNewSpace("blue_to_red", "#0000ff", "#ff0000")

// At returns the color at the specified position along the receiver.
// Positions outside [0, 1] are clamped.
func (s *Space) At(pos float64) colorful.Color {
	if len(s.colors) == 1 || !(pos > 0) {
		return s.colors[0]
	}
	if pos >= 1 {
		return s.colors[len(s.colors)-1]
	}
	seg := pos * float64(len(s.colors)-1)
	idx := int(seg)
	return s.colors[idx].BlendRgb(s.colors[idx+1], seg-float64(idx))
}

// Normalize linearly maps v from [min, max] into [0, 255], clamping values
// outside that range.  Normalize(min, max, min) is exactly 0 and
// Normalize(min, max, max) is exactly 255.  If max does not exceed min the
// range has no width, and every value normalizes to 0.
func Normalize(min, max, v float64) float64 {
	if !(max > min) {
		return 0
	}
	n := (v - min) / (max - min) * maxNormalized
	switch {
	case n < 0 || math.IsNaN(n):
		return 0
	case n > maxNormalized:
		return maxNormalized
	}
	return n
}

// LegendEntry describes one color of an Encoding.
type LegendEntry struct {
	Label string
	Color colorful.Color
}

// Encoding maps measurements to colors.
type Encoding interface {
	// Color returns the color of the provided measurement.  Every measurement
	// has a color.
	Color(m rowreader.Measurement) colorful.Color
	// Legend returns a key to the receiver's colors, always beginning with
	// the missing-data color.
	Legend() []LegendEntry
}

// legendPoints is the number of evenly-spaced values shown in a Gradient's
// legend.
const legendPoints = 5

// Gradient encodes numeric measurements along a Space spanning a range.
type Gradient struct {
	space *Space
	rng   *continuousaxis.Axis
	unit  string
}

var _ Encoding = &Gradient{}

// NewGradient returns a Gradient positioning values within rng along space.
// unit, if not empty, suffixes values in the legend.  If rng is not Valid --
// the dataset had no positive readings -- every measurement takes
// MissingColor.
func NewGradient(space *Space, rng *continuousaxis.Axis, unit string) *Gradient {
	if space == nil {
		space = DefaultSpace
	}
	if rng == nil {
		rng = continuousaxis.NewDoubleAxis()
	}
	return &Gradient{
		space: space,
		rng:   rng,
		unit:  unit,
	}
}

// Color implements Encoding.  Non-numeric measurements take MissingColor.
func (g *Gradient) Color(m rowreader.Measurement) colorful.Color {
	if m.Kind != rowreader.Numeric || !g.rng.Valid() {
		return MissingColor
	}
	return g.space.At(Normalize(g.rng.Min(), g.rng.Max(), m.Number) / maxNormalized)
}

// Legend implements Encoding.  It shows the missing-data color, then five
// points from the range minimum to its maximum, each colored at its exact
// fraction of the range.
func (g *Gradient) Legend() []LegendEntry {
	ret := []LegendEntry{{Label: MissingLabel, Color: MissingColor}}
	points := g.rng.Quantiles(legendPoints)
	for idx, v := range points {
		c := g.Color(rowreader.NumericValue(v))
		if g.rng.Max() > g.rng.Min() && len(points) > 1 {
			c = g.space.At(float64(idx) / float64(len(points)-1))
		}
		ret = append(ret, LegendEntry{
			Label: g.FormatValue(v),
			Color: c,
		})
	}
	return ret
}

// FormatValue renders v, with the receiver's unit, for display.
func (g *Gradient) FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 6, 64)
	if g.unit != "" {
		s += " " + g.unit
	}
	return s
}

// LabelColor pairs a categorical label with an HTML hex color.
type LabelColor struct {
	Label string
	Color string
}

// Table encodes categorical measurements by label lookup.
type Table struct {
	entries  []LegendEntry
	byLabel  map[string]colorful.Color
	fallback colorful.Color
	// Observed labels absent from entries, shown in the legend with the
	// fallback color.
	unlisted []string
}

var _ Encoding = &Table{}

// NewTable returns a Table with the specified fallback color and label
// colors.  Legend entries appear in the order provided.
func NewTable(fallback string, entries ...LabelColor) (*Table, error) {
	fb, err := Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	t := &Table{
		byLabel:  map[string]colorful.Color{},
		fallback: fb,
	}
	for _, entry := range entries {
		if _, ok := t.byLabel[entry.Label]; ok {
			return nil, fmt.Errorf("label '%s' is colored more than once", entry.Label)
		}
		c, err := Parse(entry.Color)
		if err != nil {
			return nil, fmt.Errorf("label '%s': %w", entry.Label, err)
		}
		t.byLabel[entry.Label] = c
		t.entries = append(t.entries, LegendEntry{Label: entry.Label, Color: c})
	}
	return t, nil
}

// SleepStageColors colors common sleep-stage labels.
var SleepStageColors = []LabelColor{
	{"deep", "#000080"},
	{"light", "#4169e1"},
	{"rem", "#00c000"},
	{"awake", "#ffd700"},
}

// DefaultSleepStages returns a Table for common sleep-stage labels.
func DefaultSleepStages() *Table {
	t, err := NewTable(DefaultFallback, SleepStageColors...)
	if err != nil {
		panic(err)
	}
	return t
}

// WithObserved returns a copy of the receiver whose legend also lists those
// of the provided labels that have no configured color.
func (t *Table) WithObserved(labels ...string) *Table {
	ret := *t
	ret.unlisted = nil
	for _, label := range labels {
		if _, ok := t.byLabel[label]; !ok {
			ret.unlisted = append(ret.unlisted, label)
		}
	}
	return &ret
}

// Color implements Encoding.  Unlisted labels, and numeric measurements, take
// the fallback color.
func (t *Table) Color(m rowreader.Measurement) colorful.Color {
	switch m.Kind {
	case rowreader.Missing:
		return MissingColor
	case rowreader.Categorical:
		if c, ok := t.byLabel[m.Label]; ok {
			return c
		}
	}
	return t.fallback
}

// Legend implements Encoding.  It shows the missing-data color, then each
// configured label in order, then any observed unlisted labels.
func (t *Table) Legend() []LegendEntry {
	ret := []LegendEntry{{Label: MissingLabel, Color: MissingColor}}
	ret = append(ret, t.entries...)
	for _, label := range t.unlisted {
		ret = append(ret, LegendEntry{Label: label, Color: t.fallback})
	}
	return ret
}
