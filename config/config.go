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

// Package config defines heatviz run configuration, loaded from YAML.
//
// A configuration names the input (a single export file, or a directory of
// them), the output (a single document, or a directory of per-field
// documents), the row layout, and the tracked fields:
//
//	title: Visualizing your body
//	input: raw_data
//	output: out
//	fields:
//	  - id: temp
//	    display_name: Skin temperature
//	    index: 1
//	    kind: numeric
//	    unit: F
//	  - id: sleep
//	    index: 2
//	    kind: categorical
//	    colors:
//	      deep: "#000080"
//	      rem: "#00c000"
//
// Absent keys take the values in Default().
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
	"github.com/ilhamster/traceviz/heatviz/category"
	"github.com/ilhamster/traceviz/heatviz/color"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// DefaultTitle is the title of documents with no configured title.
const DefaultTitle = "Visualizing your body"

// Kind is the kind of measurement a tracked field holds.
type Kind string

const (
	// Numeric fields are colored along a gradient.
	Numeric Kind = "numeric"
	// Categorical fields are colored by label.
	Categorical Kind = "categorical"
)

// OutputMode determines how documents are written.
type OutputMode string

const (
	// Single writes one document holding every field.
	Single OutputMode = "single"
	// PerField writes one document per field, plus an index, into a
	// directory.
	PerField OutputMode = "per_field"
)

// LabelColor pairs a categorical label with its HTML hex color.
type LabelColor struct {
	Label string
	Color string
}

// LabelColors is an ordered label-to-color mapping.  In YAML it is written
// as a mapping, whose key order is preserved.
type LabelColors []LabelColor

// UnmarshalYAML implements yaml.Unmarshaler.
func (lc *LabelColors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: colors must be a mapping from label to color", node.Line)
	}
	ret := LabelColors{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var entry LabelColor
		if err := node.Content[i].Decode(&entry.Label); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&entry.Color); err != nil {
			return err
		}
		ret = append(ret, entry)
	}
	*lc = ret
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (lc LabelColors) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range lc {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Label},
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Color},
		)
	}
	return node, nil
}

// Field configures a single tracked field.
type Field struct {
	// ID names the field, and its per-field document.
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Index is the field's column index within input rows.
	Index int  `yaml:"index"`
	Kind  Kind `yaml:"kind"`

	// For numeric fields
	Unit string `yaml:"unit,omitempty"`
	// Gradient lists the HTML hex colors a numeric field's range spans, from
	// minimum to maximum.  If empty, blue to red.
	Gradient []string `yaml:"gradient,omitempty"`

	// For categorical fields
	Colors LabelColors `yaml:"colors,omitempty"`
	// Fallback colors labels absent from Colors.  If empty,
	// color.DefaultFallback.
	Fallback string `yaml:"fallback,omitempty"`
}

// Category returns the field's category.
func (f *Field) Category() *category.Category {
	return category.New(f.ID, f.DisplayName, f.Description)
}

// Config is a complete heatviz run configuration.
type Config struct {
	Title  string `yaml:"title"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	// OutputMode, if empty, is Single if Output ends in ".html" and PerField
	// otherwise.
	OutputMode OutputMode `yaml:"output_mode,omitempty"`
	// Delimiter is the single character separating fields within a row.
	Delimiter      string `yaml:"delimiter"`
	TimestampField int    `yaml:"timestamp_field"`
	// TimeField, if non-negative, is the index of a field holding the time
	// of day, and TimestampField holds only the date.
	TimeField int `yaml:"time_field"`
	// CacheSize is the number of parsed inputs held in memory.
	CacheSize int `yaml:"cache_size"`
	// CellWidthPx and RowHeightPx size heatmap cells; zero leaves them to
	// the browser.
	CellWidthPx int64 `yaml:"cell_width_px"`
	RowHeightPx int64 `yaml:"row_height_px"`
	// Verbose logs every skipped row.
	Verbose bool    `yaml:"verbose"`
	Fields  []Field `yaml:"fields"`
}

// Default returns a Config holding default values and no fields.
func Default() *Config {
	return &Config{
		Title:          DefaultTitle,
		Delimiter:      ",",
		TimestampField: 0,
		TimeField:      -1,
		CacheSize:      16,
		CellWidthPx:    1,
		RowHeightPx:    16,
	}
}

// Load loads the configuration at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses the provided YAML configuration over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

// Mode returns the receiver's effective output mode.
func (c *Config) Mode() OutputMode {
	if c.OutputMode != "" {
		return c.OutputMode
	}
	if strings.HasSuffix(strings.ToLower(c.Output), ".html") {
		return Single
	}
	return PerField
}

// Layout returns the row layout of the receiver's inputs.  Its Field is that
// of the first configured field, if any.
func (c *Config) Layout() rowreader.Layout {
	delim, _ := utf8.DecodeRuneInString(c.Delimiter)
	layout := rowreader.Layout{
		Delimiter:      delim,
		TimestampField: c.TimestampField,
		TimeField:      c.TimeField,
		Field:          rowreader.DefaultLayout().Field,
	}
	if len(c.Fields) > 0 {
		layout.Field = c.Fields[0].Index
	}
	return layout
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate returns every problem with the receiver, joined, or nil if there
// are none.
func (c *Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, invalidf("no input"))
	}
	if c.Output == "" {
		errs = append(errs, invalidf("no output"))
	}
	switch c.Mode() {
	case Single, PerField:
	default:
		errs = append(errs, invalidf("unknown output mode '%s'", c.OutputMode))
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = append(errs, invalidf("delimiter '%s' must be exactly one character", c.Delimiter))
	}
	if c.TimestampField < 0 {
		errs = append(errs, invalidf("negative timestamp field %d", c.TimestampField))
	}
	if c.TimeField == c.TimestampField {
		errs = append(errs, invalidf("time field and timestamp field are both %d", c.TimeField))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, invalidf("cache size %d must be positive", c.CacheSize))
	}
	if c.CellWidthPx < 0 || c.RowHeightPx < 0 {
		errs = append(errs, invalidf("negative cell size"))
	}
	if len(c.Fields) == 0 {
		errs = append(errs, invalidf("no fields"))
	}
	ids := map[string]struct{}{}
	for idx := range c.Fields {
		f := &c.Fields[idx]
		if _, ok := ids[f.ID]; ok {
			errs = append(errs, invalidf("field ID '%s' is used more than once", f.ID))
		}
		ids[f.ID] = struct{}{}
		if err := c.validateField(f); err != nil {
			errs = append(errs, fmt.Errorf("%w: field '%s': %w", ErrInvalid, f.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateField(f *Field) error {
	if err := f.Category().Validate(); err != nil {
		return err
	}
	if f.Index < 0 {
		return fmt.Errorf("negative index %d", f.Index)
	}
	if f.Index == c.TimestampField || (c.TimeField >= 0 && f.Index == c.TimeField) {
		return fmt.Errorf("index %d holds the timestamp", f.Index)
	}
	switch f.Kind {
	case Numeric:
		if len(f.Colors) > 0 || f.Fallback != "" {
			return errors.New("colors and fallback apply only to categorical fields")
		}
		for _, hex := range f.Gradient {
			if _, err := color.Parse(hex); err != nil {
				return fmt.Errorf("gradient: %w", err)
			}
		}
	case Categorical:
		if f.Unit != "" || len(f.Gradient) > 0 {
			return errors.New("unit and gradient apply only to numeric fields")
		}
		if f.Fallback != "" {
			if _, err := color.Parse(f.Fallback); err != nil {
				return fmt.Errorf("fallback: %w", err)
			}
		}
		seen := map[string]struct{}{}
		for _, lc := range f.Colors {
			if _, ok := seen[lc.Label]; ok {
				return fmt.Errorf("label '%s' is colored more than once", lc.Label)
			}
			seen[lc.Label] = struct{}{}
			if _, err := color.Parse(lc.Color); err != nil {
				return fmt.Errorf("label '%s': %w", lc.Label, err)
			}
		}
	default:
		return fmt.Errorf("unknown kind '%s' (want '%s' or '%s')", f.Kind, Numeric, Categorical)
	}
	return nil
}

// ParseField parses a field given on the command line, as
// `id:index:kind[:unit]`.
func ParseField(s string) (Field, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Field{}, fmt.Errorf("field '%s' must be id:index:kind[:unit]", s)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Field{}, fmt.Errorf("field '%s': invalid index: %w", s, err)
	}
	f := Field{
		ID:    parts[0],
		Index: index,
		Kind:  Kind(parts[2]),
	}
	if len(parts) == 4 {
		f.Unit = parts[3]
	}
	return f, nil
}
