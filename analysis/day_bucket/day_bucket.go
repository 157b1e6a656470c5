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

// Package daybucket groups parsed Records by calendar day.
//
// A Builder accepts Records from any number of sources (input files), in any
// order, and produces an immutable Dataset.  Within a Dataset, days are in
// ascending date order, and each day's samples are ordered by minute of day,
// with ties broken by source ordinal and then by arrival order within that
// source.  The result therefore doesn't depend on the order in which sources
// were read, only on their ordinals.
//
// For numeric data the Dataset also carries the dataset-wide range of
// readings.  Only strictly positive readings extend this range: zero and
// negative readings are recorded and rendered, but never widen the gradient.
package daybucket

import (
	"sort"

	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
	"github.com/ilhamster/traceviz/heatviz/category"
	continuousaxis "github.com/ilhamster/traceviz/heatviz/continuous_axis"
)

// Sample is a single measurement within a day.
type Sample struct {
	Minute int
	Value  rowreader.Measurement
	// Source is the ordinal of the input the sample was read from.
	Source int
	// Seq is the sample's global arrival order.
	Seq int
}

// Day is the set of all samples recorded on one calendar date.
type Day struct {
	Date    rowreader.Date
	Samples []Sample
}

// Builder accumulates Records into a Dataset.  A Builder is not safe for
// concurrent use.
type Builder struct {
	cat      *category.Category
	days     map[rowreader.Date]*Day
	rng      *continuousaxis.Axis
	labels   map[string]struct{}
	seq      int
	counts   Counts
	excluded int
}

// NewBuilder returns a new, empty Builder for the specified field category.
func NewBuilder(cat *category.Category) *Builder {
	return &Builder{
		cat:    cat,
		days:   map[rowreader.Date]*Day{},
		rng:    continuousaxis.NewDoubleAxis(),
		labels: map[string]struct{}{},
	}
}

// Add adds the provided Record, read from the source with the specified
// ordinal.
func (b *Builder) Add(rec rowreader.Record, source int) {
	day, ok := b.days[rec.Date]
	if !ok {
		day = &Day{Date: rec.Date}
		b.days[rec.Date] = day
	}
	day.Samples = append(day.Samples, Sample{
		Minute: rec.Minute,
		Value:  rec.Value,
		Source: source,
		Seq:    b.seq,
	})
	b.seq++
	switch rec.Value.Kind {
	case rowreader.Numeric:
		b.counts.Numeric++
		if rec.Value.Number > 0 {
			b.rng.Extend(rec.Value.Number)
		} else {
			b.excluded++
		}
	case rowreader.Categorical:
		b.counts.Categorical++
		b.labels[rec.Value.Label] = struct{}{}
	default:
		b.counts.Missing++
	}
}

// Build returns a Dataset holding everything added so far.  The Builder may
// continue to be used; later additions don't affect the returned Dataset.
func (b *Builder) Build() *Dataset {
	ds := &Dataset{
		cat:      b.cat,
		days:     make([]Day, 0, len(b.days)),
		rng:      *b.rng,
		counts:   b.counts,
		excluded: b.excluded,
	}
	for _, day := range b.days {
		samples := make([]Sample, len(day.Samples))
		copy(samples, day.Samples)
		sort.Slice(samples, func(i, j int) bool {
			sa, sb := samples[i], samples[j]
			if sa.Minute != sb.Minute {
				return sa.Minute < sb.Minute
			}
			if sa.Source != sb.Source {
				return sa.Source < sb.Source
			}
			return sa.Seq < sb.Seq
		})
		ds.days = append(ds.days, Day{
			Date:    day.Date,
			Samples: samples,
		})
	}
	sort.Slice(ds.days, func(i, j int) bool {
		return ds.days[i].Date.Before(ds.days[j].Date)
	})
	for label := range b.labels {
		ds.labels = append(ds.labels, label)
	}
	sort.Strings(ds.labels)
	return ds
}

// Counts tallies the samples in a Dataset by kind.
type Counts struct {
	Numeric, Categorical, Missing int
}

// Total returns the total number of samples.
func (c Counts) Total() int {
	return c.Numeric + c.Categorical + c.Missing
}

// Dataset is an immutable collection of day buckets for a single field.
type Dataset struct {
	cat      *category.Category
	days     []Day
	rng      continuousaxis.Axis
	labels   []string
	counts   Counts
	excluded int
}

// Category returns the field category the Dataset describes.
func (ds *Dataset) Category() *category.Category {
	return ds.cat
}

// Days returns the Dataset's days in ascending date order.  The returned
// slice must not be modified.
func (ds *Dataset) Days() []Day {
	return ds.days
}

// Range returns a copy of the range of strictly positive numeric readings in
// the Dataset.  If there were none, the returned axis is not Valid.
func (ds *Dataset) Range() *continuousaxis.Axis {
	rng := ds.rng
	return &rng
}

// Labels returns the distinct categorical labels in the Dataset, sorted.
func (ds *Dataset) Labels() []string {
	return append([]string(nil), ds.labels...)
}

// Counts returns the number of samples of each kind in the Dataset.
func (ds *Dataset) Counts() Counts {
	return ds.counts
}

// ExcludedFromRange returns the number of numeric readings that were zero or
// negative, and so were not considered in Range.
func (ds *Dataset) ExcludedFromRange() int {
	return ds.excluded
}
