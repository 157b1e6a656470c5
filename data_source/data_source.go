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

// Package datasource provides per-field day-bucketed datasets drawn from a
// set of delimited input files.
package datasource

import (
	"context"
	"fmt"
	"log"
	"time"

	daybucket "github.com/ilhamster/traceviz/heatviz/analysis/day_bucket"
	"github.com/ilhamster/traceviz/heatviz/category"
)

// DataSource builds Datasets for tracked fields across a fixed, ordered set of
// inputs.  An input's position in that set is its source ordinal, which
// breaks ties between samples recorded at the same minute.  DataSource
// supports concurrent Dataset calls.
type DataSource struct {
	inputs []string
	// An input fetcher, which should cache inputs shared between fields.
	fetcher InputFetcher
	// If true, every skipped row is logged, not just their count.
	verbose bool
}

// New returns a new DataSource drawing from the provided inputs, in order,
// via the provided fetcher.
func New(inputs []string, fetcher InputFetcher, verbose bool) (*DataSource, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	return &DataSource{
		inputs:  inputs,
		fetcher: fetcher,
		verbose: verbose,
	}, nil
}

// Inputs returns the receiver's inputs, in source ordinal order.
func (ds *DataSource) Inputs() []string {
	return append([]string(nil), ds.inputs...)
}

// Header returns the header columns of the first input.
func (ds *DataSource) Header(ctx context.Context) ([]string, error) {
	input, err := ds.fetcher.Fetch(ctx, ds.inputs[0])
	if err != nil {
		return nil, err
	}
	return input.Header, nil
}

// Dataset returns the Dataset of the measurements at the specified field
// index across all inputs.  Rows that can't be parsed, or that are too short
// to hold the field, are skipped and counted; any failure to read an input
// is returned.
func (ds *DataSource) Dataset(ctx context.Context, cat *category.Category, field int) (*daybucket.Dataset, error) {
	// Log how long it takes to build each Dataset.
	start := time.Now()
	b := daybucket.NewBuilder(cat)
	rows, skipped := 0, 0
	for source, path := range ds.inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		input, err := ds.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch input %s: %w", path, err)
		}
		for _, err := range input.Skipped {
			ds.logSkip(cat, err)
		}
		rows += len(input.Rows) + len(input.Skipped)
		skipped += len(input.Skipped)
		for _, row := range input.Rows {
			rec, err := row.Record(field)
			if err != nil {
				ds.logSkip(cat, fmt.Errorf("%s: %w", path, err))
				skipped++
				continue
			}
			b.Add(rec, source)
		}
	}
	ret := b.Build()
	if skipped > 0 {
		log.Printf("%s: skipped %d of %d rows", cat.ID(), skipped, rows)
	}
	if n := ret.ExcludedFromRange(); n > 0 {
		log.Printf("%s: %d zero or negative readings excluded from the color range", cat.ID(), n)
	}
	log.Printf("%s: built %d days from %d inputs in %s", cat.ID(), len(ret.Days()), len(ds.inputs), time.Since(start))
	return ret, nil
}

func (ds *DataSource) logSkip(cat *category.Category, err error) {
	if ds.verbose {
		log.Printf("%s: skipped row: %s", cat.ID(), err)
	}
}
