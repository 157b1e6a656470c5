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

// Package fielddispatcher provides FieldDispatcher, a type for building and
// handling the datasets of several tracked fields concurrently.  Fields are
// independent of one another, so each is built and handled in its own
// goroutine; the first failure cancels the rest.
package fielddispatcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	daybucket "github.com/ilhamster/traceviz/heatviz/analysis/day_bucket"
	"github.com/ilhamster/traceviz/heatviz/category"
	"github.com/ilhamster/traceviz/heatviz/color"
	"github.com/ilhamster/traceviz/heatviz/heatmap"
)

// datasetSource represents a source of per-field Datasets.  datasetSource
// instances must support concurrent Dataset calls.
type datasetSource interface {
	// Dataset returns the Dataset of the measurements at the specified field
	// index, described by the provided category.
	Dataset(ctx context.Context, cat *category.Category, field int) (*daybucket.Dataset, error)
}

// EncodingFunc returns the color encoding for a field's Dataset.  Gradients,
// for instance, depend on the Dataset's range.
type EncodingFunc func(ds *daybucket.Dataset) color.Encoding

// Field describes a single tracked field.
type Field struct {
	Category *category.Category
	// Index is the field's column index within input rows.
	Index    int
	Encoding EncodingFunc
}

// FieldDispatcher builds tracked fields' Datasets and their encodings,
// dispatching the results to handlers.
type FieldDispatcher struct {
	source datasetSource
	fields []*Field
}

// New returns a *FieldDispatcher building the provided fields from source.
// Field IDs must be unique and valid.
func New(source datasetSource, fields ...*Field) (*FieldDispatcher, error) {
	fd := &FieldDispatcher{
		source: source,
	}
	ids := map[string]struct{}{}
	for _, f := range fields {
		if err := f.Category.Validate(); err != nil {
			return nil, err
		}
		if _, ok := ids[f.Category.ID()]; ok {
			return nil, fmt.Errorf("multiple fields have ID `%s`", f.Category.ID())
		}
		ids[f.Category.ID()] = struct{}{}
		if f.Encoding == nil {
			return nil, fmt.Errorf("field `%s` has no encoding", f.Category.ID())
		}
		fd.fields = append(fd.fields, f)
	}
	return fd, nil
}

// Categories returns the categories of the receiver's fields, in order.
func (fd *FieldDispatcher) Categories() []*category.Category {
	ret := make([]*category.Category, len(fd.fields))
	for idx, f := range fd.fields {
		ret[idx] = f.Category
	}
	return ret
}

func (fd *FieldDispatcher) build(ctx context.Context, f *Field) (heatmap.Field, error) {
	ds, err := fd.source.Dataset(ctx, f.Category, f.Index)
	if err != nil {
		return heatmap.Field{}, fmt.Errorf("error building field %s: %w", f.Category.ID(), err)
	}
	return heatmap.Field{
		Dataset:  ds,
		Encoding: f.Encoding(ds),
	}, nil
}

// Dispatch concurrently builds each of the receiver's fields and passes it to
// handle.  handle must support concurrent calls.  Any returned error cancels
// the context passed to the remaining builds and handlers, and is returned.
func (fd *FieldDispatcher) Dispatch(ctx context.Context, handle func(ctx context.Context, f heatmap.Field) error) error {
	errg, ctx := errgroup.WithContext(ctx)
	for _, f := range fd.fields {
		errg.Go(func() error {
			hf, err := fd.build(ctx, f)
			if err != nil {
				return err
			}
			return handle(ctx, hf)
		})
	}
	return errg.Wait()
}

// Fields concurrently builds each of the receiver's fields, returning them in
// the order the receiver was created with.
func (fd *FieldDispatcher) Fields(ctx context.Context) ([]heatmap.Field, error) {
	ret := make([]heatmap.Field, len(fd.fields))
	errg, ctx := errgroup.WithContext(ctx)
	for idx, f := range fd.fields {
		errg.Go(func() error {
			hf, err := fd.build(ctx, f)
			if err != nil {
				return err
			}
			ret[idx] = hf
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}
