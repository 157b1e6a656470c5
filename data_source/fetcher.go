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

package datasource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"golang.org/x/sync/singleflight"

	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
)

// ErrNoInputs is returned when an input directory holds no input files.
var ErrNoInputs = errors.New("no input files")

// Inputs returns the input files at the specified path.  If path names a
// regular file, it is the only input.  If it names a directory, every regular
// file directly within it is an input, in name order; hidden files are
// ignored.  A missing path or an empty directory is an error.
func Inputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	ret := []string{}
	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ret = append(ret, filepath.Join(path, entry.Name()))
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoInputs)
	}
	return ret, nil
}

// Input is a single fetched input file: its header, every row whose timestamp
// parsed, and the errors of rows that didn't.
type Input struct {
	Path   string
	Header []string
	Rows   []rowreader.Row
	// Skipped holds one *rowreader.ParseError per row that couldn't be parsed.
	Skipped []error
}

// InputFetcher describes types capable of fetching inputs by path.
// Implementations must support concurrent Fetch calls.
type InputFetcher interface {
	// Fetch fetches the input at path, returning an Input or an error if the
	// input can't be read at all.
	Fetch(ctx context.Context, path string) (*Input, error)
}

// FileFetcher fetches inputs from the local filesystem.  It caches the most
// recently used inputs, so that several fields may be drawn from the same
// files while reading each only once.
type FileFetcher struct {
	layout rowreader.Layout
	group  singleflight.Group

	mu sync.Mutex
	// An LRU cache holding the most recently-accessed inputs.
	lru *simplelru.LRU
}

// NewFileFetcher returns a new FileFetcher with the specified cache capacity,
// splitting rows per the provided layout.
func NewFileFetcher(cap int, layout rowreader.Layout) (*FileFetcher, error) {
	lru, err := simplelru.NewLRU(cap, nil /* no onEvict policy */)
	if err != nil {
		return nil, err
	}
	return &FileFetcher{
		layout: layout,
		lru:    lru,
	}, nil
}

func (ff *FileFetcher) cached(path string) (*Input, bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	inputIf, ok := ff.lru.Get(path)
	if !ok {
		return nil, false
	}
	input, ok := inputIf.(*Input)
	return input, ok
}

// Fetch returns the specified input from the cache if it's present there.  If
// it isn't already cached, it is read and added to the cache before being
// returned.  Concurrent fetches of the same uncached path read it once.
func (ff *FileFetcher) Fetch(ctx context.Context, path string) (*Input, error) {
	if input, ok := ff.cached(path); ok {
		return input, nil
	}
	inputIf, err, _ := ff.group.Do(path, func() (any, error) {
		if input, ok := ff.cached(path); ok {
			return input, nil
		}
		input, err := ff.read(ctx, path)
		if err != nil {
			return nil, err
		}
		ff.mu.Lock()
		ff.lru.Add(path, input)
		ff.mu.Unlock()
		return input, nil
	})
	if err != nil {
		return nil, err
	}
	return inputIf.(*Input), nil
}

func (ff *FileFetcher) read(ctx context.Context, path string) (*Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	// The Reader takes ownership of the file.
	rr, err := rowreader.New(path, rowreader.ReaderCloser{
		Reader: bufio.NewReader(file),
		Closer: file,
	}, ff.layout)
	if err != nil {
		file.Close()
		return nil, err
	}
	defer rr.Close()
	input := &Input{
		Path:   rr.Filename(),
		Header: rr.Header(),
	}
	for row, err := range rr.Rows() {
		if err != nil {
			var pe *rowreader.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			input.Skipped = append(input.Skipped, fmt.Errorf("%s: %w", path, err))
			continue
		}
		input.Rows = append(input.Rows, row)
		if len(input.Rows)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return input, nil
}

// ctxCheckInterval is the number of rows read between cancellation checks.
const ctxCheckInterval = 4096
