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

// Package rowreader parses delimited health-tracker exports into dated,
// minute-of-day Records.
//
// An export is a header line followed by rows whose timestamp field reads
// `YYYY-MM-DD HH:MM:SS` and whose remaining fields are measurement columns
// addressed by index.  Rows that can't be parsed are reported as *ParseErrors
// and skipped; they never end the read.
package rowreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// maxLineBytes bounds the length of a single row.
const maxLineBytes = 1 << 20

// ErrNoHeader is returned when an input has no header line.
var ErrNoHeader = errors.New("input has no header line")

// ReaderCloser couples a buffered reader with an optional Closer for its
// underlying source.
type ReaderCloser struct {
	*bufio.Reader
	io.Closer
}

func (r *ReaderCloser) Close() {
	if r.Closer != nil {
		r.Closer.Close()
	}
}

// Reader converts a delimited text export into a stream of Rows.
type Reader struct {
	filename string
	reader   ReaderCloser
	layout   Layout
	scanner  *bufio.Scanner
	header   []string
	line     int
	consumed bool
}

// New returns a new Reader drawing from the provided reader, and consumes the
// header line.  If the input is empty, New returns ErrNoHeader.
func New(filename string, reader ReaderCloser, layout Layout) (*Reader, error) {
	scanner := bufio.NewScanner(reader.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	r := &Reader{
		filename: filename,
		reader:   reader,
		layout:   layout,
		scanner:  scanner,
	}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%s: failed to read header: %w", filename, err)
		}
		return nil, fmt.Errorf("%s: %w", filename, ErrNoHeader)
	}
	r.line = 1
	header := strings.TrimRight(scanner.Text(), "\r\n")
	r.header = strings.Split(header, string(layout.Delimiter))
	return r, nil
}

// Filename returns the name the receiver was created with.
func (r *Reader) Filename() string {
	return r.filename
}

// Header returns the column names from the input's header line.
func (r *Reader) Header() []string {
	return r.header
}

// Close closes the underlying source, if it has a Closer.
func (r *Reader) Close() {
	r.reader.Close()
}

// Rows returns a sequence of the input's rows.  A row that fails to parse is
// yielded with a *ParseError carrying its line number, and iteration
// continues with the next line.  Any other error is fatal: it is yielded last.
// Blank lines are skipped silently.
//
// Since the input is consumed, the returned sequence may only be iterated
// once; later iterations yield nothing.
func (r *Reader) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if r.consumed {
			return
		}
		r.consumed = true
		for r.scanner.Scan() {
			r.line++
			line := r.scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			row, err := SplitRow(line, r.layout)
			if err != nil {
				if !yield(Row{}, r.annotate(err)) {
					return
				}
				continue
			}
			row.Line = r.line
			if !yield(row, nil) {
				return
			}
		}
		if err := r.scanner.Err(); err != nil {
			yield(Row{}, fmt.Errorf("%s: read failed after line %d: %w", r.filename, r.line, err))
		}
	}
}

// Records returns a sequence of Records holding the measurement in the
// receiver's layout field.  Errors are reported as for Rows.
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for row, err := range r.Rows() {
			if err != nil {
				if !yield(Record{}, err) {
					return
				}
				continue
			}
			if !yield(row.Record(r.layout.Field)) {
				return
			}
		}
	}
}

func (r *Reader) annotate(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Line = r.line
	}
	return err
}
