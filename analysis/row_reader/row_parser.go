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

package rowreader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Layout describes where the timestamp and measurements live in a delimited
// row.
type Layout struct {
	// Delimiter separates fields within a row.
	Delimiter rune
	// TimestampField is the index of the field holding the timestamp.  If
	// TimeField is negative this field holds a combined
	// `YYYY-MM-DD HH:MM:SS` stamp; otherwise it holds only the date.
	TimestampField int
	// TimeField, if non-negative, is the index of a separate field holding
	// the `HH:MM:SS` time of day.
	TimeField int
	// Field is the index of the measurement field ParseLine extracts.
	Field int
}

// DefaultLayout returns the layout of a comma-delimited row with a combined
// timestamp in its first field and a measurement in its second.
func DefaultLayout() Layout {
	return Layout{
		Delimiter:      ',',
		TimestampField: 0,
		TimeField:      -1,
		Field:          1,
	}
}

// ParseError describes a single row that could not be parsed.  ParseErrors
// are local to their row: readers report them and continue.
type ParseError struct {
	// Line is the 1-based line number of the row within its file, or 0 if
	// unknown.  The header is line 1.
	Line   int
	Reason string
}

func (pe *ParseError) Error() string {
	if pe.Line > 0 {
		return fmt.Sprintf("line %d: %s", pe.Line, pe.Reason)
	}
	return pe.Reason
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// Row is a row whose timestamp has been parsed, but whose measurement fields
// have not.
type Row struct {
	// Line is the row's 1-based line number within its file, or 0 if
	// unknown.
	Line   int
	Date   Date
	Minute int
	Fields []string
}

// Record extracts the measurement at the specified field index.  A row too
// short to hold that field yields a *ParseError; a field that is present but
// empty or unparseable yields a Missing measurement.
func (r Row) Record(field int) (Record, error) {
	if field < 0 || field >= len(r.Fields) {
		pe := parseErrorf("no measurement field %d in %d-field row", field, len(r.Fields))
		pe.Line = r.Line
		return Record{}, pe
	}
	return Record{
		Date:   r.Date,
		Minute: r.Minute,
		Value:  parseMeasurement(r.Fields[field]),
	}, nil
}

// SplitRow splits the provided line into fields and parses its timestamp.  It
// returns a *ParseError if the timestamp is malformed or absent.
func SplitRow(line string, layout Layout) (Row, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, string(layout.Delimiter))
	if layout.TimestampField < 0 || layout.TimestampField >= len(fields) {
		return Row{}, parseErrorf("no timestamp field %d in %d-field row", layout.TimestampField, len(fields))
	}
	var datePart, timePart string
	if layout.TimeField < 0 {
		parts := strings.Split(strings.TrimSpace(fields[layout.TimestampField]), " ")
		if len(parts) != 2 {
			return Row{}, parseErrorf("can't split timestamp '%s' into date and time", fields[layout.TimestampField])
		}
		datePart, timePart = parts[0], parts[1]
	} else {
		if layout.TimeField >= len(fields) {
			return Row{}, parseErrorf("no time field %d in %d-field row", layout.TimeField, len(fields))
		}
		datePart = strings.TrimSpace(fields[layout.TimestampField])
		timePart = strings.TrimSpace(fields[layout.TimeField])
	}
	date, err := parseDate(datePart)
	if err != nil {
		return Row{}, err
	}
	minute, err := parseMinuteOfDay(timePart)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Date:   date,
		Minute: minute,
		Fields: fields,
	}, nil
}

// ParseLine parses a single delimited line into a Record holding the
// measurement at layout.Field.  It returns a *ParseError if the line should
// be skipped.
func ParseLine(line string, layout Layout) (Record, error) {
	row, err := SplitRow(line, layout)
	if err != nil {
		return Record{}, err
	}
	return row.Record(layout.Field)
}

func atois(s, sep, what string) ([3]int, error) {
	var ret [3]int
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return ret, parseErrorf("%s '%s' does not have three '%s'-separated parts", what, s, sep)
	}
	for idx, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return ret, parseErrorf("failed to parse %s component `%s` as int", what, part)
		}
		ret[idx] = v
	}
	return ret, nil
}

func parseDate(s string) (Date, error) {
	ymd, err := atois(s, "-", "date")
	if err != nil {
		return Date{}, err
	}
	date, err := NewDate(ymd[0], ymd[1], ymd[2])
	if err != nil {
		return Date{}, parseErrorf("invalid date '%s': %s", s, err)
	}
	return date, nil
}

// parseMinuteOfDay returns hour*60+minute for an `HH:MM:SS` time.  Seconds
// must parse but are otherwise ignored.
func parseMinuteOfDay(s string) (int, error) {
	hms, err := atois(s, ":", "time")
	if err != nil {
		return 0, err
	}
	hour, minute, second := hms[0], hms[1], hms[2]
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 60 {
		return 0, parseErrorf("time '%s' out of range", s)
	}
	return hour*60 + minute, nil
}

// parseMeasurement classifies a raw field.  A field starting with a letter is
// a categorical label, kept verbatim; otherwise it must be a finite number.
// Anything else, including an empty field, is Missing.
func parseMeasurement(field string) Measurement {
	if field == "" {
		return MissingValue()
	}
	if first, _ := utf8.DecodeRuneInString(field); unicode.IsLetter(first) {
		return CategoricalValue(field)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingValue()
	}
	return NumericValue(v)
}
