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
	"strconv"
	"time"
)

// Kind describes which kind of value a Measurement holds.
type Kind int

// Enumerated measurement kinds.  The zero Kind is Missing.
const (
	Missing Kind = iota
	Numeric
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Measurement is a single recorded value of a tracked field.  Exactly one of
// Number or Label is meaningful, as selected by Kind; a Missing measurement
// carries neither, so no real reading (including 0 or -1) is ever confused
// with the absence of one.
type Measurement struct {
	Kind   Kind
	Number float64
	Label  string
}

// MissingValue returns a Missing measurement.
func MissingValue() Measurement {
	return Measurement{}
}

// NumericValue returns a Numeric measurement holding v.
func NumericValue(v float64) Measurement {
	return Measurement{Kind: Numeric, Number: v}
}

// CategoricalValue returns a Categorical measurement holding label.
func CategoricalValue(label string) Measurement {
	return Measurement{Kind: Categorical, Label: label}
}

func (m Measurement) String() string {
	switch m.Kind {
	case Numeric:
		return strconv.FormatFloat(m.Number, 'g', -1, 64)
	case Categorical:
		return m.Label
	default:
		return "<missing>"
	}
}

// Date is a calendar date without a time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for the provided year, month, and day, or an error
// if they do not name a real calendar date (e.g. 2015-13-40 or 2015-02-30).
func NewDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month %d out of range", month)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflowing days into the next month; a real date
	// survives the round trip unchanged.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// Before returns true if the receiver is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Record is a single parsed measurement: the date and minute of day it was
// recorded at, and its value.
type Record struct {
	Date Date
	// Minute is the minute of the day, in [0, 1440).
	Minute int
	Value  Measurement
}
