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

package daybucket

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	rowreader "github.com/ilhamster/traceviz/heatviz/analysis/row_reader"
	"github.com/ilhamster/traceviz/heatviz/category"
)

type sourcedRecord struct {
	source int
	rec    rowreader.Record
}

func rec(source int, d int, minute int, value rowreader.Measurement) sourcedRecord {
	return sourcedRecord{
		source: source,
		rec: rowreader.Record{
			Date:   rowreader.Date{Year: 2015, Month: time.April, Day: d},
			Minute: minute,
			Value:  value,
		},
	}
}

func num(v float64) rowreader.Measurement {
	return rowreader.NumericValue(v)
}

// dayMinutes summarizes a Dataset as date -> minutes, in order.
func dayMinutes(ds *Dataset) []string {
	ret := []string{}
	for _, day := range ds.Days() {
		s := day.Date.String() + ":"
		for _, sample := range day.Samples {
			s += " " + time.Duration(sample.Minute*int(time.Minute)).String() + "=" + sample.Value.String()
		}
		ret = append(ret, s)
	}
	return ret
}

func TestBuilder(t *testing.T) {
	cat := category.New("temp", "Temperature", "")
	for _, test := range []struct {
		description    string
		records        []sourcedRecord
		wantDays       []string
		wantRangeValid bool
		wantMin        float64
		wantMax        float64
		wantLabels     []string
		wantCounts     Counts
		wantExcluded   int
	}{{
		description: "days in ascending order regardless of arrival order",
		records: []sourcedRecord{
			rec(0, 2, 0, num(98.6)),
			rec(1, 1, 0, num(99.0)),
		},
		wantDays: []string{
			"2015-04-01: 0s=99",
			"2015-04-02: 0s=98.6",
		},
		wantRangeValid: true,
		wantMin:        98.6,
		wantMax:        99.0,
		wantLabels:     []string{},
		wantCounts:     Counts{Numeric: 2},
	}, {
		description: "samples interleave by minute, ties broken by source then arrival",
		records: []sourcedRecord{
			rec(1, 1, 2, num(3)),
			rec(1, 1, 1, num(2)),
			rec(0, 1, 2, num(1)),
			rec(0, 1, 2, num(4)),
		},
		wantDays: []string{
			"2015-04-01: 1m0s=2 2m0s=1 2m0s=4 2m0s=3",
		},
		wantRangeValid: true,
		wantMin:        1,
		wantMax:        4,
		wantLabels:     []string{},
		wantCounts:     Counts{Numeric: 4},
	}, {
		// Zero and negative readings are deliberately excluded from the range.
		description: "only strictly positive readings count toward the range",
		records: []sourcedRecord{
			rec(0, 1, 0, num(0)),
			rec(0, 1, 1, num(-3)),
			rec(0, 1, 2, num(5)),
			rec(0, 1, 3, rowreader.MissingValue()),
		},
		wantDays: []string{
			"2015-04-01: 0s=0 1m0s=-3 2m0s=5 3m0s=<missing>",
		},
		wantRangeValid: true,
		wantMin:        5,
		wantMax:        5,
		wantLabels:     []string{},
		wantCounts:     Counts{Numeric: 3, Missing: 1},
		wantExcluded:   2,
	}, {
		description: "no positive readings leaves the sentinel range",
		records: []sourcedRecord{
			rec(0, 1, 0, num(0)),
			rec(0, 1, 1, num(-1)),
		},
		wantDays: []string{
			"2015-04-01: 0s=0 1m0s=-1",
		},
		wantRangeValid: false,
		wantMin:        math.MaxFloat64,
		wantMax:        -math.MaxFloat64,
		wantLabels:     []string{},
		wantCounts:     Counts{Numeric: 2},
		wantExcluded:   2,
	}, {
		description: "categorical labels are collected",
		records: []sourcedRecord{
			rec(0, 1, 0, rowreader.CategoricalValue("rem")),
			rec(0, 1, 1, rowreader.CategoricalValue("deep")),
			rec(0, 1, 2, rowreader.CategoricalValue("rem")),
		},
		wantDays: []string{
			"2015-04-01: 0s=rem 1m0s=deep 2m0s=rem",
		},
		wantRangeValid: false,
		wantMin:        math.MaxFloat64,
		wantMax:        -math.MaxFloat64,
		wantLabels:     []string{"deep", "rem"},
		wantCounts:     Counts{Categorical: 3},
	}} {
		t.Run(test.description, func(t *testing.T) {
			b := NewBuilder(cat)
			for _, sr := range test.records {
				b.Add(sr.rec, sr.source)
			}
			ds := b.Build()
			if diff := cmp.Diff(test.wantDays, dayMinutes(ds)); diff != "" {
				t.Errorf("Days() => %v, diff (-want +got) %s", dayMinutes(ds), diff)
			}
			rng := ds.Range()
			if rng.Valid() != test.wantRangeValid || rng.Min() != test.wantMin || rng.Max() != test.wantMax {
				t.Errorf("Range() = [%v, %v] (valid %t), want [%v, %v] (valid %t)",
					rng.Min(), rng.Max(), rng.Valid(), test.wantMin, test.wantMax, test.wantRangeValid)
			}
			gotLabels := append([]string{}, ds.Labels()...)
			if diff := cmp.Diff(test.wantLabels, gotLabels); diff != "" {
				t.Errorf("Labels() => %v, diff (-want +got) %s", gotLabels, diff)
			}
			if diff := cmp.Diff(test.wantCounts, ds.Counts()); diff != "" {
				t.Errorf("Counts() diff (-want +got) %s", diff)
			}
			if got := ds.ExcludedFromRange(); got != test.wantExcluded {
				t.Errorf("ExcludedFromRange() = %d, want %d", got, test.wantExcluded)
			}
			if ds.Category() != cat {
				t.Errorf("Category() = %v, want %v", ds.Category(), cat)
			}
		})
	}
}

func TestBuildIsolatedFromLaterAdds(t *testing.T) {
	b := NewBuilder(nil)
	b.Add(rec(0, 1, 0, num(1)).rec, 0)
	ds := b.Build()
	b.Add(rec(0, 1, 1, num(2)).rec, 0)
	b.Add(rec(0, 2, 1, num(3)).rec, 0)
	if got := len(ds.Days()); got != 1 {
		t.Fatalf("len(Days()) = %d after later adds, want 1", got)
	}
	if got := len(ds.Days()[0].Samples); got != 1 {
		t.Errorf("len(Samples) = %d after later adds, want 1", got)
	}
	if got := ds.Range().Max(); got != 1 {
		t.Errorf("Range().Max() = %v after later adds, want 1", got)
	}
}
