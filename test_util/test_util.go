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

// Package testutil provides types and methods facilitating testing of
// rendered markup fragment sequences.
package testutil

import (
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/safehtml"
)

// Drain consumes the provided fragment sequence, returning each fragment as
// a string.  It stops at, and returns, the first error yielded.
func Drain(seq iter.Seq2[safehtml.HTML, error]) ([]string, error) {
	ret := []string{}
	for h, err := range seq {
		if err != nil {
			return ret, err
		}
		ret = append(ret, h.String())
	}
	return ret, nil
}

// Render consumes the provided fragment sequence, returning the concatenated
// markup.
func Render(seq iter.Seq2[safehtml.HTML, error]) (string, error) {
	frags, err := Drain(seq)
	return strings.Join(frags, ""), err
}

// Fragments returns a sequence yielding the provided fragments without error.
func Fragments(frags ...safehtml.HTML) iter.Seq2[safehtml.HTML, error] {
	return func(yield func(safehtml.HTML, error) bool) {
		for _, h := range frags {
			if !yield(h, nil) {
				return
			}
		}
	}
}

// FragmentComparator facilitates testing of fragment sequences, ensuring that
// a 'got' sequence-under-test yields the same fragments, in the same order,
// as a provided 'want' list.
type FragmentComparator struct {
	got  iter.Seq2[safehtml.HTML, error]
	want []string
}

// NewFragmentComparator returns a new, empty FragmentComparator.
func NewFragmentComparator() *FragmentComparator {
	return &FragmentComparator{}
}

// WithTestFragments specifies the receiver's sequence-under-test.
func (fc *FragmentComparator) WithTestFragments(got iter.Seq2[safehtml.HTML, error]) *FragmentComparator {
	fc.got = got
	return fc
}

// WithWantFragments specifies the fragments the receiver's sequence-under-test
// should yield.
func (fc *FragmentComparator) WithWantFragments(want ...string) *FragmentComparator {
	fc.want = want
	return fc
}

// Compare the receiver's 'got' and 'want' fragments, returning a difference
// message (empty if no difference) and a boolean indicating whether the two
// are different (true) or not (false).  Fragment boundaries are significant.
// An error from the sequence-under-test is fatal.
func (fc *FragmentComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	got, err := Drain(fc.got)
	if err != nil {
		t.Fatalf("fragment sequence yielded unexpected error %s", err)
	}
	want := fc.want
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Sprintf("Got fragments %q, diff (-want +got):\n%s", got, diff), true
	}
	return "", false
}

// CompareMarkup is a test helper for markup renderers.  It renders the
// provided sequence and compares its concatenated output with want, raising
// an error on the provided testing.T if they differ.  If the sequence yields
// an error, returns it.
func CompareMarkup(t *testing.T, got iter.Seq2[safehtml.HTML, error], want string) error {
	t.Helper()
	gotMarkup, err := Render(got)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(want, gotMarkup); diff != "" {
		t.Errorf("Got markup %s, diff (-want +got) %s", gotMarkup, diff)
	}
	return nil
}
