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

// Package continuousaxis provides helpers for continuous value axes.  An axis
// has minimum and maximum points along its domain.
//
// An axis with no extents has its minimum at +math.MaxFloat64 and its maximum
// at -math.MaxFloat64, so that its first extent sets both.  Such an axis is
// not Valid, and positions along it are undefined.
package continuousaxis

import (
	"math"
)

// Axis is a continuous double-valued axis.
type Axis struct {
	min, max float64
}

// NewDoubleAxis returns a new Axis.  If the optional extents are provided, the
// axis' minimum and maximum extents will be initialized to the lowest and
// highest of those extents.
func NewDoubleAxis(extents ...float64) *Axis {
	a := &Axis{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
	for _, extent := range extents {
		a.Extend(extent)
	}
	return a
}

// Extend widens the receiver, if necessary, to include v.
func (a *Axis) Extend(v float64) {
	if a.min > v {
		a.min = v
	}
	if a.max < v {
		a.max = v
	}
}

// Valid returns true if the receiver has been extended at least once, that
// is, if its minimum does not exceed its maximum.
func (a *Axis) Valid() bool {
	return a.min <= a.max
}

// Min returns the receiver's minimum extent.
func (a *Axis) Min() float64 {
	return a.min
}

// Max returns the receiver's maximum extent.
func (a *Axis) Max() float64 {
	return a.max
}

// Quantiles returns n evenly-spaced points from the receiver's minimum to its
// maximum, inclusive.  With n == 5 these are the minimum, the 25th, 50th and
// 75th percentiles of the range, and the maximum.  The endpoints are exact.
// An invalid axis has no quantiles.
func (a *Axis) Quantiles(n int) []float64 {
	if !a.Valid() || n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a.min}
	}
	ret := make([]float64, n)
	for i := range ret {
		frac := float64(i) / float64(n-1)
		ret[i] = a.min*(1-frac) + a.max*frac
	}
	ret[n-1] = a.max
	return ret
}
