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

// Package style supports specifying CSS styling for rendered elements.
//
// A Style instance comprises a set of CSS properties.  A Style is converted
// to a safehtml.Style, suitable for a `style` attribute in a safehtml
// template, via its `Define()` method.  Property values are sanitized by
// safehtml: a value containing disallowed characters (such as the
// parentheses of `rgb(...)`) is replaced with an innocuous placeholder, so
// colors should be given in hex.
package style

import (
	"github.com/google/safehtml"
	"github.com/lucasb-eyer/go-colorful"
)

// Style defines a set of CSS properties that can be attached to an element.
type Style struct {
	props safehtml.StyleProperties
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{}
}

// Define returns the receiver as a safehtml.Style.
func (s *Style) Define() safehtml.Style {
	return safehtml.StyleFromProperties(s.props)
}

// Background sets the receiver's background color.
func (s *Style) Background(c colorful.Color) *Style {
	s.props.BackgroundColor = c.Clamped().Hex()
	return s
}

// Foreground sets the receiver's text color.
func (s *Style) Foreground(c colorful.Color) *Style {
	s.props.Color = c.Clamped().Hex()
	return s
}

// Padding sets the receiver's padding, e.g. "0 4px".
func (s *Style) Padding(padding string) *Style {
	s.props.Padding = padding
	return s
}

// Width sets the receiver's width, e.g. "2px".
func (s *Style) Width(width string) *Style {
	s.props.Width = width
	return s
}

// Height sets the receiver's height, e.g. "12px".
func (s *Style) Height(height string) *Style {
	s.props.Height = height
	return s
}
