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

// Package category supports declaring data categories: the tracked fields of
// an export, such as skin temperature or sleep stage.  A category's ID names
// the field in configuration and in rendered file names; its display name and
// description are shown to readers.
package category

import (
	"fmt"
	"regexp"

	"github.com/google/safehtml"
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Category defines a data category.
type Category struct {
	id, description, displayName string
}

// New returns a new Category with the provided ID, display name, and
// description.  If displayName is empty, the ID is displayed instead.
func New(id, displayName, description string) *Category {
	if displayName == "" {
		displayName = id
	}
	return &Category{
		id:          id,
		description: description,
		displayName: displayName,
	}
}

// Validate returns an error if the receiver's ID can't safely name a file.
func (c *Category) Validate() error {
	if !idRe.MatchString(c.id) {
		return fmt.Errorf("category ID '%s' must start with a letter or digit and contain only letters, digits, '_' or '-'", c.id)
	}
	return nil
}

// ID returns the category's ID.
func (c *Category) ID() string {
	return c.id
}

// DisplayName returns the category's display name.
func (c *Category) DisplayName() string {
	return c.displayName
}

// Description returns the category's description.
func (c *Category) Description() string {
	return c.description
}

// Filename returns the name of the document rendering this category alone.
func (c *Category) Filename() string {
	return c.id + ".html"
}

// Identifier returns an HTML element ID for the category's section of a
// rendered document.  It panics if the receiver does not Validate.
func (c *Category) Identifier() safehtml.Identifier {
	return safehtml.IdentifierFromConstantPrefix("field", c.id)
}
