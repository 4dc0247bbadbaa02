/*
 * Copyright 2025 The Entity Store Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package validate pkg/validate/errors.go
package validate

import "strings"

// FieldError is a single (field-path, message) pair, ready for the boundary
// adapter to map to a per-field diagnostic.
type FieldError struct {
	Path    string
	Message string
}

// Error is a list of FieldErrors describing every structural or schema
// violation found in a single request. It is always non-empty when
// returned.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Path + ": " + f.Message
	}

	return "validation error: " + strings.Join(parts, "; ")
}

// Report accumulates FieldErrors so that index- and field-name segments
// compose into dotted paths like "attributes_to_update[0].value".
type Report struct {
	fields []FieldError
}

// Add appends a field error at path.
func (r *Report) Add(path, message string) {
	r.fields = append(r.fields, FieldError{Path: path, Message: message})
}

// Empty reports whether no errors have been recorded.
func (r *Report) Empty() bool {
	return len(r.fields) == 0
}

// Err returns nil if the report is empty, or an *Error wrapping the
// recorded FieldErrors otherwise.
func (r *Report) Err() error {
	if r.Empty() {
		return nil
	}

	return &Error{Fields: append([]FieldError(nil), r.fields...)}
}
