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

// Package store pkg/store/errors.go
package store

import (
	"fmt"

	"github.com/entitystore/core/pkg/model"
)

// NotFoundError reports that a locator did not resolve to an entity.
type NotFoundError struct {
	Locator model.EntityLocator
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity not found (locator: %s)", e.Locator)
}

// AlreadyExistsError reports that create_attribute_type was asked to
// register a symbol that is already a schema-registry key.
type AlreadyExistsError struct {
	Symbol model.Symbol
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("attribute type %q already exists", e.Symbol.String())
}

// NotIdempotentError reports a symbol-locator upsert whose request did not
// also write the symbol it was keyed on.
type NotIdempotentError struct {
	Locator          model.EntityLocator
	MissingAttribute model.Symbol
}

func (e *NotIdempotentError) Error() string {
	return fmt.Sprintf("update for locator %s must also write attribute %q to be idempotent", e.Locator, e.MissingAttribute.String())
}

// InternalError wraps an invariant violation that the caller cannot
// recover from (e.g. EntityID sequence overflow).
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Err)
	}

	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
