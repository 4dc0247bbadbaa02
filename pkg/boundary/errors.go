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

package boundary

import "fmt"

// InvalidEntityIDError reports that an external EntityId string could not
// be decoded.
type InvalidEntityIDError struct {
	Value string
	Err   error
}

func (e *InvalidEntityIDError) Error() string {
	return fmt.Sprintf("invalid entity id %q: %v", e.Value, e.Err)
}

func (e *InvalidEntityIDError) Unwrap() error { return e.Err }

// InvalidEntityVersionError reports that an external EntityVersion string
// could not be decoded.
type InvalidEntityVersionError struct {
	Value string
	Err   error
}

func (e *InvalidEntityVersionError) Error() string {
	return fmt.Sprintf("invalid entity version %q: %v", e.Value, e.Err)
}

func (e *InvalidEntityVersionError) Unwrap() error { return e.Err }

// InvalidValueTypeNameError reports an external value-type name that does
// not name one of {"text", "entityRef", "bytes"}.
type InvalidValueTypeNameError struct {
	Value string
}

func (e *InvalidValueTypeNameError) Error() string {
	return fmt.Sprintf("invalid value type name %q", e.Value)
}

// MissingLocatorError reports an ExternalLocator with neither field set.
type MissingLocatorError struct{}

func (*MissingLocatorError) Error() string {
	return "locator must set either entity_id or symbol"
}

// MissingAttributeValueTagError reports an ExternalAttributeValue with no
// field set where one was required.
type MissingAttributeValueTagError struct {
	Path string
}

func (e *MissingAttributeValueTagError) Error() string {
	return fmt.Sprintf("%s: attribute value must set exactly one of string_value, entity_id_value, bytes_value", e.Path)
}
