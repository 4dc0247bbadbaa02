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

package model

import "fmt"

// ValueType enumerates the tags an AttributeValue may carry. Each value type
// has a canonical EntityID reserved at bootstrap so it can itself appear as
// an EntityReference AttributeValue.
type ValueType int

const (
	// ValueTypeText marks a symbol's values as UTF-8 text.
	ValueTypeText ValueType = iota + 1
	// ValueTypeEntityReference marks a symbol's values as references to
	// other entities.
	ValueTypeEntityReference
	// ValueTypeBytes marks a symbol's values as opaque byte strings.
	ValueTypeBytes
)

// CanonicalEntityID returns the bootstrap EntityID reserved for this value
// type (the `@valueType/*` entity).
func (vt ValueType) CanonicalEntityID() EntityID {
	switch vt {
	case ValueTypeText:
		return EntityID(3)
	case ValueTypeEntityReference:
		return EntityID(4)
	case ValueTypeBytes:
		return EntityID(5)
	default:
		panic(fmt.Sprintf("model: unknown value type %d", vt))
	}
}

// ValueTypeFromCanonicalEntityID inverts CanonicalEntityID. It returns
// InvalidValueTypeError if id does not name one of the three canonical
// value-type entities.
func ValueTypeFromCanonicalEntityID(id EntityID) (ValueType, error) {
	switch id {
	case EntityID(3):
		return ValueTypeText, nil
	case EntityID(4):
		return ValueTypeEntityReference, nil
	case EntityID(5):
		return ValueTypeBytes, nil
	default:
		return 0, &InvalidValueTypeError{EntityID: id}
	}
}

// InvalidValueTypeError reports that a stored entity reference does not
// resolve to a known value-type entity.
type InvalidValueTypeError struct {
	EntityID EntityID
}

func (e *InvalidValueTypeError) Error() string {
	return fmt.Sprintf("invalid value type entity id: %d", e.EntityID)
}

// String renders the value type using its bootstrap symbol name.
func (vt ValueType) String() string {
	switch vt {
	case ValueTypeText:
		return "@valueType/text"
	case ValueTypeEntityReference:
		return "@valueType/entityRef"
	case ValueTypeBytes:
		return "@valueType/bytes"
	default:
		return "@valueType/unknown"
	}
}

// Kind identifies which of the three AttributeValue variants a value
// carries. It mirrors ValueType but is used on the value itself rather than
// on the expected type for a symbol.
type Kind int

const (
	// KindText marks an AttributeValue holding text.
	KindText Kind = iota + 1
	// KindEntityReference marks an AttributeValue holding an entity
	// reference.
	KindEntityReference
	// KindBytes marks an AttributeValue holding opaque bytes.
	KindBytes
)

// Matches reports whether a value's Kind satisfies the expected ValueType
// for a symbol.
func (k Kind) Matches(vt ValueType) bool {
	return Kind(vt) == k
}
