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

// EntityID is a dense, monotonically assigned non-negative integer. Entity
// IDs are stable within a process lifetime; position in the store's
// entity slice equals the numeric id.
type EntityID int64

// EntityVersion is drawn from a single per-store sequence, strictly
// monotonically increasing and totally ordered across the whole store,
// not per-entity, so a subscriber can resume past a given version.
type EntityVersion int64

// AttributeValue is a tagged variant with exactly three cases: text,
// an entity reference, or opaque bytes. Equality is structural.
type AttributeValue struct {
	kind     Kind
	text     string
	entityID EntityID
	bytes    []byte
}

// TextValue constructs a text AttributeValue.
func TextValue(s string) AttributeValue {
	return AttributeValue{kind: KindText, text: s}
}

// EntityRefValue constructs an entity-reference AttributeValue.
func EntityRefValue(id EntityID) AttributeValue {
	return AttributeValue{kind: KindEntityReference, entityID: id}
}

// BytesValue constructs a bytes AttributeValue. The slice is copied so the
// caller may reuse its backing array.
func BytesValue(b []byte) AttributeValue {
	cp := make([]byte, len(b))
	copy(cp, b)

	return AttributeValue{kind: KindBytes, bytes: cp}
}

// Kind reports which of the three variants this value carries.
func (v AttributeValue) Kind() Kind {
	return v.kind
}

// Text returns the text payload and whether v is a text value.
func (v AttributeValue) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}

	return v.text, true
}

// EntityRef returns the referenced EntityID and whether v is an entity
// reference.
func (v AttributeValue) EntityRef() (EntityID, bool) {
	if v.kind != KindEntityReference {
		return 0, false
	}

	return v.entityID, true
}

// Bytes returns the byte payload and whether v is a bytes value. The
// returned slice is a copy.
func (v AttributeValue) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}

	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)

	return cp, true
}

// Equal reports structural equality between two AttributeValues.
func (v AttributeValue) Equal(other AttributeValue) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindText:
		return v.text == other.text
	case KindEntityReference:
		return v.entityID == other.entityID
	case KindBytes:
		if len(v.bytes) != len(other.bytes) {
			return false
		}

		for i := range v.bytes {
			if v.bytes[i] != other.bytes[i] {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func (v AttributeValue) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", v.text)
	case KindEntityReference:
		return fmt.Sprintf("EntityRef(%d)", v.entityID)
	case KindBytes:
		return fmt.Sprintf("Bytes(%d bytes)", len(v.bytes))
	default:
		return "<invalid attribute value>"
	}
}

// Entity is a triple (EntityID, EntityVersion, attributes). Values are
// passed by owned copy or shared reference; mutation of an existing entity
// happens only inside the store engine's write lock.
type Entity struct {
	ID         EntityID
	Version    EntityVersion
	Attributes map[Symbol]AttributeValue
}

// Clone returns a deep copy of e, safe to hand to a caller outside the
// store's lock.
func (e Entity) Clone() Entity {
	attrs := make(map[Symbol]AttributeValue, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}

	return Entity{ID: e.ID, Version: e.Version, Attributes: attrs}
}

// Equal reports whether two entities have the same id, version, and
// attribute set.
func (e Entity) Equal(other Entity) bool {
	if e.ID != other.ID || e.Version != other.Version {
		return false
	}

	if len(e.Attributes) != len(other.Attributes) {
		return false
	}

	for k, v := range e.Attributes {
		ov, ok := other.Attributes[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}

	return true
}

// Row is the ordered projection of an entity through a projection list of
// Symbols: one optional AttributeValue per requested symbol, same length and
// order as the request.
type Row struct {
	Values []*AttributeValue
}

// EntityIDSymbol is the bootstrap symbol synthesized during row projection
// rather than stored physically on any entity.
var EntityIDSymbol = MustSymbol("@id")

// ToRow projects e through projection, producing one optional value per
// symbol in order. The @id position always yields
// EntityRefValue(e.ID); every other symbol yields the corresponding stored
// attribute or nil if absent.
func (e Entity) ToRow(projection []Symbol) Row {
	values := make([]*AttributeValue, len(projection))

	for i, sym := range projection {
		if sym == EntityIDSymbol {
			v := EntityRefValue(e.ID)
			values[i] = &v

			continue
		}

		if v, ok := e.Attributes[sym]; ok {
			vCopy := v
			values[i] = &vCopy
		}
	}

	return Row{Values: values}
}
