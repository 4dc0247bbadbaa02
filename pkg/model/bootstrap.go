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

// Bootstrap symbols, fixed by the external contract and never renamed.
var (
	SymbolID        = MustSymbol("@id")
	SymbolName      = MustSymbol("@symbolName")
	SymbolValueType = MustSymbol("@valueType")
)

// BootstrapEntityID returns the canonical EntityID reserved for a bootstrap
// symbol.
func BootstrapEntityID(sym Symbol) (EntityID, bool) {
	switch sym {
	case SymbolID:
		return 0, true
	case SymbolName:
		return 1, true
	case SymbolValueType:
		return 2, true
	default:
		return 0, false
	}
}

// BootstrapEntities returns the six seed entities (ids 0..=5) inserted at
// store construction, in EntityID order.
func BootstrapEntities() []Entity {
	return []Entity{
		{
			ID: 0,
			Attributes: map[Symbol]AttributeValue{
				SymbolName:      TextValue(SymbolID.String()),
				SymbolValueType: EntityRefValue(ValueTypeEntityReference.CanonicalEntityID()),
			},
		},
		{
			ID: 1,
			Attributes: map[Symbol]AttributeValue{
				SymbolName:      TextValue(SymbolName.String()),
				SymbolValueType: EntityRefValue(ValueTypeText.CanonicalEntityID()),
			},
		},
		{
			ID: 2,
			Attributes: map[Symbol]AttributeValue{
				SymbolName:      TextValue(SymbolValueType.String()),
				SymbolValueType: EntityRefValue(ValueTypeEntityReference.CanonicalEntityID()),
			},
		},
		{
			ID: 3,
			Attributes: map[Symbol]AttributeValue{
				SymbolName: TextValue(ValueTypeText.String()),
			},
		},
		{
			ID: 4,
			Attributes: map[Symbol]AttributeValue{
				SymbolName: TextValue(ValueTypeEntityReference.String()),
			},
		},
		{
			ID: 5,
			Attributes: map[Symbol]AttributeValue{
				SymbolName: TextValue(ValueTypeBytes.String()),
			},
		},
	}
}
