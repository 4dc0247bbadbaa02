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

package validate

import (
	"fmt"

	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
	"github.com/entitystore/core/pkg/schema"
)

// Projection validates a row query's projection list against the schema
// registry: every projected symbol (other than @id, which is synthesized
// rather than registered) must name a registered attribute type.
func Projection(reg *schema.Registry, projection []model.Symbol) error {
	var report Report

	for i, sym := range projection {
		if sym == model.EntityIDSymbol {
			continue
		}

		if !reg.IsRegistered(sym) {
			report.Add(fmt.Sprintf("projection[%d]", i), fmt.Sprintf("symbol %q is not a registered attribute type", sym.String()))
		}
	}

	return report.Err()
}

// UpdateRequest validates each attribute-to-update in req against the
// schema registry:
//   - the symbol must be registered,
//   - the symbol must not be @valueType, which is immutable once written,
//   - a present value's tag must match the registered value type.
func UpdateRequest(reg *schema.Registry, req model.UpdateEntityRequest) error {
	var report Report

	for i, attr := range req.AttributesToUpdate {
		path := fmt.Sprintf("attributes_to_update[%d]", i)

		if attr.Symbol == model.SymbolValueType {
			report.Add(path+".symbol", "@valueType is immutable and cannot be targeted by an update")
			continue
		}

		valueType, ok := reg.Lookup(attr.Symbol)
		if !ok {
			report.Add(path+".symbol", fmt.Sprintf("symbol %q is not a registered attribute type", attr.Symbol.String()))
			continue
		}

		if attr.Value == nil {
			continue
		}

		if !attr.Value.Kind().Matches(valueType) {
			report.Add(path+".value", fmt.Sprintf("value does not match expected value type %s for symbol %q", valueType, attr.Symbol.String()))
		}
	}

	return report.Err()
}

// Query validates the row-query specific portion of a request: that its
// projection only names registered symbols. The predicate tree itself
// (query.Node) has no schema-dependent validity — any tree of the five
// variants is well-formed.
func Query(reg *schema.Registry, q query.RowQuery) error {
	return Projection(reg, q.Projection)
}
