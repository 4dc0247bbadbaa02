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

// Package boundary pkg/boundary/types.go
//
// The external request/response shapes for the RPC surface, and the
// translation functions between them and the core's pkg/model and
// pkg/query types. The wire schema itself is owned by a generated-code
// transport layer this module does not check in; these structs are the
// wire-agnostic midpoint both sides translate through.
package boundary

import (
	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
)

// ExternalAttributeValue is the wire-agnostic external form of
// model.AttributeValue: exactly one of the three fields is set.
type ExternalAttributeValue struct {
	StringValue   *string
	EntityIDValue *string
	BytesValue    []byte
}

// ExternalEntity is the external form of model.Entity: EntityID and
// EntityVersion are rendered as their compact-record + base64url strings.
type ExternalEntity struct {
	EntityID      string
	EntityVersion string
	Attributes    map[string]ExternalAttributeValue
}

// ExternalLocator is the external form of model.EntityLocator: exactly
// one field is set.
type ExternalLocator struct {
	EntityID *string
	Symbol   *string
}

// ExternalAttributeToUpdate is the external form of
// model.AttributeToUpdate.
type ExternalAttributeToUpdate struct {
	Symbol string
	Value  *ExternalAttributeValue
}

// CreateAttributeTypeRequest is the external form of
// model.CreateAttributeTypeRequest. ValueType is one of "text",
// "entityRef", "bytes".
type CreateAttributeTypeRequest struct {
	Symbol    string
	ValueType string
}

// UpdateEntityRequest is the external form of model.UpdateEntityRequest.
type UpdateEntityRequest struct {
	Locator            ExternalLocator
	AttributesToUpdate []ExternalAttributeToUpdate
}

// ExternalQueryNode is the external form of a query.Node: a sum type
// mirroring the five predicate variants, expressed as a Go struct with
// one populated field instead of a wire oneof (the oneof encoding belongs
// to the generated transport layer).
type ExternalQueryNode struct {
	MatchAll          bool
	MatchNone         bool
	And               []ExternalQueryNode
	Or                []ExternalQueryNode
	HasAttributeTypes []string
}

// QueryEntityRowsRequest is the external form of a query.RowQuery.
type QueryEntityRowsRequest struct {
	Node       ExternalQueryNode
	Projection []string
}

// ExternalRow is the external form of a model.Row: one optional value per
// projected symbol, same order as the request.
type ExternalRow struct {
	Values []*ExternalAttributeValue
}

// WatchRequest is the external form of watch.Request.
type WatchRequest struct {
	Node              ExternalQueryNode
	SendInitialEvents bool
}

// WatchEntityRowsRequest additionally carries a projection list.
type WatchEntityRowsRequest struct {
	Node              ExternalQueryNode
	Projection        []string
	SendInitialEvents bool
}

// ExternalEvent is the external form of model.Event / watch.Bookmark: for
// a Bookmark item, only BookmarkVersion is set; otherwise Before/After
// (either of which may be nil) and Version are set.
type ExternalEvent struct {
	Version         string
	Before          *ExternalEntity
	After           *ExternalEntity
	BookmarkVersion *string
}

// ExternalRowEvent is the row-projected counterpart of ExternalEvent.
type ExternalRowEvent struct {
	Version         string
	Before          *ExternalRow
	After           *ExternalRow
	BookmarkVersion *string
}

func valueTypeFromExternal(s string) (model.ValueType, error) {
	switch s {
	case "text":
		return model.ValueTypeText, nil
	case "entityRef":
		return model.ValueTypeEntityReference, nil
	case "bytes":
		return model.ValueTypeBytes, nil
	default:
		return 0, &InvalidValueTypeNameError{Value: s}
	}
}

func valueTypeToExternal(vt model.ValueType) string {
	switch vt {
	case model.ValueTypeText:
		return "text"
	case model.ValueTypeEntityReference:
		return "entityRef"
	case model.ValueTypeBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

func queryNodeFromExternal(n ExternalQueryNode) query.Node {
	switch {
	case n.MatchNone:
		return query.MatchNone{}
	case len(n.And) > 0:
		clauses := make([]query.Node, len(n.And))
		for i, c := range n.And {
			clauses[i] = queryNodeFromExternal(c)
		}

		return query.And{Clauses: clauses}
	case len(n.Or) > 0:
		clauses := make([]query.Node, len(n.Or))
		for i, c := range n.Or {
			clauses[i] = queryNodeFromExternal(c)
		}

		return query.Or{Clauses: clauses}
	case len(n.HasAttributeTypes) > 0:
		symbols := make([]model.Symbol, 0, len(n.HasAttributeTypes))

		for _, s := range n.HasAttributeTypes {
			if sym, err := model.NewSymbol(s); err == nil {
				symbols = append(symbols, sym)
			}
		}

		return query.HasAttributeTypes{Symbols: symbols}
	default:
		return query.MatchAll{}
	}
}
