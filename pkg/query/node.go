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

// Package query pkg/query/node.go
package query

import "github.com/entitystore/core/pkg/model"

// Node is the sum type of the predicate tree: MatchAll, MatchNone, And,
// Or, HasAttributeTypes. Evaluation is a pure function of (node, entity).
type Node interface {
	// Matches reports whether entity satisfies this predicate.
	Matches(entity model.Entity) bool
}

// MatchAll matches every entity.
type MatchAll struct{}

// Matches always returns true.
func (MatchAll) Matches(model.Entity) bool { return true }

// MatchNone matches nothing.
type MatchNone struct{}

// Matches always returns false.
func (MatchNone) Matches(model.Entity) bool { return false }

// And matches iff every clause matches. An empty clause list is equivalent
// to MatchAll.
type And struct {
	Clauses []Node
}

// Matches evaluates clauses in declared order, short-circuiting at the
// first non-match.
func (a And) Matches(entity model.Entity) bool {
	for _, clause := range a.Clauses {
		if !clause.Matches(entity) {
			return false
		}
	}

	return true
}

// Or matches iff any clause matches. An empty clause list is equivalent to
// MatchNone.
type Or struct {
	Clauses []Node
}

// Matches evaluates clauses in declared order, short-circuiting at the
// first match.
func (o Or) Matches(entity model.Entity) bool {
	for _, clause := range o.Clauses {
		if clause.Matches(entity) {
			return true
		}
	}

	return false
}

// HasAttributeTypes matches iff every listed symbol is a key of the
// entity's attribute map.
type HasAttributeTypes struct {
	Symbols []model.Symbol
}

// Matches reports whether every symbol in Symbols is present on entity.
func (h HasAttributeTypes) Matches(entity model.Entity) bool {
	for _, sym := range h.Symbols {
		if _, ok := entity.Attributes[sym]; !ok {
			return false
		}
	}

	return true
}
