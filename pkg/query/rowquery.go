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

package query

import "github.com/entitystore/core/pkg/model"

// RowQuery pairs a predicate Node with a projection list of Symbols. All
// projected symbols must be registered attribute types; that check is the
// validator's job (pkg/validate), not this package's.
type RowQuery struct {
	Root       Node
	Projection []model.Symbol
}
