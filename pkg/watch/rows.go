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

package watch

import "github.com/entitystore/core/pkg/model"

// RowEvent is the row-projected counterpart of model.Event: before/after
// project through the same projection list used by QueryEntityRows. An
// absent side projects to a nil Row.
type RowEvent struct {
	Version model.EntityVersion
	Before  *model.Row
	After   *model.Row
}

// RowStreamItem is a single item of a row-projected watch stream: exactly
// one of Event or Bookmark is set.
type RowStreamItem struct {
	Event    *RowEvent
	Bookmark *Bookmark
}

// ProjectItem converts a StreamItem into a RowStreamItem by projecting any
// carried event's before/after entities through projection.
func ProjectItem(item StreamItem, projection []model.Symbol) RowStreamItem {
	if item.Bookmark != nil {
		return RowStreamItem{Bookmark: item.Bookmark}
	}

	rowEvent := &RowEvent{Version: item.Event.Version}

	if item.Event.Before != nil {
		row := item.Event.Before.ToRow(projection)
		rowEvent.Before = &row
	}

	if item.Event.After != nil {
		row := item.Event.After.ToRow(projection)
		rowEvent.After = &row
	}

	return RowStreamItem{Event: rowEvent}
}
