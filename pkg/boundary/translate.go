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

import (
	"fmt"

	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
	"github.com/entitystore/core/pkg/watch"
)

// toLocator translates an ExternalLocator into a model.EntityLocator.
func toLocator(path string, ext ExternalLocator) (model.EntityLocator, error) {
	switch {
	case ext.EntityID != nil:
		id, err := DecodeEntityID(*ext.EntityID)
		if err != nil {
			return model.EntityLocator{}, fmt.Errorf("%s.entity_id: %w", path, err)
		}

		return model.LocatorByID(id), nil
	case ext.Symbol != nil:
		sym, err := model.NewSymbol(*ext.Symbol)
		if err != nil {
			return model.EntityLocator{}, fmt.Errorf("%s.symbol: %w", path, err)
		}

		return model.LocatorBySymbol(sym), nil
	default:
		return model.EntityLocator{}, &MissingLocatorError{}
	}
}

// toAttributeValue translates an ExternalAttributeValue into a
// model.AttributeValue.
func toAttributeValue(path string, ext ExternalAttributeValue) (model.AttributeValue, error) {
	switch {
	case ext.StringValue != nil:
		return model.TextValue(*ext.StringValue), nil
	case ext.EntityIDValue != nil:
		id, err := DecodeEntityID(*ext.EntityIDValue)
		if err != nil {
			return model.AttributeValue{}, fmt.Errorf("%s: %w", path, err)
		}

		return model.EntityRefValue(id), nil
	case ext.BytesValue != nil:
		return model.BytesValue(ext.BytesValue), nil
	default:
		return model.AttributeValue{}, &MissingAttributeValueTagError{Path: path}
	}
}

func fromAttributeValue(v model.AttributeValue) ExternalAttributeValue {
	switch v.Kind() {
	case model.KindText:
		s, _ := v.Text()
		return ExternalAttributeValue{StringValue: &s}
	case model.KindEntityReference:
		id, _ := v.EntityRef()
		encoded := EncodeEntityID(id)

		return ExternalAttributeValue{EntityIDValue: &encoded}
	case model.KindBytes:
		b, _ := v.Bytes()
		return ExternalAttributeValue{BytesValue: b}
	default:
		return ExternalAttributeValue{}
	}
}

// FromEntity translates a model.Entity into its external wire-agnostic
// form, rendering EntityID and EntityVersion through the compact-record +
// base64url encoding.
func FromEntity(e model.Entity) ExternalEntity {
	attrs := make(map[string]ExternalAttributeValue, len(e.Attributes))

	for sym, val := range e.Attributes {
		attrs[sym.String()] = fromAttributeValue(val)
	}

	return ExternalEntity{
		EntityID:      EncodeEntityID(e.ID),
		EntityVersion: EncodeEntityVersion(e.Version),
		Attributes:    attrs,
	}
}

// ToCreateAttributeTypeRequest translates the external request into its
// core form.
func ToCreateAttributeTypeRequest(req CreateAttributeTypeRequest) (model.CreateAttributeTypeRequest, error) {
	symbol, err := model.NewSymbol(req.Symbol)
	if err != nil {
		return model.CreateAttributeTypeRequest{}, fmt.Errorf("symbol: %w", err)
	}

	valueType, err := valueTypeFromExternal(req.ValueType)
	if err != nil {
		return model.CreateAttributeTypeRequest{}, fmt.Errorf("value_type: %w", err)
	}

	return model.CreateAttributeTypeRequest{Symbol: symbol, ValueType: valueType}, nil
}

// ToEntityLocator translates an ExternalLocator into a model.EntityLocator.
func ToEntityLocator(ext ExternalLocator) (model.EntityLocator, error) {
	return toLocator("entity_locator", ext)
}

// ToUpdateEntityRequest translates the external request into its core
// form.
func ToUpdateEntityRequest(req UpdateEntityRequest) (model.UpdateEntityRequest, error) {
	locator, err := toLocator("locator", req.Locator)
	if err != nil {
		return model.UpdateEntityRequest{}, err
	}

	attrs := make([]model.AttributeToUpdate, len(req.AttributesToUpdate))

	for i, ext := range req.AttributesToUpdate {
		path := fmt.Sprintf("attributes_to_update[%d]", i)

		sym, err := model.NewSymbol(ext.Symbol)
		if err != nil {
			return model.UpdateEntityRequest{}, fmt.Errorf("%s.symbol: %w", path, err)
		}

		var value *model.AttributeValue

		if ext.Value != nil {
			v, err := toAttributeValue(path+".value", *ext.Value)
			if err != nil {
				return model.UpdateEntityRequest{}, err
			}

			value = &v
		}

		attrs[i] = model.AttributeToUpdate{Symbol: sym, Value: value}
	}

	return model.UpdateEntityRequest{Locator: locator, AttributesToUpdate: attrs}, nil
}

// ToQueryEntityRowsRequest translates the external request into a
// query.RowQuery.
func ToQueryEntityRowsRequest(req QueryEntityRowsRequest) (query.RowQuery, error) {
	symbols := make([]model.Symbol, len(req.Projection))

	for i, name := range req.Projection {
		sym, err := model.NewSymbol(name)
		if err != nil {
			return query.RowQuery{}, fmt.Errorf("projection[%d]: %w", i, err)
		}

		symbols[i] = sym
	}

	return query.RowQuery{
		Root:       queryNodeFromExternal(req.Node),
		Projection: symbols,
	}, nil
}

// ToWatchRequest translates the external request into a watch.Request.
func ToWatchRequest(req WatchRequest) watch.Request {
	return watch.Request{
		Query:             queryNodeFromExternal(req.Node),
		SendInitialEvents: req.SendInitialEvents,
	}
}

// ToProjection translates a list of external symbol names into model
// symbols, used by WatchEntityRows.
func ToProjection(names []string) ([]model.Symbol, error) {
	symbols := make([]model.Symbol, len(names))

	for i, name := range names {
		sym, err := model.NewSymbol(name)
		if err != nil {
			return nil, fmt.Errorf("projection[%d]: %w", i, err)
		}

		symbols[i] = sym
	}

	return symbols, nil
}

// FromRow translates a model.Row into its external form.
func FromRow(row model.Row) ExternalRow {
	values := make([]*ExternalAttributeValue, len(row.Values))

	for i, v := range row.Values {
		if v == nil {
			continue
		}

		ext := fromAttributeValue(*v)
		values[i] = &ext
	}

	return ExternalRow{Values: values}
}

// FromEvent translates a model.Event into its external form.
func FromEvent(version string, before, after *model.Entity) ExternalEvent {
	ev := ExternalEvent{Version: version}

	if before != nil {
		e := FromEntity(*before)
		ev.Before = &e
	}

	if after != nil {
		e := FromEntity(*after)
		ev.After = &e
	}

	return ev
}

// FromRowEvent translates a watch.RowEvent into its external form.
func FromRowEvent(ev watch.RowEvent) ExternalRowEvent {
	out := ExternalRowEvent{Version: EncodeEntityVersion(ev.Version)}

	if ev.Before != nil {
		row := FromRow(*ev.Before)
		out.Before = &row
	}

	if ev.After != nil {
		row := FromRow(*ev.After)
		out.After = &row
	}

	return out
}
