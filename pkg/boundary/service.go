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

// Package boundary pkg/boundary/service.go
//
// Service implements the RPC operation surface (Ping, CreateAttributeType,
// GetEntity, QueryEntityRows, UpdateEntity, WatchEntities, WatchEntityRows)
// against the core store and watch service, translating external
// request/response shapes at the edges and mapping core error kinds to
// stable gRPC status codes: not-found, invalid-argument (validation errors
// carry their field paths in the status message), internal otherwise. The wire framing
// itself (the generated pb.* service registration) lives in a transport
// layer this package does not provide.
package boundary

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/entitystore/core/pkg/logging"
	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
	"github.com/entitystore/core/pkg/store"
	"github.com/entitystore/core/pkg/validate"
	"github.com/entitystore/core/pkg/watch"
)

// StoreEngine is the subset of *store.Store the boundary service depends
// on.
type StoreEngine interface {
	CreateAttributeType(req model.CreateAttributeTypeRequest) (model.Entity, error)
	GetEntity(locator model.EntityLocator) (model.Entity, error)
	QueryEntityRows(rq query.RowQuery) ([]model.Row, model.EntityVersion, error)
	UpdateEntity(req model.UpdateEntityRequest) (model.Entity, error)
}

// Service is the boundary adapter: it owns no store state of its own and
// is safe for concurrent use exactly to the extent the underlying store
// and watch service are.
type Service struct {
	store StoreEngine
	watch *watch.Service
	log   logging.Logger
}

// New constructs a Service over store and its watch service.
func New(store StoreEngine, watchService *watch.Service, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewTestLogger()
	}

	return &Service{store: store, watch: watchService, log: log}
}

// Ping answers the liveness check; it touches no store state.
func (s *Service) Ping(context.Context) error {
	return nil
}

// CreateAttributeType implements the CreateAttributeType operation.
func (s *Service) CreateAttributeType(_ context.Context, req CreateAttributeTypeRequest) (ExternalEntity, error) {
	coreReq, err := ToCreateAttributeTypeRequest(req)
	if err != nil {
		return ExternalEntity{}, status.Error(codes.InvalidArgument, err.Error())
	}

	entity, err := s.store.CreateAttributeType(coreReq)
	if err != nil {
		return ExternalEntity{}, toStatus(err)
	}

	return FromEntity(entity), nil
}

// GetEntity implements the GetEntity operation.
func (s *Service) GetEntity(_ context.Context, locator ExternalLocator) (ExternalEntity, error) {
	coreLocator, err := ToEntityLocator(locator)
	if err != nil {
		return ExternalEntity{}, status.Error(codes.InvalidArgument, err.Error())
	}

	entity, err := s.store.GetEntity(coreLocator)
	if err != nil {
		return ExternalEntity{}, toStatus(err)
	}

	return FromEntity(entity), nil
}

// QueryEntityRows implements the QueryEntityRows operation, returning the
// projected rows and the watermark version as its external string form.
func (s *Service) QueryEntityRows(_ context.Context, req QueryEntityRowsRequest) ([]ExternalRow, string, error) {
	rowQuery, err := ToQueryEntityRowsRequest(req)
	if err != nil {
		return nil, "", status.Error(codes.InvalidArgument, err.Error())
	}

	rows, version, err := s.store.QueryEntityRows(rowQuery)
	if err != nil {
		return nil, "", toStatus(err)
	}

	out := make([]ExternalRow, len(rows))
	for i, row := range rows {
		out[i] = FromRow(row)
	}

	return out, EncodeEntityVersion(version), nil
}

// UpdateEntity implements the UpdateEntity operation.
func (s *Service) UpdateEntity(_ context.Context, req UpdateEntityRequest) (ExternalEntity, error) {
	coreReq, err := ToUpdateEntityRequest(req)
	if err != nil {
		return ExternalEntity{}, status.Error(codes.InvalidArgument, err.Error())
	}

	entity, err := s.store.UpdateEntity(coreReq)
	if err != nil {
		return ExternalEntity{}, toStatus(err)
	}

	return FromEntity(entity), nil
}

// WatchEntities implements the WatchEntities operation: it runs the
// snapshot+tail contract and sends ExternalEvent items to out until ctx is
// cancelled.
func (s *Service) WatchEntities(ctx context.Context, req WatchRequest, out chan<- ExternalEvent) error {
	items := make(chan watch.StreamItem)
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.watch.Watch(ctx, ToWatchRequest(req), items)
		close(items)
	}()

	for item := range items {
		ext, ok := externalEventFromItem(item)
		if !ok {
			continue
		}

		select {
		case out <- ext:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := <-errCh; err != nil {
		return toStatus(err)
	}

	return nil
}

// WatchEntityRows implements the WatchEntityRows operation.
func (s *Service) WatchEntityRows(ctx context.Context, req WatchEntityRowsRequest, out chan<- ExternalRowEvent) error {
	projection, err := ToProjection(req.Projection)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	items := make(chan watch.RowStreamItem)
	errCh := make(chan error, 1)
	coreReq := watch.Request{Query: queryNodeFromExternal(req.Node), SendInitialEvents: req.SendInitialEvents}

	go func() {
		errCh <- s.watch.WatchRows(ctx, coreReq, projection, items)
		close(items)
	}()

	for item := range items {
		ext, ok := externalRowEventFromItem(item)
		if !ok {
			continue
		}

		select {
		case out <- ext:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := <-errCh; err != nil {
		return toStatus(err)
	}

	return nil
}

func externalEventFromItem(item watch.StreamItem) (ExternalEvent, bool) {
	if item.Bookmark != nil {
		v := EncodeEntityVersion(item.Bookmark.Version)
		return ExternalEvent{BookmarkVersion: &v}, true
	}

	if item.Event == nil {
		return ExternalEvent{}, false
	}

	return FromEvent(EncodeEntityVersion(item.Event.Version), item.Event.Before, item.Event.After), true
}

func externalRowEventFromItem(item watch.RowStreamItem) (ExternalRowEvent, bool) {
	if item.Bookmark != nil {
		v := EncodeEntityVersion(item.Bookmark.Version)
		return ExternalRowEvent{BookmarkVersion: &v}, true
	}

	if item.Event == nil {
		return ExternalRowEvent{}, false
	}

	return FromRowEvent(*item.Event), true
}

// toStatus maps a core error kind to a stable external gRPC status:
// not-found for *store.NotFoundError, invalid-argument (with per-field
// detail baked into the message) for *validate.Error /
// *store.NotIdempotentError / *store.AlreadyExistsError and for invalid
// symbol names, value types, and undecodable external inputs, internal
// otherwise.
func toStatus(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	switch e := err.(type) {
	case *store.NotFoundError:
		return status.Error(codes.NotFound, e.Error())
	case *validate.Error:
		return status.Error(codes.InvalidArgument, e.Error())
	case *store.NotIdempotentError:
		return status.Error(codes.InvalidArgument, e.Error())
	case *store.AlreadyExistsError:
		return status.Error(codes.InvalidArgument, e.Error())
	case *store.InternalError:
		return status.Error(codes.Internal, e.Error())
	case *model.InvalidSymbolNameError, *model.InvalidValueTypeError:
		return status.Error(codes.InvalidArgument, err.Error())
	case *InvalidEntityIDError, *InvalidEntityVersionError, *InvalidValueTypeNameError, *MissingLocatorError, *MissingAttributeValueTagError:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
