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

package rpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"

	"github.com/entitystore/core/pkg/logging"
)

type loggerKey struct{}

// LoggerFromContext extracts the per-request logger injected by
// LoggingInterceptor, falling back to a discard logger outside a request.
func LoggerFromContext(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logging.Logger); ok {
		return l
	}

	return logging.NewTestLogger()
}

// LoggingInterceptor logs every unary RPC call with its method and
// duration, and injects the server's logger into the request context.
func LoggingInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		newCtx := context.WithValue(ctx, loggerKey{}, log)

		resp, err := handler(newCtx, req)

		log.Debug().
			Str("method", info.FullMethod).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("gRPC call")

		return resp, err
	}
}

var errPanicRecovered = errors.New("internal error")

// RecoveryInterceptor converts a panic inside a handler into an internal
// error rather than taking down the process, logging the panic value.
func RecoveryInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("method", info.FullMethod).Interface("panic", r).Msg("recovered from panic")

				err = errPanicRecovered
			}
		}()

		return handler(ctx, req)
	}
}

// defaultUnaryDeadline is the request-level deadline imposed on unary
// operations; watch streams have no intrinsic deadline and are registered
// as streaming RPCs, which this interceptor (a UnaryServerInterceptor)
// never touches.
const defaultUnaryDeadline = 30 * time.Second

// DeadlineInterceptor applies defaultUnaryDeadline to every unary call
// that does not already carry a deadline from its caller; an existing
// deadline is kept as it is, whether earlier or later than the default.
func DeadlineInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, hasDeadline := ctx.Deadline(); hasDeadline {
			return handler(ctx, req)
		}

		deadlineCtx, cancel := context.WithTimeout(ctx, defaultUnaryDeadline)
		defer cancel()

		return handler(deadlineCtx, req)
	}
}
