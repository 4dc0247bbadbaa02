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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/entitystore/core/pkg/logging"
)

func TestRecoveryInterceptor_ConvertsPanicToError(t *testing.T) {
	interceptor := RecoveryInterceptor(logging.NewTestLogger())

	handler := func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test/Method"}, handler)
	require.Error(t, err)
	assert.Equal(t, errPanicRecovered, err)
}

func TestLoggingInterceptor_InjectsLoggerIntoContext(t *testing.T) {
	log := logging.NewTestLogger()
	interceptor := LoggingInterceptor(log)

	var sawLogger logging.Logger

	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		sawLogger = LoggerFromContext(ctx)
		return nil, nil
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test/Method"}, handler)
	require.NoError(t, err)
	assert.Equal(t, log, sawLogger)
}

func TestDeadlineInterceptor_AppliesDefaultWhenAbsent(t *testing.T) {
	interceptor := DeadlineInterceptor()

	var hadDeadline bool

	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		_, hadDeadline = ctx.Deadline()
		return nil, nil
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test/Method"}, handler)
	require.NoError(t, err)
	assert.True(t, hadDeadline)
}

func TestDeadlineInterceptor_PreservesExistingDeadline(t *testing.T) {
	interceptor := DeadlineInterceptor()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	want, _ := ctx.Deadline()

	handler := func(innerCtx context.Context, _ interface{}) (interface{}, error) {
		d, ok := innerCtx.Deadline()
		require.True(t, ok)
		assert.Equal(t, want, d)

		return nil, nil
	}

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/test/Method"}, handler)
	require.NoError(t, err)
}
