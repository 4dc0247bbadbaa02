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

// Package rpcserver internal/rpcserver/server.go
//
// Server is the generic gRPC transport plumbing: health, reflection,
// keepalive, logging/recovery/deadline interceptors, and an otelgrpc
// stats handler. It knows nothing about the entity store — a caller
// registers whatever service descriptors it has (the boundary adapter's
// generated service, once a transport layer supplies one) via
// RegisterService. This is only the listener, interceptor chain, and
// lifecycle around them.
package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/entitystore/core/pkg/logging"
)

const shutdownTimer = 5 * time.Second

var errServerStopped = errors.New("server stopped")

// Option configures a Server at construction.
type Option func(*Server)

// Server wraps a gRPC server with the health/reflection/lifecycle
// machinery every unary and streaming operation needs, independent of
// what those operations actually do.
type Server struct {
	srv              *grpc.Server
	healthCheck      *health.Server
	addr             string
	log              logging.Logger
	mu               sync.RWMutex
	services         map[string]struct{}
	serverOpts       []grpc.ServerOption
	healthRegistered bool
}

// NewServer constructs a Server listening at addr once Start is called.
func NewServer(addr string, log logging.Logger, opts ...Option) *Server {
	if log == nil {
		log = logging.NewTestLogger()
	}

	s := &Server{
		addr:     addr,
		log:      log,
		services: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	defaultOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(log),
			RecoveryInterceptor(log),
			DeadlineInterceptor(),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     10 * time.Minute,
			MaxConnectionAge:      24 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  120 * time.Second,
			Timeout:               20 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             120 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s.serverOpts = append(defaultOpts, s.serverOpts...)
	s.srv = grpc.NewServer(s.serverOpts...)
	s.healthCheck = health.NewServer()

	reflection.Register(s.srv)

	return s
}

// WithServerOptions appends additional raw grpc.ServerOptions.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, opts...)
	}
}

// GRPCServer returns the underlying *grpc.Server for service registration.
func (s *Server) GRPCServer() *grpc.Server {
	return s.srv
}

// RegisterService registers desc/impl with the server and marks it
// serving in the health check.
func (s *Server) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.services[desc.ServiceName] = struct{}{}
	s.srv.RegisterService(desc, impl)
	s.healthCheck.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Start registers the health service (if not already registered) and
// blocks serving addr until Stop is called or an unrecoverable listen
// error occurs.
func (s *Server) Start() error {
	s.mu.Lock()
	if !s.healthRegistered {
		healthpb.RegisterHealthServer(s.srv, s.healthCheck)
		s.healthRegistered = true
	}
	s.mu.Unlock()

	lc := &net.ListenConfig{}

	lis, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info().Str("addr", s.addr).Msg("gRPC server listening")

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, errServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop gracefully stops the server, falling back to a hard stop if
// shutdownTimer elapses first.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for service := range s.services {
		s.healthCheck.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, shutdownTimer)
	defer cancel()

	stopped := make(chan struct{})

	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.log.Info().Msg("gRPC server stopped gracefully")
	case <-deadlineCtx.Done():
		s.log.Warn().Msg("gRPC server shutdown timed out, forcing stop")
		s.srv.Stop()
	}
}
