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

// Command entitystored wires the entity store core into a running
// process: construct the store seeded with the bootstrap entities, its
// change broadcaster, the watch service, the boundary adapter over both,
// and the generic gRPC transport, then serve until an interrupt or
// SIGTERM asks for a graceful stop. Config loading, address binding, and
// logging setup all live here, kept deliberately thin.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/entitystore/core/internal/config"
	"github.com/entitystore/core/internal/rpcserver"
	"github.com/entitystore/core/pkg/boundary"
	"github.com/entitystore/core/pkg/broadcast"
	"github.com/entitystore/core/pkg/logging"
	"github.com/entitystore/core/pkg/store"
	"github.com/entitystore/core/pkg/watch"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log, err := logging.Init(cfg.Logging)
	if err != nil {
		panic(err)
	}

	bcast := broadcast.New(cfg.BroadcastCapacity, log.WithComponent("broadcast"))
	engine := store.New(bcast, log.WithComponent("store"))
	watchService := watch.New(engine)
	boundaryService := boundary.New(engine, watchService, log.WithComponent("boundary"))

	_ = boundaryService // registered against the transport once a generated service descriptor exists

	srv := rpcserver.NewServer(cfg.ListenAddr, log.WithComponent("rpcserver"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		srv.Stop(context.Background())
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("gRPC server exited")
		}
	}
}
