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

// Package config internal/config/config.go
//
// Config is the process-wide startup configuration: the surrounding glue
// around the entity store core, not part of its contract, but still
// needed to run the process. Required-field checks come first, then a
// defaulting pass for anything left zero.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/entitystore/core/pkg/broadcast"
	"github.com/entitystore/core/pkg/logging"
)

var (
	errListenAddrRequired = errors.New("config: listen address is required")
	errBadBroadcastCap    = errors.New("config: broadcast capacity must be positive")
)

// Config is the top-level process configuration for cmd/entitystored.
type Config struct {
	// ListenAddr is the address the gRPC transport binds.
	ListenAddr string `json:"listen_addr"`

	// BroadcastCapacity is the per-subscriber buffer capacity of the
	// change broadcaster.
	BroadcastCapacity int `json:"broadcast_capacity"`

	Logging *logging.Config `json:"logging"`
}

// Default returns a Config with every field set to its default value.
func Default() *Config {
	return &Config{
		ListenAddr:        "0.0.0.0:50051",
		BroadcastCapacity: broadcast.DefaultCapacity,
		Logging:           logging.DefaultConfig(),
	}
}

// FromEnv builds a Config from environment variables, falling back to
// Default for anything unset: ENTITYSTORE_LISTEN_ADDR,
// ENTITYSTORE_BROADCAST_CAPACITY, plus the LOG_LEVEL/DEBUG/LOG_OUTPUT
// variables pkg/logging.DefaultConfig already reads.
func FromEnv() (*Config, error) {
	cfg := Default()

	if addr := os.Getenv("ENTITYSTORE_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if raw := os.Getenv("ENTITYSTORE_BROADCAST_CAPACITY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}

		cfg.BroadcastCapacity = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and normalizes defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.BroadcastCapacity < 0 {
		return errBadBroadcastCap
	}

	if c.BroadcastCapacity == 0 {
		c.BroadcastCapacity = broadcast.DefaultCapacity
	}

	if c.Logging == nil {
		c.Logging = logging.DefaultConfig()
	}

	return nil
}
