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

// Package model pkg/model/symbol.go
package model

import (
	"fmt"
	"strings"
	"unicode"
)

const maxSymbolLength = 60

// Symbol is a validated identifier used as an attribute-type key or entity
// alias. Symbols are interned by value: two Symbols built from equal strings
// compare equal.
type Symbol struct {
	name string
}

// InvalidSymbolNameError reports that a candidate string cannot be used as a
// Symbol.
type InvalidSymbolNameError struct {
	Value string
}

func (e *InvalidSymbolNameError) Error() string {
	return fmt.Sprintf("name %q is not a valid symbol name", e.Value)
}

// NewSymbol validates and constructs a Symbol from an arbitrary string. The
// string must be 1-60 printable characters with no backslash or double
// quote.
func NewSymbol(s string) (Symbol, error) {
	if !isValidSymbolName(s) {
		return Symbol{}, &InvalidSymbolNameError{Value: s}
	}

	return Symbol{name: s}, nil
}

// MustSymbol is a static-lifetime constructor for compile-time-known
// symbols, used by the bootstrap set. It panics on an invalid name.
func MustSymbol(s string) Symbol {
	symbol, err := NewSymbol(s)
	if err != nil {
		panic(err)
	}

	return symbol
}

func isValidSymbolName(s string) bool {
	if len(s) == 0 {
		return false
	}

	if strings.ContainsAny(s, `\"`) {
		return false
	}

	count := 0

	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}

		count++

		if count > maxSymbolLength {
			return false
		}
	}

	return count > 0
}

// String returns the underlying symbol text.
func (s Symbol) String() string {
	return s.name
}

// IsZero reports whether s is the zero Symbol (never produced by NewSymbol).
func (s Symbol) IsZero() bool {
	return s.name == ""
}
