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

// Package boundary pkg/boundary/entityid.go
//
// External EntityId/EntityVersion encoding: the bare int64 is wrapped in
// a one-field protobuf record `int64 database_id = 1` and the wire bytes
// are base64-URL-encoded into an opaque text identifier. The single
// varint field is hand-encoded with
// google.golang.org/protobuf/encoding/protowire rather than a generated
// message type — the bytes are identical either way, and keeping it here
// spares the core a code-generation step for one field.
package boundary

import (
	"encoding/base64"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/entitystore/core/pkg/model"
)

const databaseIDFieldNumber = protowire.Number(1)

// EncodeEntityID renders id as the external compact-record + base64url
// string form.
func EncodeEntityID(id model.EntityID) string {
	return encodeDatabaseIDRecord(int64(id))
}

// DecodeEntityID inverts EncodeEntityID. It returns
// *InvalidEntityIDError on malformed base64, malformed wire bytes, or a
// record missing its database_id field.
func DecodeEntityID(s string) (model.EntityID, error) {
	v, err := decodeDatabaseIDRecord(s)
	if err != nil {
		return 0, &InvalidEntityIDError{Value: s, Err: err}
	}

	return model.EntityID(v), nil
}

// EncodeEntityVersion renders v as the external compact-record +
// base64url string form.
func EncodeEntityVersion(v model.EntityVersion) string {
	return encodeDatabaseIDRecord(int64(v))
}

// DecodeEntityVersion inverts EncodeEntityVersion.
func DecodeEntityVersion(s string) (model.EntityVersion, error) {
	v, err := decodeDatabaseIDRecord(s)
	if err != nil {
		return 0, &InvalidEntityVersionError{Value: s, Err: err}
	}

	return model.EntityVersion(v), nil
}

// encodeDatabaseIDRecord wire-encodes a single-field message
// {database_id: int64 = 1} and base64url-encodes it with padding.
func encodeDatabaseIDRecord(databaseID int64) string {
	var buf []byte

	buf = protowire.AppendTag(buf, databaseIDFieldNumber, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(databaseID))

	return base64.URLEncoding.EncodeToString(buf)
}

func decodeDatabaseIDRecord(s string) (int64, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return 0, err
	}

	var (
		databaseID int64
		found      bool
	)

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}

		raw = raw[n:]

		if num == databaseIDFieldNumber && typ == protowire.VarintType {
			v, m := protowire.ConsumeVarint(raw)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}

			databaseID = int64(v)
			found = true
			raw = raw[m:]

			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, raw)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}

		raw = raw[m:]
	}

	if !found {
		return 0, errMissingDatabaseID
	}

	return databaseID, nil
}

var errMissingDatabaseID = missingFieldError{}

type missingFieldError struct{}

func (missingFieldError) Error() string { return "database_id field is missing" }
