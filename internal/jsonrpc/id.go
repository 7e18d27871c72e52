/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Id is a JSON-RPC 2.0 request identifier. It may be a number, a string, or
// null, and it encodes back to the same primitive kind it was decoded from.
type Id struct {
	num  uint64
	str  string
	kind idKind
}

type idKind uint8

const (
	idNone idKind = iota
	idNumber
	idString
)

// NewNumberId returns a numeric id.
func NewNumberId(n uint64) Id {
	return Id{num: n, kind: idNumber}
}

// NewStringId returns a string id.
func NewStringId(s string) Id {
	return Id{str: s, kind: idString}
}

// IsNumber reports whether the id is a number.
func (id Id) IsNumber() bool { return id.kind == idNumber }

// IsString reports whether the id is a string.
func (id Id) IsString() bool { return id.kind == idString }

// IsNone reports whether the id is null.
func (id Id) IsNone() bool { return id.kind == idNone }

// AsNumber returns the id as a number, if it is one.
func (id Id) AsNumber() (uint64, bool) {
	return id.num, id.kind == idNumber
}

// AsString returns the id as a string, if it is one.
func (id Id) AsString() (string, bool) {
	return id.str, id.kind == idString
}

func (id Id) String() string {
	switch id.kind {
	case idNumber:
		return strconv.FormatUint(id.num, 10)
	case idString:
		return id.str
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler.
func (id Id) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return strconv.AppendUint(nil, id.num, 10), nil
	case idString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. A string becomes a string id,
// an unsigned integer a numeric id, and null the null id; every other JSON
// kind is rejected.
func (id *Id) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &TypeError{Field: "id", Expected: "a string, a number, or null"}
	}

	switch {
	case bytes.Equal(data, []byte("null")):
		*id = Id{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &TypeError{Field: "id", Expected: "a string, a number, or null"}
		}
		*id = Id{str: s, kind: idString}
		return nil
	case data[0] >= '0' && data[0] <= '9':
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			// Fractional or out-of-range numbers are not valid ids.
			return &TypeError{Field: "id", Expected: "a string, a number, or null"}
		}
		*id = Id{num: n, kind: idNumber}
		return nil
	default:
		return &TypeError{Field: "id", Expected: "a string, a number, or null"}
	}
}
