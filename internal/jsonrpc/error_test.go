/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPayload_Unmarshal(t *testing.T) {
	var payload ErrorPayload
	data := []byte(`{"code":-32700,"message":"Parse error","data":{"line":1}}`)
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, int64(-32700), payload.Code)
	assert.Equal(t, "Parse error", payload.Message)
	assert.JSONEq(t, `{"line":1}`, string(payload.Data))
}

func TestErrorPayload_MessageDefaultsToEmpty(t *testing.T) {
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal([]byte(`{"code":-32000}`), &payload))
	assert.Equal(t, int64(-32000), payload.Code)
	assert.Equal(t, "", payload.Message)
	assert.Nil(t, payload.Data)
}

func TestErrorPayload_UnknownFieldsSkipped(t *testing.T) {
	var payload ErrorPayload
	data := []byte(`{"severity":"fatal","code":1,"extra":{"nested":[1,2]},"message":"boom"}`)
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, int64(1), payload.Code)
	assert.Equal(t, "boom", payload.Message)
}

func TestErrorPayload_MissingCode(t *testing.T) {
	var payload ErrorPayload
	err := json.Unmarshal([]byte(`{"message":"no code"}`), &payload)
	require.Error(t, err)

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "code", missing.Field)
}

func TestErrorPayload_DuplicateFields(t *testing.T) {
	tests := []struct {
		field string
		wire  string
	}{
		{field: "code", wire: `{"code":1,"code":2}`},
		{field: "message", wire: `{"code":1,"message":"a","message":"b"}`},
		{field: "data", wire: `{"code":1,"data":null,"data":1}`},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			var payload ErrorPayload
			err := json.Unmarshal([]byte(test.wire), &payload)
			require.Error(t, err)

			var duplicate *DuplicateFieldError
			require.True(t, errors.As(err, &duplicate))
			assert.Equal(t, test.field, duplicate.Field)
		})
	}
}

func TestErrorPayload_Marshal(t *testing.T) {
	payload := ErrorPayload{Code: -32601, Message: "Method not found"}
	out, err := json.Marshal(&payload)
	require.NoError(t, err)
	// data is omitted when absent, message is always emitted.
	assert.Equal(t, `{"code":-32601,"message":"Method not found"}`, string(out))

	payload.Data = json.RawMessage(`"detail"`)
	out, err = json.Marshal(&payload)
	require.NoError(t, err)
	assert.Equal(t, `{"code":-32601,"message":"Method not found","data":"detail"}`, string(out))
}

func TestErrorPayload_String(t *testing.T) {
	payload := ErrorPayload{Code: -32700, Message: "Parse error"}
	assert.Equal(t, `error code -32700, message: "Parse error", contains payload: false`, payload.String())
}
