/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorPayload is a JSON-RPC 2.0 error object. It indicates that the server
// received and handled the request but failed while processing it.
type ErrorPayload struct {
	// Code is the error code.
	Code int64 `json:"code"`
	// Message is the error message, if any.
	Message string `json:"message"`
	// Data is an optional payload with additional detail.
	Data json.RawMessage `json:"data,omitempty"`
}

func (e *ErrorPayload) String() string {
	return fmt.Sprintf("error code %d, message: %q, contains payload: %v",
		e.Code, e.Message, len(e.Data) > 0)
}

// UnmarshalJSON implements json.Unmarshaler by accumulating the object's
// fields in a single pass. A repeated field fails the decode, unrecognized
// fields are skipped, `code` is required, and a missing `message` defaults
// to the empty string.
func (e *ErrorPayload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectObject(dec, "error"); err != nil {
		return err
	}

	var (
		code     *int64
		message  *string
		errData  json.RawMessage
		seenData bool
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "code":
			if code != nil {
				return &DuplicateFieldError{Field: "code"}
			}
			var v int64
			if err := dec.Decode(&v); err != nil {
				return errors.Wrap(err, "failed to decode error code")
			}
			code = &v
		case "message":
			if message != nil {
				return &DuplicateFieldError{Field: "message"}
			}
			var v string
			if err := dec.Decode(&v); err != nil {
				return errors.Wrap(err, "failed to decode error message")
			}
			message = &v
		case "data":
			if seenData {
				return &DuplicateFieldError{Field: "data"}
			}
			if err := dec.Decode(&errData); err != nil {
				return errors.Wrap(err, "failed to decode error data")
			}
			seenData = true
		default:
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	}

	if code == nil {
		return &MissingFieldError{Field: "code"}
	}
	e.Code = *code
	e.Message = ""
	if message != nil {
		e.Message = *message
	}
	e.Data = errData
	return nil
}
