/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Message is one decoded inbound frame: either a *Response or a
// *Notification. The wire carries no explicit discriminant; DecodeMessage
// resolves the kind from the combination of fields that are present.
type Message interface {
	message()
}

// Response represents a JSON-RPC 2.0 response, recognized by the presence of
// an `id` field. Exactly one of Result and Error is set.
type Response struct {
	// Id mirrors the id of the request this response answers.
	Id Id
	// Result is the raw success payload.
	Result json.RawMessage
	// Error is the failure payload, if the request failed.
	Error *ErrorPayload
}

func (*Response) message() {}

// IsSuccess reports whether the response carries a success payload.
func (r *Response) IsSuccess() bool { return r.Error == nil }

// IsError reports whether the response carries an error payload.
func (r *Response) IsError() bool { return r.Error != nil }

// Notification is an asynchronous subscription push, recognized by the
// absence of an `id` field. Result is the opaque domain payload and is
// forwarded undecoded.
type Notification struct {
	Subscription uint64
	Result       json.RawMessage
}

func (*Notification) message() {}

// UnmarshalJSON decodes the `params` object of a subscription notification.
// Both `subscription` and `result` are required, repeats fail the decode,
// and unrecognized fields are skipped.
func (n *Notification) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectObject(dec, "params"); err != nil {
		return err
	}

	var (
		subscription *uint64
		result       json.RawMessage
		seenResult   bool
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "subscription":
			if subscription != nil {
				return &DuplicateFieldError{Field: "subscription"}
			}
			var v uint64
			if err := dec.Decode(&v); err != nil {
				return errors.Wrap(err, "failed to decode subscription id")
			}
			subscription = &v
		case "result":
			if seenResult {
				return &DuplicateFieldError{Field: "result"}
			}
			if err := dec.Decode(&result); err != nil {
				return errors.Wrap(err, "failed to decode notification result")
			}
			seenResult = true
		default:
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	}

	if subscription == nil {
		return &MissingFieldError{Field: "subscription"}
	}
	if !seenResult {
		return &MissingFieldError{Field: "result"}
	}
	n.Subscription = *subscription
	n.Result = result
	return nil
}

// DecodeMessage classifies one inbound JSON object as a response or a
// notification.
//
// The object's keys are scanned once into four slots (`id`, `result`,
// `params`, `error`); a repeated slot fails the decode and unrecognized keys
// are skipped. An object with an `id` is a response: `error` provides the
// payload when present and takes precedence over `result` if the server
// sends both (undocumented upstream behavior, preserved as-is); with neither
// the decode fails. An object without an `id` must be a notification: an
// `error` there is malformed, and `params` must hold the subscription
// envelope.
func DecodeMessage(data []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectObject(dec, "message"); err != nil {
		return nil, err
	}

	var (
		idRaw, resultRaw, paramsRaw, errorRaw     json.RawMessage
		seenId, seenResult, seenParams, seenError bool
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		var slot *json.RawMessage
		var seen *bool
		switch key {
		case "id":
			slot, seen = &idRaw, &seenId
		case "result":
			slot, seen = &resultRaw, &seenResult
		case "params":
			slot, seen = &paramsRaw, &seenParams
		case "error":
			slot, seen = &errorRaw, &seenError
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
			continue
		}
		if *seen {
			return nil, &DuplicateFieldError{Field: key}
		}
		if err := dec.Decode(slot); err != nil {
			return nil, errors.Wrapf(err, "failed to read field %q", key)
		}
		*seen = true
	}

	if seenId {
		var id Id
		if err := json.Unmarshal(idRaw, &id); err != nil {
			return nil, err
		}
		if seenError {
			payload := new(ErrorPayload)
			if err := json.Unmarshal(errorRaw, payload); err != nil {
				return nil, err
			}
			return &Response{Id: id, Error: payload}, nil
		}
		if seenResult {
			return &Response{Id: id, Result: resultRaw}, nil
		}
		return nil, &MissingFieldError{Field: "result or error"}
	}

	if seenError {
		return nil, &UnexpectedFieldError{Field: "error"}
	}
	if !seenParams {
		return nil, &MissingFieldError{Field: "params"}
	}

	notification := new(Notification)
	if err := json.Unmarshal(paramsRaw, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// expectObject consumes the opening brace of a JSON object.
func expectObject(dec *json.Decoder, what string) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", what)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &TypeError{Field: what, Expected: "a JSON object"}
	}
	return nil
}

// readKey consumes one object key.
func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", errors.Wrap(err, "failed to read object key")
	}
	key, ok := tok.(string)
	if !ok {
		return "", errors.Errorf("unexpected token %v in object", tok)
	}
	return key, nil
}

// skipValue consumes and discards one value.
func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return errors.Wrap(dec.Decode(&raw), "failed to skip field")
}
