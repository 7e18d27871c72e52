/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import "fmt"

// Decode failures carry typed errors so callers can tell a malformed frame
// apart from a transport problem with errors.As.

// DuplicateFieldError reports a field that occurred more than once within a
// single JSON object.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field %q", e.Field)
}

// MissingFieldError reports a required field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// UnexpectedFieldError reports a field that is not legal for the message
// kind being decoded, e.g. an `error` on an object without a request id.
type UnexpectedFieldError struct {
	Field string
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("unexpected field %q", e.Field)
}

// TypeError reports a JSON value of the wrong kind.
type TypeError struct {
	Field    string
	Expected string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid %s: expected %s", e.Field, e.Expected)
}
