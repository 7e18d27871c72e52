/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package jsonrpc holds the JSON-RPC 2.0 envelope types used by the mempool
// feed: outbound requests, and the tag-less response/notification union
// decoded from inbound frames.
package jsonrpc

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// Version is the JSON-RPC protocol version sent with every request.
	Version = "2.0"

	// SubscribeMethod is the method name that opens a feed subscription.
	SubscribeMethod = "subscribe"

	// subscribeId is the fixed id the feed expects on its single subscribe
	// request.
	subscribeId = 1
)

// Request represents a JSON-RPC 2.0 Request.
type Request struct {
	Version string          `json:"jsonrpc"`
	Id      Id              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a request for method with a unique string id, so its
// response can be correlated later.
func NewRequest(method string) Request {
	return Request{
		Version: Version,
		Id:      NewStringId(uuid.New().String()),
		Method:  method,
	}
}

// SetParams marshals v into the request parameters.
func (r *Request) SetParams(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal params for %q", r.Method)
	}
	r.Params = b
	return nil
}

// SubscribeRequest is the request that opens the pending-transaction feed.
type SubscribeRequest struct {
	Request          // embed
	Params  []string `json:"params"`
}

// NewSubscribeRequest builds the subscription request for the given feed
// topics.
func NewSubscribeRequest(topics []string) SubscribeRequest {
	return SubscribeRequest{
		Request: Request{
			Version: Version,
			Id:      NewNumberId(subscribeId),
			Method:  SubscribeMethod,
		},
		Params: topics,
	}
}
