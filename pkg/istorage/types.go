/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package istorage

// Record is one stored entity
type Record struct {
	Set        string         `json:"set"`
	Key        int64          `json:"key"`
	Version    uint64         `json:"version"`
	Properties map[string]any `json:"properties,omitempty"`

	// navigation property -> identities of the related records
	Links map[string][]string `json:"links,omitempty"`

	// stream name -> stream
	Streams map[string]*Stream `json:"streams,omitempty"`
}

type Stream struct {
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
	Version     uint64 `json:"version"`
}
