/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"encoding/json"

	"github.com/voedger/odata/pkg/coreutils"
)

func (jsonCodec) ContentType() string {
	return coreutils.ContentType_ApplicationJSON
}

func (jsonCodec) Marshal(obj any, props []string) ([]byte, error) {
	body, err := json.Marshal(obj)
	if err != nil || len(props) == 0 {
		return body, err
	}
	all := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}
	selected := make(map[string]json.RawMessage, len(props))
	for _, p := range props {
		if value, ok := all[p]; ok {
			selected[p] = value
		}
	}
	return json.Marshal(selected)
}

func (jsonCodec) Unmarshal(body []byte, obj any) error {
	return json.Unmarshal(body, obj)
}
