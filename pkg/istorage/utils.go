/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package istorage

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity returns canonical identity of the record: Set(key)
func Identity(set string, key int64) string {
	return set + "(" + strconv.FormatInt(key, 10) + ")"
}

func (r *Record) Identity() string {
	return Identity(r.Set, r.Key)
}

// ParseIdentity parses Set(key)
func ParseIdentity(identity string) (set string, key int64, err error) {
	open := strings.IndexByte(identity, '(')
	if open <= 0 || !strings.HasSuffix(identity, ")") {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedIdentity, identity)
	}
	set = identity[:open]
	key, err = strconv.ParseInt(identity[open+1:len(identity)-1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %w", ErrMalformedIdentity, identity, err)
	}
	return set, key, nil
}

// Clone returns a copy of the record. Property values are copied one level deep
func (r *Record) Clone() *Record {
	res := &Record{
		Set:     r.Set,
		Key:     r.Key,
		Version: r.Version,
	}
	if r.Properties != nil {
		res.Properties = make(map[string]any, len(r.Properties))
		for k, v := range r.Properties {
			res.Properties[k] = v
		}
	}
	if r.Links != nil {
		res.Links = make(map[string][]string, len(r.Links))
		for nav, ids := range r.Links {
			res.Links[nav] = append([]string(nil), ids...)
		}
	}
	if r.Streams != nil {
		res.Streams = make(map[string]*Stream, len(r.Streams))
		for name, s := range r.Streams {
			copied := *s
			copied.Content = append([]byte(nil), s.Content...)
			res.Streams[name] = &copied
		}
	}
	return res
}
