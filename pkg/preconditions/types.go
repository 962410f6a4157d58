/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package preconditions

type Verb uint8

// Condition is the conditional header to attach to a request. Zero value means no precondition
type Condition struct {
	Header string
	Token  string
}

func (c Condition) IsNone() bool {
	return len(c.Header) == 0
}
