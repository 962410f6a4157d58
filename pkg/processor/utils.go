/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/coreutils"
)

// ETag renders the entity version as a weak entity tag
func ETag(version uint64) string {
	return `W/"` + strconv.FormatUint(version, 10) + `"`
}

// HasPreference reports whether the Prefer header lists the preference
func HasPreference(header http.Header, preference string) bool {
	for _, value := range header.Values(HeaderPrefer) {
		for _, p := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(p), preference) {
				return true
			}
		}
	}
	return false
}

// ErrorResponse converts an error to an OData error response. Errors which are not SysError are 500
func ErrorResponse(err error) *Response {
	sysErr := coreutils.WrapSysErrorToExact(err, http.StatusInternalServerError)
	if sysErr.HTTPStatus == http.StatusInternalServerError {
		logger.Error(err)
	}
	return &Response{
		StatusCode: sysErr.HTTPStatus,
		Header:     http.Header{coreutils.ContentType: {coreutils.ContentType_ApplicationJSON}},
		Body:       []byte(sysErr.ToJSON()),
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ReadOnly reports whether the operation does not modify the storage
func (op *Operation) ReadOnly() bool {
	switch op.Kind {
	case KindList, KindRead, KindListRelated, KindListRefs, KindReadStream:
		return true
	}
	return false
}

func (r *Response) setJSON(statusCode int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r.StatusCode = statusCode
	r.Header.Set(coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
	r.Body = body
	return nil
}

// toKey accepts positive integral JSON numbers only
func toKey(value any) (int64, bool) {
	f, ok := value.(float64)
	if !ok || f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		if i, isInt := value.(int64); isInt && i > 0 {
			return i, true
		}
		return 0, false
	}
	return int64(f), true
}

// tokenMatches uses weak comparison: W/"1" matches "1"
func tokenMatches(header string, etag string) bool {
	if len(header) == 0 {
		return false
	}
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == anyETag || strings.TrimPrefix(token, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}

func errNotFound(what string) error {
	return coreutils.NewHTTPErrorf(http.StatusNotFound, what, " not found")
}
