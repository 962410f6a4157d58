/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/processor"
)

var onBeforeWriteResponse func(w http.ResponseWriter) // not nil in tests only

func ReplyJSON(w http.ResponseWriter, data string, code int) {
	w.Header().Set(coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
	w.WriteHeader(code)
	writeResponse(w, []byte(data))
}

func replyResponse(w http.ResponseWriter, resp *processor.Response) {
	for name, values := range resp.Header {
		w.Header()[name] = values
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		writeResponse(w, resp.Body)
	}
}

func writeResponse(w http.ResponseWriter, data []byte) bool {
	if onBeforeWriteResponse != nil {
		onBeforeWriteResponse(w)
	}
	if _, err := w.Write(data); err != nil {
		logger.Error("failed to write response:", err)
		return false
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return true
}

func replyServiceUnavailable(w http.ResponseWriter) {
	w.Header().Set(coreutils.RetryAfter, strconv.Itoa(DefaultRetryAfterSecondsOn503))
	ReplyJSON(w, coreutils.NewHTTPErrorf(http.StatusServiceUnavailable, "too many requests, retry later").ToJSON(), http.StatusServiceUnavailable)
}

func replyErr(w http.ResponseWriter, err error) {
	var sysError coreutils.SysError
	if !errors.As(err, &sysError) {
		logger.Error(err)
		sysError = coreutils.NewHTTPError(http.StatusInternalServerError, err)
	}
	ReplyJSON(w, sysError.ToJSON(), sysError.HTTPStatus)
}
