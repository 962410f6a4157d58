/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"net/http"

	"github.com/voedger/odata/pkg/iservices"
)

type IHTTPService interface {
	iservices.IService

	// valid after Prepare
	ListeningPort() int

	// routes of the service, e.g. to be served by httptest.Server
	Handler() http.Handler
}
