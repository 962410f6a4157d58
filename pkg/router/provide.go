/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/processor"
)

func Provide(rp RouterParams, proc processor.IProcessor, store istorage.IStore) IHTTPService {
	rp.ServicePath = "/" + strings.Trim(rp.ServicePath, "/")
	if rp.ReadHeaderTimeoutSeconds == 0 {
		rp.ReadHeaderTimeoutSeconds = int(DefaultReadHeaderTimeout / time.Second)
	}
	s := &httpService{
		RouterParams: rp,
		name:         "OData HTTP server",
		proc:         proc,
		store:        store,
		router:       mux.NewRouter(),
	}
	s.registerHandlers()
	s.server = &http.Server{
		Addr:              coreutils.ServerAddress(rp.Host, rp.Port),
		Handler:           s.router,
		ReadHeaderTimeout: time.Duration(rp.ReadHeaderTimeoutSeconds) * time.Second,
	}
	return s
}
