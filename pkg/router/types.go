/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/processor"
)

type RouterParams struct {
	Host string `yaml:"host"`

	// 0 -> random free port
	Port int `yaml:"port"`

	// URL path of the service root, e.g. /odata
	ServicePath string `yaml:"servicePath"`

	// requests over the limit are replied with 503 and Retry-After. 0 -> unlimited
	RequestsLimit int32 `yaml:"requestsLimit"`

	ReadHeaderTimeoutSeconds int `yaml:"readHeaderTimeoutSeconds"`
}

type httpService struct {
	RouterParams
	name     string
	proc     processor.IProcessor
	store    istorage.IStore
	router   *mux.Router
	server   *http.Server
	listener net.Listener
	inFlight atomic.Int32
}
