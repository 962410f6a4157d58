/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/processor"
)

func (s *httpService) Prepare() (err error) {
	if s.listener, err = net.Listen("tcp", s.server.Addr); err == nil {
		logger.Info(s.name, "listening port:", s.ListeningPort())
	}
	return err
}

func (s *httpService) Run(ctx context.Context) {
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info(s.name, "started:", fmt.Sprintf("%#v", s.RouterParams))
		err := s.server.Serve(s.listener)
		logger.Info(s.name, "stopped, result:", err)
	}()

	<-ctx.Done()
	if err := s.server.Shutdown(context.Background()); err != nil {
		logger.Error(s.name, "shutdown failed", err)
		s.listener.Close()
		s.server.Close()
	}

	logger.Info("waiting for the", s.name, "...")
	wg.Wait()
	logger.Info(s.name, "done")
}

func (s *httpService) ListeningPort() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *httpService) Handler() http.Handler {
	return s.router
}

func (s *httpService) registerHandlers() {
	prefix := strings.TrimSuffix(s.ServicePath, "/")
	s.router.Use(s.logRequests, s.limitRequests)
	s.router.HandleFunc(prefix+"/"+batchSegment, s.handleBatch).Methods(http.MethodPost)
	s.router.HandleFunc(fmt.Sprintf("%s/{%s:.+}", prefix, URLPlaceholder_resource), s.handleOperation).
		Methods(http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete)
}

func (s *httpService) handleOperation(rw http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		replyErr(rw, coreutils.NewHTTPError(http.StatusBadRequest, err))
		return
	}
	resp := s.proc.Execute(req.Context(), s.store, &processor.Request{
		Method:      req.Method,
		Path:        mux.Vars(req)[URLPlaceholder_resource],
		Query:       req.URL.Query(),
		Header:      req.Header,
		Body:        body,
		ServiceRoot: s.serviceRoot(req),
	})
	replyResponse(rw, resp)
}

func (s *httpService) handleBatch(rw http.ResponseWriter, req *http.Request) {
	parts, err := batch.ReadRequest(req.Body, req.Header.Get(coreutils.ContentType))
	if err != nil {
		replyErr(rw, coreutils.NewHTTPError(http.StatusBadRequest, err))
		return
	}
	continueOnError := processor.HasPreference(req.Header, processor.PreferContinueOnError)
	respParts := s.executeBatch(req.Context(), parts, s.serviceRoot(req), continueOnError)
	contentType, body, err := batch.MarshalResponse(respParts)
	if err != nil {
		// notest
		replyErr(rw, err)
		return
	}
	if continueOnError {
		rw.Header().Set(processor.HeaderPreferenceApplied, processor.PreferContinueOnError)
	}
	rw.Header().Set(coreutils.ContentType, contentType)
	rw.WriteHeader(http.StatusOK)
	writeResponse(rw, body)
}

// serviceRoot returns absolute URL of the service root with trailing slash
func (s *httpService) serviceRoot(req *http.Request) string {
	scheme := schemeHTTP
	if req.TLS != nil {
		scheme = schemeHTTPS
	}
	return scheme + "://" + req.Host + strings.TrimSuffix(s.ServicePath, "/") + "/"
}

func (s *httpService) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if logger.IsVerbose() {
			logger.Verbose(req.Method, req.URL.String(), req.RemoteAddr)
		}
		next.ServeHTTP(rw, req)
	})
}

func (s *httpService) limitRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer s.inFlight.Add(-1)
		if inFlight := s.inFlight.Add(1); s.RequestsLimit > 0 && inFlight > s.RequestsLimit {
			logger.Warning("requests limit exceeded:", inFlight, ">", s.RequestsLimit)
			replyServiceUnavailable(rw)
			return
		}
		next.ServeHTTP(rw, req)
	})
}
