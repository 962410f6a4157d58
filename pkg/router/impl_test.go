/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage/mem"
	"github.com/voedger/odata/pkg/processor"
)

type testRouter struct {
	t       *testing.T
	service IHTTPService
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func setUp(t *testing.T) *testRouter {
	require := require.New(t)
	service := Provide(RouterParams{Host: "127.0.0.1", ServicePath: DefaultServicePath}, processor.Provide(processor.Params{}), mem.Provide())
	require.NoError(service.Prepare())
	ctx, cancel := context.WithCancel(context.Background())
	tr := &testRouter{t: t, service: service, cancel: cancel}
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		service.Run(ctx)
	}()
	return tr
}

func (tr *testRouter) tearDown() {
	tr.cancel()
	tr.wg.Wait()
}

func (tr *testRouter) url(resPath string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s/%s", tr.service.ListeningPort(), DefaultServicePath, resPath)
}

func (tr *testRouter) do(method, resPath string, body string, headers ...string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, tr.url(resPath), strings.NewReader(body))
	require.NoError(tr.t, err)
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(tr.t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(tr.t, err)
	return resp, respBody
}

func (tr *testRouter) batch(parts []batch.RequestPart, headers ...string) (*http.Response, []batch.ResponsePart) {
	require := require.New(tr.t)
	contentType, body, err := batch.MarshalRequest(parts)
	require.NoError(err)
	resp, respBody := tr.do(http.MethodPost, batchSegment, string(body), append(headers, coreutils.ContentType, contentType)...)
	require.Equal(http.StatusOK, resp.StatusCode, string(respBody))
	respParts, err := batch.ReadResponse(bytes.NewReader(respBody), resp.Header.Get(coreutils.ContentType))
	require.NoError(err)
	return resp, respParts
}

func changeset(reqs ...*batch.Request) batch.RequestPart {
	return batch.RequestPart{IsChangeset: true, Requests: reqs}
}

func operation(req *batch.Request) batch.RequestPart {
	return batch.RequestPart{Requests: []*batch.Request{req}}
}

func jsonRequest(contentID, method, url, body string) *batch.Request {
	req := &batch.Request{ContentID: contentID, Method: method, URL: url, Header: http.Header{}}
	if len(body) > 0 {
		req.Header.Set(coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
		req.Body = []byte(body)
	}
	return req
}

func values(t *testing.T, body []byte) []any {
	res := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &res))
	return res["value"].([]any)
}

func TestBasicUsage(t *testing.T) {
	require := require.New(t)
	tr := setUp(t)
	defer tr.tearDown()

	resp, body := tr.do(http.MethodPost, "Customers", `{"Name":"Alfreds"}`, coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
	require.Equal(http.StatusCreated, resp.StatusCode, string(body))
	require.Equal(tr.url("Customers(1)"), resp.Header.Get(coreutils.Location))
	require.Equal(`W/"1"`, resp.Header.Get(coreutils.ETag))

	resp, body = tr.do(http.MethodGet, "Customers(1)", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Contains(string(body), "Alfreds")

	resp, _ = tr.do(http.MethodPatch, "Customers(1)", `{"Name":"Ana"}`, processor.HeaderIfMatch, `W/"5"`)
	require.Equal(http.StatusPreconditionFailed, resp.StatusCode)
	require.Equal(coreutils.ContentType_ApplicationJSON, resp.Header.Get(coreutils.ContentType))

	resp, body = tr.do(http.MethodGet, "Customers", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Len(values(t, body), 1)

	t.Run("404 outside of the service", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/unknown", tr.service.ListeningPort()))
		require.NoError(err)
		resp.Body.Close()
		require.Equal(http.StatusNotFound, resp.StatusCode)
	})

	t.Run("405 on unsupported method", func(t *testing.T) {
		resp, _ := tr.do(http.MethodOptions, "Customers", "")
		require.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestBatch_Changeset(t *testing.T) {
	require := require.New(t)
	tr := setUp(t)
	defer tr.tearDown()

	_, parts := tr.batch([]batch.RequestPart{changeset(
		jsonRequest("1", http.MethodPost, "Customers", `{"Name":"a"}`),
		jsonRequest("2", http.MethodPost, tr.url("Orders"), `{"Total":1}`),
		jsonRequest("3", http.MethodPost, "$1/Orders/$ref", `{"@odata.id":"$2"}`),
		jsonRequest("4", http.MethodPost, DefaultServicePath+"/Orders", `{"Customer@odata.bind":"$1"}`),
	)})
	require.Len(parts, 1)
	require.True(parts[0].IsChangeset)
	require.Len(parts[0].Responses, 4)
	for i, expected := range []int{http.StatusCreated, http.StatusCreated, http.StatusNoContent, http.StatusCreated} {
		require.Equal(expected, parts[0].Responses[i].StatusCode, string(parts[0].Responses[i].Body))
		require.Equal(fmt.Sprint(i+1), parts[0].Responses[i].ContentID)
	}
	require.Equal(tr.url("Customers(1)"), parts[0].Responses[0].Header.Get(coreutils.Location))

	resp, body := tr.do(http.MethodGet, "Customers(1)/Orders", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Len(values(t, body), 1)
	resp, body = tr.do(http.MethodGet, "Orders(2)/Customer/$ref", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Len(values(t, body), 1)
}

func TestBatch_ChangesetRollback(t *testing.T) {
	tr := setUp(t)
	defer tr.tearDown()

	failing := func() []batch.RequestPart {
		return []batch.RequestPart{
			changeset(
				jsonRequest("1", http.MethodPost, "Customers", `{}`),
				jsonRequest("2", http.MethodPatch, "Customers(99)", `{}`),
			),
			operation(jsonRequest("", http.MethodGet, "Customers", "")),
		}
	}

	t.Run("stop on first failure", func(t *testing.T) {
		require := require.New(t)
		resp, parts := tr.batch(failing())
		require.Empty(resp.Header.Get(processor.HeaderPreferenceApplied))
		require.Len(parts, 1)
		require.False(parts[0].IsChangeset)
		require.Len(parts[0].Responses, 1)
		require.Equal(http.StatusNotFound, parts[0].Responses[0].StatusCode)
		require.Equal("2", parts[0].Responses[0].ContentID)
		sysErr := coreutils.ParseSysError(http.StatusNotFound, parts[0].Responses[0].Body)
		require.Contains(sysErr.Message, "Customers(99)")
	})

	t.Run("continue on error", func(t *testing.T) {
		require := require.New(t)
		resp, parts := tr.batch(failing(), processor.HeaderPrefer, processor.PreferContinueOnError)
		require.Equal(processor.PreferContinueOnError, resp.Header.Get(processor.HeaderPreferenceApplied))
		require.Len(parts, 2)
		require.Equal(http.StatusOK, parts[1].Responses[0].StatusCode)
		require.Empty(values(t, parts[1].Responses[0].Body), "changeset is rolled back")
	})
}

func TestBatch_FailedDependency(t *testing.T) {
	require := require.New(t)
	tr := setUp(t)
	defer tr.tearDown()

	resp, _ := tr.do(http.MethodPost, "Customers", `{"ID":1}`)
	require.Equal(http.StatusCreated, resp.StatusCode)

	_, parts := tr.batch([]batch.RequestPart{
		changeset(jsonRequest("1", http.MethodPost, "Customers", `{"ID":1}`)),
		changeset(jsonRequest("2", http.MethodPost, "Orders", `{}`)),
		changeset(jsonRequest("3", http.MethodPost, "$1/Orders/$ref", `{"@odata.id":"$2"}`)),
		changeset(jsonRequest("4", http.MethodPost, "Customers(1)/Orders/$ref", `{"@odata.id":"$2"}`)),
	}, processor.HeaderPrefer, processor.PreferContinueOnError)
	require.Len(parts, 4)
	require.Equal(http.StatusConflict, parts[0].Responses[0].StatusCode)
	require.Equal(http.StatusCreated, parts[1].Responses[0].StatusCode)
	require.Equal(coreutils.StatusFailedDependency, parts[2].Responses[0].StatusCode)
	require.Equal(http.StatusNoContent, parts[3].Responses[0].StatusCode)
}

func TestBatch_Malformed(t *testing.T) {
	require := require.New(t)
	tr := setUp(t)
	defer tr.tearDown()

	resp, body := tr.do(http.MethodPost, batchSegment, "{}", coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
	require.Equal(http.StatusBadRequest, resp.StatusCode)
	require.Equal("400", coreutils.ParseSysError(resp.StatusCode, body).ErrorCode())

	_, parts := tr.batch([]batch.RequestPart{operation(jsonRequest("", http.MethodGet, "/elsewhere/Customers", ""))})
	require.Equal(http.StatusNotFound, parts[0].Responses[0].StatusCode)
}

func TestRequestsLimit(t *testing.T) {
	require := require.New(t)
	s := Provide(RouterParams{RequestsLimit: 1}, processor.Provide(processor.Params{}), mem.Provide()).(*httpService)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	h := s.limitRequests(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		close(started)
		<-release
	}))
	go func() {
		defer close(done)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/odata/Customers", nil))
	}()
	<-started

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/odata/Customers", nil))
	require.Equal(http.StatusServiceUnavailable, rec.Code)
	require.Equal("1", rec.Header().Get(coreutils.RetryAfter))

	close(release)
	<-done
	require.Zero(s.inFlight.Load())
}

func TestServiceRootPath(t *testing.T) {
	require := require.New(t)
	s := Provide(RouterParams{}, processor.Provide(processor.Params{}), mem.Provide())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/Customers", coreutils.ContentType_ApplicationJSON, strings.NewReader("{}"))
	require.NoError(err)
	resp.Body.Close()
	require.Equal(http.StatusCreated, resp.StatusCode)
	require.Equal(srv.URL+"/Customers(1)", resp.Header.Get(coreutils.Location))
}
