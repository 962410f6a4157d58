/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/istorage/mem"
)

const serviceRoot = "http://localhost/odata/"

type testEnv struct {
	t     *testing.T
	proc  IProcessor
	store istorage.IStore
}

func newTestEnv(t *testing.T, params Params) *testEnv {
	return &testEnv{t: t, proc: Provide(params), store: mem.Provide()}
}

func (e *testEnv) do(method, resPath string, body any, headers ...string) *Response {
	req := &Request{
		Method:      method,
		Path:        resPath,
		Query:       url.Values{},
		Header:      http.Header{},
		ServiceRoot: serviceRoot,
	}
	if u, err := url.Parse(resPath); err == nil && len(u.RawQuery) > 0 {
		req.Path = u.Path
		req.Query = u.Query()
	}
	for i := 0; i < len(headers); i += 2 {
		req.Header.Add(headers[i], headers[i+1])
	}
	switch b := body.(type) {
	case nil:
	case []byte:
		req.Body = b
	default:
		bb, err := json.Marshal(b)
		require.NoError(e.t, err)
		req.Body = bb
	}
	return e.proc.Execute(context.Background(), e.store, req)
}

func (e *testEnv) entity(resp *Response) map[string]any {
	res := map[string]any{}
	require.NoError(e.t, json.Unmarshal(resp.Body, &res))
	return res
}

func (e *testEnv) values(resp *Response) []any {
	require.Equal(e.t, http.StatusOK, resp.StatusCode, string(resp.Body))
	return e.entity(resp)[collectionValue].([]any)
}

func (e *testEnv) requireError(resp *Response, expectedStatus int) {
	require.Equal(e.t, expectedStatus, resp.StatusCode, string(resp.Body))
	sysErr := coreutils.ParseSysError(resp.StatusCode, resp.Body)
	require.NotEmpty(e.t, sysErr.Message)
}

func TestBasicUsage(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, Params{})

	resp := e.do(http.MethodPost, "Customers", map[string]any{"Name": "Alfreds"})
	require.Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	require.Equal(serviceRoot+"Customers(1)", resp.Header.Get(coreutils.Location))
	require.Equal(serviceRoot+"Customers(1)", resp.Header.Get(HeaderODataEntityID))
	require.Equal(`W/"1"`, resp.Header.Get(coreutils.ETag))
	require.Equal("Customers(1)", resp.Identity)
	created := e.entity(resp)
	require.Equal("Alfreds", created["Name"])
	require.EqualValues(1, created["ID"])
	require.Equal(serviceRoot+"Customers(1)", created[AnnotationID])

	resp = e.do(http.MethodPatch, "Customers(1)", map[string]any{"City": "Berlin"})
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	require.Equal(`W/"2"`, resp.Header.Get(coreutils.ETag))

	resp = e.do(http.MethodGet, "Customers(1)", nil)
	require.Equal(http.StatusOK, resp.StatusCode)
	read := e.entity(resp)
	require.Equal("Alfreds", read["Name"])
	require.Equal("Berlin", read["City"])
	require.Equal(`W/"2"`, read[AnnotationETag])

	resp = e.do(http.MethodPut, "Customers(1)", map[string]any{"Name": "Ana"})
	require.Equal(http.StatusNoContent, resp.StatusCode)
	read = e.entity(e.do(http.MethodGet, "Customers(1)", nil))
	require.NotContains(read, "City")

	require.Len(e.values(e.do(http.MethodGet, "Customers", nil)), 1)

	resp = e.do(http.MethodDelete, "Customers(1)", nil)
	require.Equal(http.StatusNoContent, resp.StatusCode)
	e.requireError(e.do(http.MethodGet, "Customers(1)", nil), http.StatusNotFound)
	require.Empty(e.values(e.do(http.MethodGet, "Customers", nil)))
}

func TestCreate(t *testing.T) {
	e := newTestEnv(t, Params{})

	t.Run("explicit key", func(t *testing.T) {
		require := require.New(t)
		resp := e.do(http.MethodPost, "Orders", map[string]any{"ID": 10})
		require.Equal(http.StatusCreated, resp.StatusCode)
		require.Equal("Orders(10)", resp.Identity)
		e.requireError(e.do(http.MethodPost, "Orders", map[string]any{"ID": 10}), http.StatusConflict)
	})

	t.Run("invalid key", func(t *testing.T) {
		e.requireError(e.do(http.MethodPost, "Orders", map[string]any{"ID": "x"}), http.StatusBadRequest)
		e.requireError(e.do(http.MethodPost, "Orders", map[string]any{"ID": 1.5}), http.StatusBadRequest)
		e.requireError(e.do(http.MethodPost, "Orders", map[string]any{"ID": -1}), http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		e.requireError(e.do(http.MethodPost, "Orders", []byte("{")), http.StatusBadRequest)
	})

	t.Run("return=minimal", func(t *testing.T) {
		require := require.New(t)
		resp := e.do(http.MethodPost, "Orders", map[string]any{}, HeaderPrefer, PreferReturnMinimal)
		require.Equal(http.StatusNoContent, resp.StatusCode)
		require.Empty(resp.Body)
		require.Equal(PreferReturnMinimal, resp.Header.Get(HeaderPreferenceApplied))
		require.NotEmpty(resp.Header.Get(coreutils.Location))
	})

	t.Run("annotations are not stored", func(t *testing.T) {
		require := require.New(t)
		resp := e.do(http.MethodPost, "Orders", map[string]any{"@odata.type": "#NS.Order", "Total": 5})
		require.Equal(http.StatusCreated, resp.StatusCode)
		created := e.entity(resp)
		require.NotContains(created, "@odata.type")
	})
}

func TestUpdate(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, Params{})
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{"Name": "a"}).StatusCode)

	e.requireError(e.do(http.MethodPatch, "Customers(1)", map[string]any{"ID": 2}), http.StatusBadRequest)
	e.requireError(e.do(http.MethodPatch, "Customers(2)", map[string]any{}), http.StatusNotFound)

	resp := e.do(http.MethodPatch, "Customers(1)", map[string]any{"Name": "b"}, HeaderPrefer, PreferReturnContent)
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal(PreferReturnContent, resp.Header.Get(HeaderPreferenceApplied))
	require.Equal("b", e.entity(resp)["Name"])
}

func TestPreconditions(t *testing.T) {
	e := newTestEnv(t, Params{})
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)

	t.Run("If-Match mismatch", func(t *testing.T) {
		e.requireError(e.do(http.MethodPatch, "Customers(1)", map[string]any{}, HeaderIfMatch, `W/"7"`), http.StatusPreconditionFailed)
	})
	t.Run("If-Match matches", func(t *testing.T) {
		resp := e.do(http.MethodPatch, "Customers(1)", map[string]any{}, HeaderIfMatch, `W/"1"`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
	t.Run("If-Match strong form matches weak tag", func(t *testing.T) {
		resp := e.do(http.MethodPatch, "Customers(1)", map[string]any{}, HeaderIfMatch, `"2"`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
	t.Run("If-Match list and any", func(t *testing.T) {
		resp := e.do(http.MethodPatch, "Customers(1)", map[string]any{}, HeaderIfMatch, `W/"1", W/"3"`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp = e.do(http.MethodPatch, "Customers(1)", map[string]any{}, HeaderIfMatch, "*")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
	t.Run("If-None-Match any on existing", func(t *testing.T) {
		e.requireError(e.do(http.MethodDelete, "Customers(1)", nil, HeaderIfNoneMatch, "*"), http.StatusPreconditionFailed)
	})
	t.Run("not modified", func(t *testing.T) {
		require := require.New(t)
		etag := e.do(http.MethodGet, "Customers(1)", nil).Header.Get(coreutils.ETag)
		resp := e.do(http.MethodGet, "Customers(1)", nil, HeaderIfNoneMatch, etag)
		require.Equal(http.StatusNotModified, resp.StatusCode)
		require.Empty(resp.Body)
	})
	t.Run("token required", func(t *testing.T) {
		require := require.New(t)
		e := newTestEnv(t, Params{RequireConcurrencyToken: true})
		require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)
		e.requireError(e.do(http.MethodPatch, "Customers(1)", map[string]any{}), http.StatusPreconditionRequired)
		e.requireError(e.do(http.MethodDelete, "Customers(1)", nil), http.StatusPreconditionRequired)
		require.Equal(http.StatusNoContent, e.do(http.MethodDelete, "Customers(1)", nil, HeaderIfMatch, `W/"1"`).StatusCode)
	})
}

func TestReferences(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, Params{NavigationTargets: map[string]string{"Customers/BestFriend": "Customers"}})
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Orders", map[string]any{}).StatusCode)
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Orders", map[string]any{}).StatusCode)

	// add by absolute URL and by identity
	resp := e.do(http.MethodPost, "Customers(1)/Orders/$ref", map[string]any{AnnotationID: serviceRoot + "Orders(1)"})
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	resp = e.do(http.MethodPost, "Customers(1)/Orders/$ref", map[string]any{AnnotationID: "Orders(2)"})
	require.Equal(http.StatusNoContent, resp.StatusCode)
	// duplicates are ignored
	require.Equal(http.StatusNoContent, e.do(http.MethodPost, "Customers(1)/Orders/$ref", map[string]any{AnnotationID: "Orders(2)"}).StatusCode)

	refs := e.values(e.do(http.MethodGet, "Customers(1)/Orders/$ref", nil))
	require.Len(refs, 2)
	require.Equal(serviceRoot+"Orders(1)", refs[0].(map[string]any)[AnnotationID])
	require.Len(e.values(e.do(http.MethodGet, "Customers(1)/Orders", nil)), 2)

	// links do not change the version
	require.Equal(`W/"1"`, e.do(http.MethodGet, "Customers(1)", nil).Header.Get(coreutils.ETag))

	e.requireError(e.do(http.MethodPost, "Customers(1)/Orders/$ref", map[string]any{AnnotationID: "Orders(9)"}), http.StatusNotFound)
	e.requireError(e.do(http.MethodPost, "Customers(1)/Orders/$ref", map[string]any{}), http.StatusBadRequest)

	resp = e.do(http.MethodDelete, "Customers(1)/Orders/$ref?$id="+url.QueryEscape(serviceRoot+"Orders(1)"), nil)
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	require.Len(e.values(e.do(http.MethodGet, "Customers(1)/Orders/$ref", nil)), 1)
	e.requireError(e.do(http.MethodDelete, "Customers(1)/Orders/$ref?$id=Orders(1)", nil), http.StatusNotFound)

	// single-valued
	require.Equal(http.StatusNoContent, e.do(http.MethodPut, "Customers(1)/BestFriend/$ref", map[string]any{AnnotationID: "Customers(2)"}).StatusCode)
	require.Equal(http.StatusNoContent, e.do(http.MethodPut, "Customers(1)/BestFriend/$ref", map[string]any{AnnotationID: "Customers(1)"}).StatusCode)
	refs = e.values(e.do(http.MethodGet, "Customers(1)/BestFriend/$ref", nil))
	require.Len(refs, 1)
	require.Equal(serviceRoot+"Customers(1)", refs[0].(map[string]any)[AnnotationID])
	require.Equal(http.StatusNoContent, e.do(http.MethodDelete, "Customers(1)/BestFriend/$ref", nil).StatusCode)
	require.Empty(e.values(e.do(http.MethodGet, "Customers(1)/BestFriend/$ref", nil)))
}

func TestCreateRelatedAndBind(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, Params{NavigationTargets: map[string]string{"Customers/Orders": "SalesOrders"}})
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)

	resp := e.do(http.MethodPost, "Customers(1)/Orders", map[string]any{"Total": 3})
	require.Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	require.Equal("SalesOrders(1)", resp.Identity)
	related := e.values(e.do(http.MethodGet, "Customers(1)/Orders", nil))
	require.Len(related, 1)

	resp = e.do(http.MethodPost, "SalesOrders", map[string]any{"Customer" + AnnotationBind: "Customers(1)"})
	require.Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	refs := e.values(e.do(http.MethodGet, resp.Identity+"/Customer/$ref", nil))
	require.Len(refs, 1)

	resp = e.do(http.MethodPost, "SalesOrders", map[string]any{"Customer" + AnnotationBind: "Customers(5)"})
	e.requireError(resp, http.StatusNotFound)

	resp = e.do(http.MethodPatch, "Customers(1)", map[string]any{"Orders" + AnnotationBind: []any{"SalesOrders(2)"}})
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	require.Len(e.values(e.do(http.MethodGet, "Customers(1)/Orders", nil)), 2)

	e.requireError(e.do(http.MethodPost, "Customers(7)/Orders", map[string]any{}), http.StatusNotFound)
}

func TestStreams(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, Params{RequireConcurrencyToken: true})
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Customers", map[string]any{}).StatusCode)

	e.requireError(e.do(http.MethodGet, "Customers(1)/Photo/$value", nil), http.StatusNotFound)

	resp := e.do(http.MethodPut, "Customers(1)/Photo/$value", []byte{1, 2, 3}, coreutils.ContentType, "image/png")
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	require.Equal(`W/"1"`, resp.Header.Get(coreutils.ETag))

	resp = e.do(http.MethodGet, "Customers(1)/Photo/$value", nil)
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal("image/png", resp.Header.Get(coreutils.ContentType))
	require.Equal([]byte{1, 2, 3}, resp.Body)

	// existing stream requires the token
	e.requireError(e.do(http.MethodPut, "Customers(1)/Photo/$value", []byte{4}), http.StatusPreconditionRequired)
	resp = e.do(http.MethodPut, "Customers(1)/Photo/$value", []byte{4}, HeaderIfMatch, `W/"1"`)
	require.Equal(http.StatusNoContent, resp.StatusCode)
	require.Equal(`W/"2"`, resp.Header.Get(coreutils.ETag))
	require.Equal(coreutils.ContentType_OctetStream, e.do(http.MethodGet, "Customers(1)/Photo/$value", nil).Header.Get(coreutils.ContentType))

	// entity version is not changed
	require.Equal(`W/"1"`, e.do(http.MethodGet, "Customers(1)", nil).Header.Get(coreutils.ETag))
}

func TestActions(t *testing.T) {
	require := require.New(t)
	errRejected := errors.New("rejected")
	e := newTestEnv(t, Params{Actions: map[string]ActionFunc{
		"Discount": func(_ context.Context, tx istorage.ITx, bound *istorage.Record, params map[string]any) (any, error) {
			if bound == nil {
				return map[string]any{"total": params["percent"]}, nil
			}
			bound.Properties["Discount"] = params["percent"]
			return nil, tx.Put(bound)
		},
		"Reject": func(context.Context, istorage.ITx, *istorage.Record, map[string]any) (any, error) {
			return nil, errRejected
		},
	}})
	require.Equal(http.StatusCreated, e.do(http.MethodPost, "Orders", map[string]any{}).StatusCode)

	resp := e.do(http.MethodPost, "Discount", map[string]any{"percent": 10})
	require.Equal(http.StatusOK, resp.StatusCode, string(resp.Body))
	require.EqualValues(10, e.entity(resp)["total"])

	resp = e.do(http.MethodPost, "Orders(1)/Discount", map[string]any{"percent": 5})
	require.Equal(http.StatusNoContent, resp.StatusCode, string(resp.Body))
	require.EqualValues(5, e.entity(e.do(http.MethodGet, "Orders(1)", nil))["Discount"])

	e.requireError(e.do(http.MethodPost, "Reject", nil), http.StatusBadRequest)
	e.requireError(e.do(http.MethodGet, "Discount", nil), http.StatusMethodNotAllowed)
}

func TestParseRequest(t *testing.T) {
	proc := Provide(Params{})
	cases := []struct {
		method   string
		path     string
		kind     Kind
		set      string
		key      int64
		property string
	}{
		{http.MethodGet, "Customers", KindList, "Customers", 0, ""},
		{http.MethodPost, "/Customers/", KindCreate, "Customers", 0, ""},
		{http.MethodGet, "Customers(1)", KindRead, "Customers", 1, ""},
		{http.MethodPatch, "Customers(1)", KindUpdate, "Customers", 1, ""},
		{http.MethodPut, "Customers(1)", KindReplace, "Customers", 1, ""},
		{http.MethodDelete, "Customers(1)", KindDelete, "Customers", 1, ""},
		{http.MethodGet, "Customers(1)/Orders", KindListRelated, "Customers", 1, "Orders"},
		{http.MethodPost, "Customers(1)/Orders", KindCreateRelated, "Customers", 1, "Orders"},
		{http.MethodGet, "Customers(1)/Orders/$ref", KindListRefs, "Customers", 1, "Orders"},
		{http.MethodPost, "Customers(1)/Orders/$ref", KindAddRef, "Customers", 1, "Orders"},
		{http.MethodPut, "Customers(1)/Friend/$ref", KindSetRef, "Customers", 1, "Friend"},
		{http.MethodDelete, "Customers(1)/Orders/$ref", KindDeleteRef, "Customers", 1, "Orders"},
		{http.MethodGet, "Customers(1)/Photo/$value", KindReadStream, "Customers", 1, "Photo"},
		{http.MethodPut, "Customers(1)/Photo/$value", KindWriteStream, "Customers", 1, "Photo"},
		{http.MethodGet, "$1/Orders", KindListRelated, "Customers", 7, "Orders"},
	}
	for _, c := range cases {
		t.Run(c.method+" "+c.path, func(t *testing.T) {
			require := require.New(t)
			op, err := proc.ParseRequest(&Request{Method: c.method, Path: c.path, ContentIDs: map[string]string{"1": "Customers(7)"}})
			require.NoError(err)
			require.Equal(c.kind, op.Kind, op.Kind.String())
			require.Equal(c.set, op.Set)
			require.Equal(c.key, op.Key)
			require.Equal(c.property, op.Property)
		})
	}

	errCases := []struct {
		method   string
		path     string
		expected int
	}{
		{http.MethodGet, "", http.StatusNotFound},
		{http.MethodGet, "Customers(x)", http.StatusBadRequest},
		{http.MethodGet, "Customers(1)/Orders/$count", http.StatusNotFound},
		{http.MethodGet, "Customers/Orders", http.StatusNotFound},
		{http.MethodPatch, "Customers", http.StatusMethodNotAllowed},
		{http.MethodPost, "Customers(1)", http.StatusMethodNotAllowed},
		{http.MethodGet, "$2", http.StatusBadRequest},
		{http.MethodGet, "$3", coreutils.StatusFailedDependency},
	}
	for _, c := range errCases {
		t.Run("error "+c.method+" "+c.path, func(t *testing.T) {
			require := require.New(t)
			op, err := proc.ParseRequest(&Request{Method: c.method, Path: c.path, ContentIDs: map[string]string{"3": ""}})
			require.Nil(op)
			var sysErr coreutils.SysError
			require.ErrorAs(err, &sysErr)
			require.Equal(c.expected, sysErr.HTTPStatus)
		})
	}
}

func TestApplyRollsBackWithStore(t *testing.T) {
	require := require.New(t)
	proc := Provide(Params{})
	store := mem.Provide()

	errAbort := errors.New("abort")
	err := store.Update(context.Background(), func(tx istorage.ITx) error {
		op, err := proc.ParseRequest(&Request{Method: http.MethodPost, Path: "Customers", Header: http.Header{}})
		require.NoError(err)
		resp, err := proc.Apply(context.Background(), tx, op)
		require.NoError(err)
		require.Equal(http.StatusCreated, resp.StatusCode)
		return errAbort
	})
	require.ErrorIs(err, errAbort)

	resp := proc.Execute(context.Background(), store, &Request{Method: http.MethodGet, Path: "Customers(1)", Header: http.Header{}})
	require.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestHelpers(t *testing.T) {
	require := require.New(t)
	require.Equal(`W/"3"`, ETag(3))
	require.True(HasPreference(http.Header{HeaderPrefer: {"odata.continue-on-error, return=minimal"}}, PreferReturnMinimal))
	require.False(HasPreference(http.Header{}, PreferReturnMinimal))
	require.Equal("Kind(100)", Kind(100).String())

	resp := ErrorResponse(errors.New("boom"))
	require.Equal(http.StatusInternalServerError, resp.StatusCode)
	require.Equal("boom", coreutils.ParseSysError(resp.StatusCode, resp.Body).Message)
}
