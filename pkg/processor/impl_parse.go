/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
)

func (p *implIProcessor) ParseRequest(req *Request) (*Operation, error) {
	resPath := strings.TrimPrefix(req.Path, "/")
	if strings.HasPrefix(resPath, ContentIDPrefix) {
		resolved, err := resolveContentID(resPath, req.ContentIDs)
		if err != nil {
			return nil, err
		}
		resPath = resolved
	}
	segments := strings.Split(strings.TrimSuffix(resPath, "/"), "/")
	set, key, hasKey, err := parseSegment(segments[0])
	if err != nil {
		return nil, err
	}
	op := &Operation{Set: set, Key: key, Request: req}

	var kinds map[string]Kind
	switch {
	case len(segments) == 1 && !hasKey:
		if _, ok := p.params.Actions[set]; ok {
			op.Set, op.Property = "", set
			kinds = map[string]Kind{http.MethodPost: KindInvokeAction}
		} else {
			kinds = map[string]Kind{
				http.MethodGet:  KindList,
				http.MethodPost: KindCreate,
			}
		}
	case len(segments) == 1:
		kinds = map[string]Kind{
			http.MethodGet:    KindRead,
			http.MethodPatch:  KindUpdate,
			http.MethodPut:    KindReplace,
			http.MethodDelete: KindDelete,
		}
	case len(segments) == 2 && hasKey:
		op.Property = segments[1]
		if _, ok := p.params.Actions[op.Property]; ok {
			kinds = map[string]Kind{http.MethodPost: KindInvokeAction}
		} else {
			kinds = map[string]Kind{
				http.MethodGet:  KindListRelated,
				http.MethodPost: KindCreateRelated,
			}
		}
	case len(segments) == 3 && hasKey && segments[2] == SegmentRef:
		op.Property = segments[1]
		kinds = map[string]Kind{
			http.MethodGet:    KindListRefs,
			http.MethodPost:   KindAddRef,
			http.MethodPut:    KindSetRef,
			http.MethodDelete: KindDeleteRef,
		}
	case len(segments) == 3 && hasKey && segments[2] == SegmentValue:
		op.Property = segments[1]
		kinds = map[string]Kind{
			http.MethodGet: KindReadStream,
			http.MethodPut: KindWriteStream,
		}
	default:
		return nil, coreutils.NewHTTPErrorf(http.StatusNotFound, "resource not found: ", req.Path)
	}

	kind, ok := kinds[req.Method]
	if !ok {
		return nil, coreutils.NewHTTPErrorf(http.StatusMethodNotAllowed, req.Method, " is not allowed for ", req.Path)
	}
	op.Kind = kind
	return op, nil
}

// Name or Name(key)
func parseSegment(segment string) (name string, key int64, hasKey bool, err error) {
	if strings.HasSuffix(segment, ")") {
		name, key, err = istorage.ParseIdentity(segment)
		if err != nil {
			return "", 0, false, coreutils.NewHTTPError(http.StatusBadRequest, err)
		}
		return name, key, true, nil
	}
	if len(segment) == 0 || strings.ContainsAny(segment, "()$") {
		return "", 0, false, coreutils.NewHTTPErrorf(http.StatusNotFound, "resource not found: ", segment)
	}
	return segment, 0, false, nil
}

// $1/Orders -> Customers(7)/Orders
func resolveContentID(ref string, contentIDs map[string]string) (string, error) {
	id, rest, hasRest := strings.Cut(strings.TrimPrefix(ref, ContentIDPrefix), "/")
	identity, ok := contentIDs[id]
	if !ok {
		return "", coreutils.NewHTTPErrorf(http.StatusBadRequest, "unknown Content-ID reference ", ContentIDPrefix, id)
	}
	if len(identity) == 0 {
		return "", coreutils.NewHTTPErrorf(coreutils.StatusFailedDependency, "referenced request ", ContentIDPrefix, id, " failed")
	}
	if hasRest {
		return identity + "/" + rest, nil
	}
	return identity, nil
}

// resolveReference accepts $<Content-ID>, an identity, or an absolute URL of an entity
func resolveReference(ref string, req *Request) (set string, key int64, err error) {
	switch {
	case strings.HasPrefix(ref, ContentIDPrefix):
		if ref, err = resolveContentID(ref, req.ContentIDs); err != nil {
			return "", 0, err
		}
	case len(req.ServiceRoot) > 0 && strings.HasPrefix(ref, req.ServiceRoot):
		ref = ref[len(req.ServiceRoot):]
	default:
		if u, err := url.Parse(ref); err == nil && u.IsAbs() {
			ref = path.Base(u.Path)
		}
	}
	set, key, err = istorage.ParseIdentity(strings.TrimPrefix(ref, "/"))
	if err != nil {
		return "", 0, coreutils.NewHTTPError(http.StatusBadRequest, err)
	}
	return set, key, nil
}
