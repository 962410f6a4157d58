/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
)

func (p *implIProcessor) create(w *opWork, set string) (*istorage.Record, error) {
	props, binds, err := decodeEntity(w.op.Request.Body)
	if err != nil {
		return nil, err
	}
	var key int64
	if keyValue, ok := props[p.params.KeyProperty]; ok {
		if key, ok = toKey(keyValue); !ok {
			return nil, coreutils.NewHTTPErrorf(http.StatusBadRequest, "invalid key ", p.params.KeyProperty, ": ", keyValue)
		}
		_, exists, err := w.tx.Get(set, key)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, coreutils.NewHTTPErrorf(http.StatusConflict, istorage.Identity(set, key), " already exists")
		}
	} else if key, err = w.tx.NextKey(set); err != nil {
		return nil, err
	}
	props[p.params.KeyProperty] = key
	r := &istorage.Record{
		Set:        set,
		Key:        key,
		Version:    firstVersion,
		Properties: props,
	}
	if err := bind(w, r, binds); err != nil {
		return nil, err
	}
	return r, w.tx.Put(r)
}

func (p *implIProcessor) update(w *opWork) error {
	props, binds, err := decodeEntity(w.op.Request.Body)
	if err != nil {
		return err
	}
	r := w.record
	if keyValue, ok := props[p.params.KeyProperty]; ok {
		if key, ok := toKey(keyValue); !ok || key != r.Key {
			return coreutils.NewHTTPErrorf(http.StatusBadRequest, "key property ", p.params.KeyProperty, " can not be changed")
		}
	}
	if w.op.Kind == KindReplace || r.Properties == nil {
		r.Properties = props
	} else {
		for name, value := range props {
			r.Properties[name] = value
		}
	}
	r.Properties[p.params.KeyProperty] = r.Key
	if err := bind(w, r, binds); err != nil {
		return err
	}
	r.Version++
	w.result = r
	return w.tx.Put(r)
}

func (p *implIProcessor) writeRef(w *opWork) error {
	body := map[string]any{}
	if err := json.Unmarshal(w.op.Request.Body, &body); err != nil {
		return coreutils.NewHTTPErrorf(http.StatusBadRequest, "failed to parse reference: ", err)
	}
	ref, ok := body[AnnotationID].(string)
	if !ok {
		return coreutils.NewHTTPErrorf(http.StatusBadRequest, AnnotationID, " is missing")
	}
	target, err := existingReference(w, ref)
	if err != nil {
		return err
	}
	if w.op.Kind == KindSetRef {
		if w.record.Links == nil {
			w.record.Links = map[string][]string{}
		}
		w.record.Links[w.op.Property] = []string{target}
	} else {
		addLink(w.record, w.op.Property, target)
	}
	return w.tx.Put(w.record)
}

func (p *implIProcessor) deleteRef(w *opWork) error {
	ref := w.op.Request.Query.Get(QueryID)
	if len(ref) == 0 {
		delete(w.record.Links, w.op.Property)
		return w.tx.Put(w.record)
	}
	set, key, err := resolveReference(ref, w.op.Request)
	if err != nil {
		return err
	}
	target := istorage.Identity(set, key)
	links := w.record.Links[w.op.Property]
	idx := slices.Index(links, target)
	if idx < 0 {
		return errNotFound(w.record.Identity() + "/" + w.op.Property + "/" + target)
	}
	w.record.Links[w.op.Property] = slices.Delete(links, idx, idx+1)
	if len(w.record.Links[w.op.Property]) == 0 {
		delete(w.record.Links, w.op.Property)
	}
	return w.tx.Put(w.record)
}

func (p *implIProcessor) writeStream(w *opWork) error {
	contentType := w.op.Request.Header.Get(coreutils.ContentType)
	if len(contentType) == 0 {
		contentType = coreutils.ContentType_OctetStream
	}
	version := firstVersion
	if w.stream != nil {
		version = w.stream.Version + 1
	}
	w.stream = &istorage.Stream{
		ContentType: contentType,
		Content:     w.op.Request.Body,
		Version:     version,
	}
	if w.record.Streams == nil {
		w.record.Streams = map[string]*istorage.Stream{}
	}
	w.record.Streams[w.op.Property] = w.stream
	return w.tx.Put(w.record)
}

func (p *implIProcessor) invokeAction(ctx context.Context, w *opWork) (err error) {
	params := map[string]any{}
	if len(bytes.TrimSpace(w.op.Request.Body)) > 0 {
		if err := json.Unmarshal(w.op.Request.Body, &params); err != nil {
			return coreutils.NewHTTPErrorf(http.StatusBadRequest, "failed to parse action parameters: ", err)
		}
	}
	action := p.params.Actions[w.op.Property]
	w.actionRes, err = action(ctx, w.tx, w.record, params)
	if err != nil {
		return coreutils.WrapSysError(err, http.StatusBadRequest)
	}
	return nil
}

func (p *implIProcessor) navigationTarget(set, nav string) string {
	if target, ok := p.params.NavigationTargets[set+"/"+nav]; ok {
		return target
	}
	return nav
}

func (p *implIProcessor) representation(r *istorage.Record, serviceRoot string) map[string]any {
	res := make(map[string]any, len(r.Properties)+3)
	for name, value := range r.Properties {
		res[name] = value
	}
	res[p.params.KeyProperty] = r.Key
	res[AnnotationID] = serviceRoot + r.Identity()
	res[AnnotationETag] = ETag(r.Version)
	return res
}

// decodeEntity splits entity payload into properties and nav -> references to bind
func decodeEntity(body []byte) (props map[string]any, binds map[string][]string, err error) {
	props = map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &props); err != nil {
			return nil, nil, coreutils.NewHTTPErrorf(http.StatusBadRequest, "failed to parse entity: ", err)
		}
	}
	binds = map[string][]string{}
	for name, value := range props {
		nav, isBind := strings.CutSuffix(name, AnnotationBind)
		if !isBind {
			if strings.Contains(name, annotationPrefix) {
				delete(props, name)
			}
			continue
		}
		delete(props, name)
		switch v := value.(type) {
		case string:
			binds[nav] = append(binds[nav], v)
		case []any:
			for _, item := range v {
				ref, ok := item.(string)
				if !ok {
					return nil, nil, coreutils.NewHTTPErrorf(http.StatusBadRequest, "invalid reference in ", name)
				}
				binds[nav] = append(binds[nav], ref)
			}
		default:
			return nil, nil, coreutils.NewHTTPErrorf(http.StatusBadRequest, "invalid reference in ", name)
		}
	}
	return props, binds, nil
}

func bind(w *opWork, r *istorage.Record, binds map[string][]string) error {
	for nav, refs := range binds {
		for _, ref := range refs {
			target, err := existingReference(w, ref)
			if err != nil {
				return err
			}
			addLink(r, nav, target)
		}
	}
	return nil
}

// existingReference resolves the reference and checks that the entity exists
func existingReference(w *opWork, ref string) (identity string, err error) {
	set, key, err := resolveReference(ref, w.op.Request)
	if err != nil {
		return "", err
	}
	_, ok, err := w.tx.Get(set, key)
	if err != nil {
		return "", err
	}
	identity = istorage.Identity(set, key)
	if !ok {
		return "", errNotFound(identity)
	}
	return identity, nil
}

func addLink(r *istorage.Record, nav string, identity string) {
	if r.Links == nil {
		r.Links = map[string][]string{}
	}
	if !slices.Contains(r.Links[nav], identity) {
		r.Links[nav] = append(r.Links[nav], identity)
	}
}

func getByIdentity(tx istorage.ITx, identity string) (*istorage.Record, bool, error) {
	set, key, err := istorage.ParseIdentity(identity)
	if err != nil {
		return nil, false, err
	}
	return tx.Get(set, key)
}
