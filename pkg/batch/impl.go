/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package batch

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

func NewBoundary(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func MultipartContentType(boundary string) string {
	return mime.FormatMediaType(ContentTypeMultipartMixed, map[string]string{boundaryParam: boundary})
}

// MarshalRequest frames parts into a new batch request body
func MarshalRequest(parts []RequestPart) (contentType string, body []byte, err error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	boundary := NewBoundary(BoundaryPrefixBatch)
	if err := WriteRequest(buf, boundary, parts); err != nil {
		return "", nil, err
	}
	return MultipartContentType(boundary), append([]byte(nil), buf.B...), nil
}

// MarshalResponse frames parts into a new batch response body
func MarshalResponse(parts []ResponsePart) (contentType string, body []byte, err error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	boundary := NewBoundary(BoundaryPrefixBatch)
	if err := WriteResponse(buf, boundary, parts); err != nil {
		return "", nil, err
	}
	return MultipartContentType(boundary), append([]byte(nil), buf.B...), nil
}

func WriteRequest(w io.Writer, boundary string, parts []RequestPart) error {
	framed := make([]framedPart, len(parts))
	for i, p := range parts {
		framed[i].isChangeset = p.IsChangeset
		for _, r := range p.Requests {
			framed[i].messages = append(framed[i].messages, r)
		}
	}
	return writeBatch(w, boundary, framed)
}

func WriteResponse(w io.Writer, boundary string, parts []ResponsePart) error {
	framed := make([]framedPart, len(parts))
	for i, p := range parts {
		framed[i].isChangeset = p.IsChangeset
		for _, r := range p.Responses {
			framed[i].messages = append(framed[i].messages, r)
		}
	}
	return writeBatch(w, boundary, framed)
}

type message interface {
	contentID() string
	writeTo(w io.Writer) error
}

type framedPart struct {
	isChangeset bool
	messages    []message
}

func writeBatch(w io.Writer, boundary string, parts []framedPart) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return fmt.Errorf("%w: %s", err, boundary)
	}
	for _, p := range parts {
		if p.isChangeset {
			if err := writeChangeset(mw, p.messages); err != nil {
				return err
			}
			continue
		}
		for _, m := range p.messages {
			if err := writeMessage(mw, m); err != nil {
				return err
			}
		}
	}
	return mw.Close()
}

func writeChangeset(mw *multipart.Writer, messages []message) error {
	boundary := NewBoundary(BoundaryPrefixChangeset)
	h := textproto.MIMEHeader{}
	h.Set(HeaderContentType, MultipartContentType(boundary))
	pw, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	cw := multipart.NewWriter(pw)
	if err := cw.SetBoundary(boundary); err != nil {
		// notest
		return err
	}
	for _, m := range messages {
		if err := writeMessage(cw, m); err != nil {
			return err
		}
	}
	return cw.Close()
}

func writeMessage(mw *multipart.Writer, m message) error {
	h := textproto.MIMEHeader{}
	h.Set(HeaderContentType, ContentTypeHTTP)
	h.Set(HeaderContentTransferEncoding, TransferEncodingBinary)
	if id := m.contentID(); len(id) > 0 {
		h.Set(HeaderContentID, id)
	}
	pw, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	return m.writeTo(pw)
}

func (r *Request) contentID() string { return r.ContentID }

func (r *Request) writeTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s %s %s"+crlf, r.Method, r.URL, httpVersion); err != nil {
		return err
	}
	return writeHeaderAndBody(w, r.Header, r.Body)
}

func (r *Response) contentID() string { return r.ContentID }

func (r *Response) writeTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s %d %s"+crlf, httpVersion, r.StatusCode, http.StatusText(r.StatusCode)); err != nil {
		return err
	}
	return writeHeaderAndBody(w, r.Header, r.Body)
}

func writeHeaderAndBody(w io.Writer, header http.Header, body []byte) error {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Del(HeaderContentLength)
	if len(body) > 0 {
		h.Set(HeaderContentLength, strconv.Itoa(len(body)))
	}
	if err := h.Write(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, crlf); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
