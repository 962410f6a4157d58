/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

// ReadRequest parses a batch request body. contentType is the value of the Content-Type header of the batch
func ReadRequest(r io.Reader, contentType string) ([]RequestPart, error) {
	raw, err := readBatch(r, contentType)
	if err != nil {
		return nil, err
	}
	res := make([]RequestPart, 0, len(raw))
	for _, p := range raw {
		part := RequestPart{IsChangeset: p.isChangeset}
		for _, m := range p.messages {
			method, url, err := parseRequestLine(m.startLine)
			if err != nil {
				return nil, err
			}
			part.Requests = append(part.Requests, &Request{
				ContentID: m.contentID,
				Method:    method,
				URL:       url,
				Header:    m.header,
				Body:      m.body,
			})
		}
		res = append(res, part)
	}
	return res, nil
}

// ReadResponse parses a batch response body. contentType is the value of the Content-Type header of the batch
func ReadResponse(r io.Reader, contentType string) ([]ResponsePart, error) {
	raw, err := readBatch(r, contentType)
	if err != nil {
		return nil, err
	}
	res := make([]ResponsePart, 0, len(raw))
	for _, p := range raw {
		part := ResponsePart{IsChangeset: p.isChangeset}
		for _, m := range p.messages {
			statusCode, err := parseStatusLine(m.startLine)
			if err != nil {
				return nil, err
			}
			part.Responses = append(part.Responses, &Response{
				ContentID:  m.contentID,
				StatusCode: statusCode,
				Header:     m.header,
				Body:       m.body,
			})
		}
		res = append(res, part)
	}
	return res, nil
}

// IsMultipart reports whether contentType denotes a batch body
func IsMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == ContentTypeMultipartMixed
}

type rawMessage struct {
	contentID string
	startLine string
	header    http.Header
	body      []byte
}

type rawPart struct {
	isChangeset bool
	messages    []rawMessage
}

func boundaryOf(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotMultipart, err)
	}
	if mediaType != ContentTypeMultipartMixed {
		return "", fmt.Errorf("%w: %s", ErrNotMultipart, mediaType)
	}
	boundary := params[boundaryParam]
	if len(boundary) == 0 {
		return "", ErrNoBoundary
	}
	return boundary, nil
}

func readBatch(r io.Reader, contentType string) ([]rawPart, error) {
	boundary, err := boundaryOf(contentType)
	if err != nil {
		return nil, err
	}
	mr := multipart.NewReader(r, boundary)
	res := []rawPart{}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch part: %w", err)
		}
		mediaType, params, err := mime.ParseMediaType(p.Header.Get(HeaderContentType))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedPartType, err)
		}
		switch mediaType {
		case ContentTypeMultipartMixed:
			messages, err := readChangeset(p, params[boundaryParam])
			if err != nil {
				return nil, err
			}
			res = append(res, rawPart{isChangeset: true, messages: messages})
		case ContentTypeHTTP:
			m, err := readMessage(p)
			if err != nil {
				return nil, err
			}
			res = append(res, rawPart{messages: []rawMessage{m}})
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPartType, mediaType)
		}
	}
}

func readChangeset(r io.Reader, boundary string) ([]rawMessage, error) {
	if len(boundary) == 0 {
		return nil, ErrNoBoundary
	}
	mr := multipart.NewReader(r, boundary)
	res := []rawMessage{}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read changeset part: %w", err)
		}
		mediaType, _, err := mime.ParseMediaType(p.Header.Get(HeaderContentType))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedPartType, err)
		}
		switch mediaType {
		case ContentTypeHTTP:
		case ContentTypeMultipartMixed:
			return nil, ErrNestedChangeset
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPartType, mediaType)
		}
		m, err := readMessage(p)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
}

func readMessage(p *multipart.Part) (rawMessage, error) {
	tr := textproto.NewReader(bufio.NewReader(p))
	startLine, err := tr.ReadLine()
	if err != nil {
		return rawMessage{}, fmt.Errorf("%w: %w", ErrMalformedStartLine, err)
	}
	header, err := tr.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return rawMessage{}, fmt.Errorf("failed to read embedded message headers: %w", err)
	}
	body, err := io.ReadAll(tr.R)
	if err != nil {
		return rawMessage{}, fmt.Errorf("failed to read embedded message body: %w", err)
	}
	h := http.Header(header)
	if h == nil {
		h = http.Header{}
	}
	if cl, err := strconv.Atoi(h.Get(HeaderContentLength)); err == nil && cl >= 0 && cl < len(body) {
		body = body[:cl]
	}
	contentID := p.Header.Get(HeaderContentID)
	if len(contentID) == 0 {
		contentID = h.Get(HeaderContentID)
	}
	return rawMessage{
		contentID: contentID,
		startLine: startLine,
		header:    h,
		body:      body,
	}, nil
}

// METHOD URL HTTP/1.1
func parseRequestLine(line string) (method string, url string, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || !strings.HasPrefix(fields[2], "HTTP/") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedStartLine, line)
	}
	return fields[0], fields[1], nil
}

// HTTP/1.1 CODE TEXT
func parseStatusLine(line string) (int, error) {
	proto, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedStartLine, line)
	}
	codeStr, _, _ := strings.Cut(rest, " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 100 || code > 999 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedStartLine, line)
	}
	return code, nil
}
