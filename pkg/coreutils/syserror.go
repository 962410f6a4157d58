/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package coreutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// SysError is an error which is replied with a certain HTTP status
type SysError struct {
	HTTPStatus int

	// empty -> HTTPStatus is used as code
	Code    string
	Message string

	// the request part the error relates to
	Target string
}

type odataError struct {
	Error odataErrorBody `json:"error"`
}

type odataErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

func NewSysError(statusCode int) error {
	return SysError{HTTPStatus: statusCode}
}

func NewHTTPErrorf(httpStatus int, args ...interface{}) SysError {
	return SysError{
		HTTPStatus: httpStatus,
		Message:    fmt.Sprint(args...),
	}
}

func NewHTTPError(httpStatus int, err error) SysError {
	return NewHTTPErrorf(httpStatus, err.Error())
}

func WrapSysErrorToExact(err error, defaultStatusCode int) SysError {
	if err == nil {
		return SysError{}
	}
	var res SysError
	if !errors.As(err, &res) {
		return SysError{Message: err.Error(), HTTPStatus: defaultStatusCode}
	}
	return res
}

func WrapSysError(err error, defaultStatusCode int) error {
	if err == nil {
		return err
	}
	return WrapSysErrorToExact(err, defaultStatusCode)
}

func (he SysError) Error() string {
	if len(he.Message) == 0 && he.HTTPStatus > 0 {
		return fmt.Sprintf("%d %s", he.HTTPStatus, http.StatusText(he.HTTPStatus))
	}
	return he.Message
}

func (he SysError) ErrorCode() string {
	if len(he.Code) > 0 {
		return he.Code
	}
	return strconv.Itoa(he.HTTPStatus)
}

// ToJSON renders the error as an OData error body
func (he SysError) ToJSON() string {
	b, err := json.Marshal(odataError{Error: odataErrorBody{
		Code:    he.ErrorCode(),
		Message: he.Error(),
		Target:  he.Target,
	}})
	if err != nil {
		// notest
		panic(err)
	}
	return string(b)
}

// ParseSysError restores the error from a failed response. Body which is not an OData error body becomes
// the message
func ParseSysError(httpStatus int, body []byte) SysError {
	res := SysError{HTTPStatus: httpStatus}
	parsed := odataError{}
	if err := json.Unmarshal(body, &parsed); err == nil && (len(parsed.Error.Code) > 0 || len(parsed.Error.Message) > 0) {
		res.Code = parsed.Error.Code
		res.Message = parsed.Error.Message
		res.Target = parsed.Error.Target
		return res
	}
	res.Message = string(body)
	return res
}
