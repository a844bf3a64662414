// Package response builds the JSON envelope every API response is wrapped in.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is a status code plus the body to serialize. A nil Body means
// no body is written.
type Response struct {
	Status int
	Body   any
}

type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Meta    *Meta  `json:"meta,omitempty"`
	Links   *Links `json:"links,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// Success wraps data in a 200 envelope. A non-nil paginator adds meta and links.
func Success(data any, p *Paginator) Response {
	body := successBody{Success: true, Data: data}
	if p != nil {
		meta := p.Meta()
		links := p.Links()
		body.Meta = &meta
		body.Links = &links
	}
	return Response{Status: http.StatusOK, Body: body}
}

// Created is Success with status 201.
func Created(data any) Response {
	r := Success(data, nil)
	r.Status = http.StatusCreated
	return r
}

// NoContent is a 204 with an empty body.
func NoContent() Response {
	return Response{Status: http.StatusNoContent}
}

// Error builds a failure envelope. errs is omitted when nil.
func Error(status int, message string, errs any) Response {
	return Response{Status: status, Body: errorBody{Success: false, Message: message, Errors: errs}}
}

// Write renders r on the echo context.
func Write(c echo.Context, r Response) error {
	if r.Body == nil {
		return c.NoContent(r.Status)
	}
	return c.JSON(r.Status, r.Body)
}
