package bodyparser

import (
	"net/http"

	"github.com/goccy/go-json"
)

// M is a convenience type for map[string]any, useful for quick JSON responses
type M map[string]any

// Render is the default renderer instance used by the package
var Render Renderer = &defaultRenderer{}

// R is a short alias for Render for convenience
var R = Render

// Renderer writes the responses produced by handlers and error handlers.
type Renderer interface {
	// JSON writes a JSON response with the given status code and data
	JSON(w http.ResponseWriter, statusCode int, data any) error

	// Text writes a plain text response with the given status code and data
	Text(w http.ResponseWriter, statusCode int, data string) error

	// Blob writes a binary response with the given status code, content type, and data
	Blob(w http.ResponseWriter, statusCode int, contentType string, data []byte) error

	// NoContent writes a 204 No Content response with no body
	NoContent(w http.ResponseWriter) error

	// ProblemDetail writes an RFC 9457 Problem Details response
	ProblemDetail(w http.ResponseWriter, problem *ProblemDetail) error
}

type defaultRenderer struct{}

func (r *defaultRenderer) JSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set(HeaderContentType, MIMEApplicationJSON)
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func (r *defaultRenderer) Text(w http.ResponseWriter, statusCode int, data string) error {
	w.Header().Set(HeaderContentType, MIMETextPlain)
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(data))
	return err
}

func (r *defaultRenderer) Blob(w http.ResponseWriter, statusCode int, contentType string, data []byte) error {
	w.Header().Set(HeaderContentType, contentType)
	w.WriteHeader(statusCode)
	_, err := w.Write(data)
	return err
}

func (r *defaultRenderer) NoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *defaultRenderer) ProblemDetail(w http.ResponseWriter, problem *ProblemDetail) error {
	w.Header().Set(HeaderContentType, MIMEApplicationProblem)
	w.WriteHeader(problem.Status)
	return json.NewEncoder(w).Encode(problem)
}
