// Package httputil centralizes JSON request decoding and response writing so
// handlers stay focused on orchestration.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	dErrors "willforge/pkg/domain-errors"
)

// maxRequestBody bounds request payloads. Will payloads are small; anything
// close to this limit is abuse.
const maxRequestBody = 1 << 20

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Details          any    `json:"details,omitempty"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// WriteError translates a domain error into an HTTP response. Internal errors
// deliberately omit the description so storage or rendering failures never
// leak implementation detail to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}

	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
			resp.Details = de.Details
		} else {
			resp.ErrorDescription = err.Error()
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// Decode reads a JSON request body into dst, enforcing the body size cap.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return dErrors.New(dErrors.CodeInvalidInput, "request body is empty")
		default:
			return dErrors.Wrap(dErrors.CodeInvalidInput, "malformed JSON body", err)
		}
	}
	return nil
}
