// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP API. Every response uses a uniform
// JSON envelope: {"success":true,"data":...} on success and
// {"success":false,"error":"..."} on failure.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// maxBodyBytes caps request body size for JSON endpoints.
const maxBodyBytes = 1 << 20 // 1 MiB

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// redactErrors controls whether 5xx messages are replaced with a generic
// string. Set once at startup from the environment; defaults to showing
// real messages, which suits development.
var redactErrors bool

// SetErrorRedaction enables or disables 5xx message redaction.
// Production deployments enable it so internal details never leak.
func SetErrorRedaction(on bool) {
	redactErrors = on
}

// respondData writes a success envelope with the given payload.
func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes a failure envelope. Messages for 5xx status codes
// are redacted when redaction is enabled.
func respondError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError && redactErrors {
		msg = "internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: msg}); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondInternal logs the underlying error and writes a 500 envelope.
func respondInternal(w http.ResponseWriter, action string, err error) {
	slog.Error(action, "error", err)
	respondError(w, http.StatusInternalServerError, action)
}

// decodeJSON reads a JSON request body into dst with a size cap.
// Returns a client-facing message on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return clientError("request body too large")
		case errors.Is(err, io.EOF):
			return clientError("request body is empty")
		default:
			return clientError("invalid JSON body")
		}
	}
	return nil
}

// clientError carries a message safe to show to API consumers.
type clientError string

func (e clientError) Error() string { return string(e) }
