// Package respond writes the JSON envelopes used by every handler.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, successResponse{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, successResponse{Success: true, Data: data})
}

// Fail writes an error envelope with the given status.
func Fail(w http.ResponseWriter, status int, err error) {
	JSON(w, status, errorResponse{Success: false, Error: err.Error()})
}
