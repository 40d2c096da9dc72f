// Package respond writes JSON bodies and the stable error envelope shared by handlers
// and middlewares.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error classifies err and writes {"error":{"code","message"}}. The cause is logged,
// never sent.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("code", appErr.Code),
			logger.Error(err))
	}
	Code(w, appErr.Status, appErr.Code, appErr.Message)
}

// Code writes an error envelope without classification.
func Code(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
