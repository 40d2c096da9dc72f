package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.Validation("request body is empty")
		case errors.As(err, &tooLarge):
			return apperrors.Validation("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return apperrors.Validation("invalid JSON body: %v", err)
		}
	}
	return nil
}
