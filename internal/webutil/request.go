package webutil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go_5_srs_engine/internal/model"
)

// DecodeJSONBody はリクエストボディをデコードします
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return model.ErrInvalidInput
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		slog.Default().Debug("Error decoding JSON body", "error", err)
		return model.ErrInvalidInput
	}
	return nil
}
