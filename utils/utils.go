// utils/utils.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ejjays/assets-management/apperrors"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"message": message})
}

// RespondWithAppError maps an apperrors kind to its status. Storage failures
// answer with the public message only; the cause stays in the logs.
func RespondWithAppError(w http.ResponseWriter, err error, public string) {
	code := apperrors.HTTPStatus(err)
	if code < http.StatusInternalServerError {
		RespondWithError(w, code, err.Error())
		return
	}
	RespondWithError(w, code, public)
}
