package apperr

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type errorBody struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
}

// WriteHTTP maps a domain error to an HTTP status and writes the JSON body.
// Internal errors are logged with their cause; the client only sees the kind.
func WriteHTTP(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case KindValidation:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindPeriodClosed, KindDuplicate, KindNotCancelled:
		status = http.StatusConflict
	}

	body := errorBody{Error: e.Kind, Message: e.Message}
	if e.Kind == KindInternal {
		log.Printf("[apperr] internal error: %v", e.Cause)
		body.Message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
