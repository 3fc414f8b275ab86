package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/response"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func (app *application) writeJSONError(w http.ResponseWriter, status int, kind, message string) error {
	return writeJSON(w, status, response.NewError(kind, message, app.now()))
}

// writeErr maps a domain error onto its status code and error shape.
func (app *application) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, types.ErrMissingParameter) {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		app.logger.Error("API", "Request failed: path=%s err=%v", r.URL.Path, err)
	}
	app.writeJSONError(w, status, types.KindOf(err), err.Error())
}
