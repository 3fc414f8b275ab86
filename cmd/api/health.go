package main

import "net/http"

type healthStatus struct {
	Status           string   `json:"status"`
	Version          string   `json:"version"`
	Store            string   `json:"store"`
	RemoteConfigured bool     `json:"remote_configured"`
	Tiers            []string `json:"tiers"`
}

// @Summary		Health check
// @Description	returns the status of the service and its active data tiers
// @Tags			Health
// @Produce		json
// @Success		200	{object}	healthStatus
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := healthStatus{
		Status:           "available",
		Version:          version,
		Store:            "none",
		RemoteConfigured: app.remote.Configured(),
		Tiers:            app.mgnrega.TierNames(),
	}
	if app.store != nil {
		data.Store = app.store.Driver
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.writeErr(w, r, err)
	}
}
