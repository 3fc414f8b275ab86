package main

import (
	"net/http"
	"strings"

	"github.com/farxc/mgnrega-goa/internal/mgnrega"
	"github.com/farxc/mgnrega-goa/internal/response"
	"github.com/go-chi/chi/v5"
)

type GetSummaryResponse = response.APIResponse[[]mgnrega.DistrictSummary]
type ClearCacheResponse = response.APIResponse[any]

// @Summary		All MGNREGA records
// @Tags			MGNREGA
// @Produce		json
// @Success		200	{object}	response.Envelope
// @Router			/mgnrega [get]
func (app *application) handleGetAllData(w http.ResponseWriter, r *http.Request) {
	env, err := app.mgnrega.GetAllData(r.Context())
	if err != nil {
		app.writeErr(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, env); err != nil {
		app.writeErr(w, r, err)
	}
}

// @Summary		District names
// @Tags			MGNREGA
// @Produce		json
// @Success		200	{object}	response.Envelope
// @Router			/mgnrega/districts [get]
func (app *application) handleGetDistricts(w http.ResponseWriter, r *http.Request) {
	env, err := app.mgnrega.GetDistricts(r.Context())
	if err != nil {
		app.writeErr(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, env); err != nil {
		app.writeErr(w, r, err)
	}
}

// @Summary		Records of one district
// @Description	district matches as a case-insensitive substring
// @Tags			MGNREGA
// @Produce		json
// @Param			district	path	string	false	"district name"
// @Param			name		query	string	false	"district name"
// @Success		200	{object}	response.Envelope
// @Failure		400	{object}	response.ErrorResponse
// @Router			/mgnrega/district/{district} [get]
func (app *application) handleGetDistrictData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "district")
	if name == "" {
		name = r.URL.Query().Get("name")
	}

	env, err := app.mgnrega.GetDistrictData(r.Context(), name)
	if err != nil {
		app.writeErr(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, env); err != nil {
		app.writeErr(w, r, err)
	}
}

// @Summary		Per-district aggregates
// @Tags			MGNREGA
// @Produce		json
// @Param			district	query	string	false	"restrict to one district"
// @Success		200	{object}	GetSummaryResponse
// @Router			/mgnrega/summary [get]
func (app *application) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		env response.Envelope
		err error
	)
	if district := strings.TrimSpace(r.URL.Query().Get("district")); district != "" {
		env, err = app.mgnrega.GetDistrictData(ctx, district)
	} else {
		env, err = app.mgnrega.GetAllData(ctx)
	}
	if err != nil {
		app.writeErr(w, r, err)
		return
	}

	resp := &GetSummaryResponse{
		Success:   true,
		Message:   env.Note,
		Source:    string(env.Source),
		Data:      mgnrega.Summarize(env.Data),
		Timestamp: env.Timestamp,
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.writeErr(w, r, err)
	}
}

// @Summary		Drop the CSV cache
// @Tags			MGNREGA
// @Produce		json
// @Success		200	{object}	ClearCacheResponse
// @Router			/mgnrega/cache/clear [post]
func (app *application) handleClearCache(w http.ResponseWriter, r *http.Request) {
	app.mgnrega.ClearCache()

	resp := &ClearCacheResponse{
		Success:   true,
		Message:   "CSV cache cleared",
		Timestamp: response.Timestamp(app.now()),
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.writeErr(w, r, err)
	}
}
