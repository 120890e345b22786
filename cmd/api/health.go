package main

import "net/http"

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service version, environment and the backing store.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Security		BasicAuth
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	storeKind := "memory"
	if app.store.Persistent() {
		storeKind = "postgres"
	}

	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"store":   storeKind,
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
