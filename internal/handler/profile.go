package handler

import "net/http"

// POST /users/{username}/profile
func (h *Handler) BuildProfile(w http.ResponseWriter, r *http.Request) {
	params := profileParams{Username: usernameParam(r)}
	if err := validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	user, err := h.service.BuildProfile(r.Context(), params.Username)
	if err != nil {
		writeServiceError(w, err, params.Username)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: user})
}

// GET /users/{username}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	params := profileParams{Username: usernameParam(r)}
	if err := validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	user, err := h.service.GetProfile(r.Context(), params.Username)
	if err != nil {
		writeServiceError(w, err, params.Username)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: user})
}
