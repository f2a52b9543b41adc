package handler

import (
	"net/http"

	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
)

// GET /recommendations/batch
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
		return
	}
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}
	params := batchParams{Page: page, Limit: limit}
	if err := validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), params.Page, params.Limit)
	if err != nil {
		logging.Error().Err(err).Int("page", params.Page).Msg("batch recommendations failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
