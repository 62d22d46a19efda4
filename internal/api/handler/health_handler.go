package handler

import (
	"net/http"

	"customer-registry/internal/api/handler/dto"
)

// Health handles GET / and GET /health
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is up"
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}
