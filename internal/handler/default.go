package handler

import (
	"net/http"

	"github.com/oggyb/smshub/internal/response"
)

// HomeHandler serves the root and health endpoints.
type HomeHandler struct{}

func NewHomeHandler() *HomeHandler { return &HomeHandler{} }

// Index godoc
// @Summary     Welcome endpoint
// @Description Returns a welcome message.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.WelcomeResponse
// @Router      / [get]
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, response.WelcomePayload{
		Message: "SMSHub activation gateway",
	})
}

// Health godoc
// @Summary     Health check
// @Description Reports that the API process is up.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.HealthResponse
// @Router      /health [get]
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, response.HealthPayload{Status: "ok"})
}
