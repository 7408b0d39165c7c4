package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oggyb/smshub/internal/request"
	"github.com/oggyb/smshub/internal/response"
	"github.com/oggyb/smshub/internal/scheduler"
	"github.com/oggyb/smshub/internal/service"
	"github.com/oggyb/smshub/internal/smshub"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ActivationHandler exposes the activation service and the polling
// scheduler over HTTP.
type ActivationHandler struct {
	svc service.ActivationService
	sch scheduler.SchedulerService
	log zerolog.Logger
}

func NewActivationHandler(svc service.ActivationService, sch scheduler.SchedulerService, log zerolog.Logger) *ActivationHandler {
	return &ActivationHandler{
		svc: svc,
		sch: sch,
		log: log.With().Str("component", "activation_handler").Logger(),
	}
}

// Balance godoc
// @Summary     Account balance
// @Description Returns the provider account balance.
// @Tags        account
// @Produce     json
// @Success     200 {object} response.BalanceResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /balance [get]
func (h *ActivationHandler) Balance(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.Balance(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, response.BalancePayload{Balance: amount.StringFixed(2)})
}

// NumbersStatus godoc
// @Summary     Available numbers
// @Description Returns the provider's count of available numbers per service.
// @Tags        account
// @Produce     json
// @Param       country  query string false "Country code"
// @Param       operator query string false "Operator"
// @Success     200 {object} response.NumbersStatusResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /numbers/status [get]
func (h *ActivationHandler) NumbersStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doc, err := h.svc.NumbersStatus(r.Context(), q.Get("country"), q.Get("operator"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, doc)
}

// Prices godoc
// @Summary     Price table
// @Description Returns prices by service and country.
// @Tags        account
// @Produce     json
// @Param       service query string false "Service code"
// @Param       country query string false "Country code"
// @Success     200 {object} response.PricesResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /prices [get]
func (h *ActivationHandler) Prices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table, err := h.svc.Prices(r.Context(), q.Get("service"), q.Get("country"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, table)
}

// Order godoc
// @Summary     Order a number
// @Description Reserves a number for a service and records the activation.
// @Tags        activations
// @Accept      json
// @Produce     json
// @Param       request body request.OrderRequest true "Order"
// @Success     201 {object} response.ActivationResponse
// @Failure     400 {object} response.ErrorResponse
// @Failure     409 {object} response.ErrorResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /activations [post]
func (h *ActivationHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req request.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Normalize(); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Order(r.Context(), req.Country, req.Operator, req.Service)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, response.FromActivation(a))
}

// List godoc
// @Summary     List activations
// @Description Returns a page of activations, newest first.
// @Tags        activations
// @Produce     json
// @Param       page  query int false "Page number"         default(1)
// @Param       limit query int false "Page size (max 100)" default(20)
// @Success     200 {object} response.ActivationListResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /activations [get]
func (h *ActivationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := defaultPage, defaultLimit

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= maxLimit {
		limit = v
	}

	items, total, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.ActivationListPayload{
		Items: response.FromActivations(items),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary     Get activation
// @Tags        activations
// @Produce     json
// @Param       id path string true "Activation ID"
// @Success     200 {object} response.ActivationResponse
// @Failure     400 {object} response.ErrorResponse
// @Failure     404 {object} response.ErrorResponse
// @Router      /activations/{id} [get]
func (h *ActivationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, response.FromActivation(a))
}

// SetStatus godoc
// @Summary     Change activation status
// @Description Sends ready, resend, complete or cancel to the provider.
// @Tags        activations
// @Accept      json
// @Produce     json
// @Param       id      path string                      true "Activation ID"
// @Param       request body request.StatusChangeRequest true "Status change"
// @Success     200 {object} response.ActivationResponse
// @Failure     400 {object} response.ErrorResponse
// @Failure     404 {object} response.ErrorResponse
// @Failure     409 {object} response.ErrorResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /activations/{id}/status [post]
func (h *ActivationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req request.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, err := smshub.ParseStatusRequest(req.Action)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "action must be one of ready, resend, complete, cancel")
		return
	}

	a, err := h.svc.SetStatus(r.Context(), id, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, response.FromActivation(a))
}

// Refresh godoc
// @Summary     Refresh activation
// @Description Polls the provider for the current status of one activation.
// @Tags        activations
// @Produce     json
// @Param       id path string true "Activation ID"
// @Success     200 {object} response.ActivationResponse
// @Failure     404 {object} response.ErrorResponse
// @Failure     502 {object} response.ErrorResponse
// @Router      /activations/{id}/refresh [post]
func (h *ActivationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Refresh(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, response.FromActivation(a))
}

// ControlScheduler godoc
// @Summary     Control scheduler
// @Description Starts or stops background polling of pending activations.
// @Tags        scheduler
// @Accept      json
// @Produce     json
// @Param       request body request.SchedulerRequest true "Scheduler action (start|stop)"
// @Success     200 {object} response.SchedulerControlResponse
// @Failure     400 {object} response.ErrorResponse
// @Failure     409 {object} response.ErrorResponse
// @Router      /scheduler [post]
func (h *ActivationHandler) ControlScheduler(w http.ResponseWriter, r *http.Request) {
	var req request.SchedulerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		err error
		msg string
	)
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "start":
		err, msg = h.sch.Start(), "scheduler started"
	case "stop":
		err, msg = h.sch.Stop(), "scheduler stopped"
	default:
		response.RespondError(w, http.StatusBadRequest, "action must be 'start' or 'stop'")
		return
	}
	if errors.Is(err, scheduler.ErrStopSuperseded) {
		response.RespondError(w, http.StatusConflict, "stop was superseded by a start")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("action", req.Action).Msg("scheduler control failed")
		response.RespondError(w, http.StatusServiceUnavailable, "scheduler not responding")
		return
	}

	response.RespondJSON(w, http.StatusOK, response.SchedulerControlPayload{
		Message: msg,
		Running: h.sch.IsRunning(),
	})
}

// fail logs the full error and writes the caller-safe version of it.
func (h *ActivationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := response.Describe(err)

	ev := h.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = h.log.Error()
	}
	ev.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	response.RespondErr(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid activation id")
		return uuid.Nil, false
	}
	return id, true
}
