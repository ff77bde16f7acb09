package quoteapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/middleware"
	"oficinago/internal/service/quoteservice"
)

// Handler agrupa as dependências dos endpoints de orçamento.
type Handler struct {
	Service *quoteservice.QuoteService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de orçamentos.
func NewHandler(service *quoteservice.QuoteService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// rejectRequest é o payload de entrada da rejeição.
type rejectRequest struct {
	Reason string `json:"reason"`
}

// handleServiceResponse centraliza a tradução de erro e a serialização da resposta.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de orçamentos.", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
		return
	}

	w.WriteHeader(successStatus)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func callerFrom(r *http.Request) (domain.Caller, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, true
}

// Create lida com a criação de um orçamento.
// @Summary      Cria um orçamento
// @Description  Cria uma proposta de serviço precificada para um veículo. Mecânicos e gerentes.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        quote  body      domain.Quote  true  "Dados do orçamento"
// @Success      201    {object}  domain.Quote
// @Failure      400    {object}  domain.ErrorResponse
// @Failure      403    {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/quotes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var quote domain.Quote
	if err := json.NewDecoder(r.Body).Decode(&quote); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	created, err := h.Service.Create(r.Context(), caller, quote)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// GetByID lida com a busca de um orçamento.
// @Summary      Busca um orçamento pelo ID
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "ID do orçamento"
// @Success      200  {object}  domain.Quote
// @Failure      403  {object}  domain.ErrorResponse
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/quotes/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	quote, err := h.Service.Get(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, quote, err, http.StatusOK)
}

// List lida com a listagem de orçamentos, com escopo pelo papel do chamador.
// @Summary      Lista orçamentos
// @Description  Clientes enxergam apenas orçamentos dos seus veículos; mecânicos, os atribuídos a eles.
// @Tags         quotes
// @Produce      json
// @Param        status  query     string  false  "Filtro por status"
// @Param        from    query     string  false  "Criados a partir de (RFC 3339)"
// @Param        to      query     string  false  "Criados até (RFC 3339)"
// @Success      200     {array}   domain.Quote
// @Security     BearerAuth
// @Router       /v1/quotes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	filter := domain.QuoteFilter{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	quotes, err := h.Service.List(r.Context(), caller, filter)
	h.handleServiceResponse(w, quotes, err, http.StatusOK)
}

// Approve lida com a aprovação do orçamento pelo cliente.
// @Summary      Aprova um orçamento
// @Description  Apenas o cliente dono do veículo. Orçamento vencido transiciona para expired e a aprovação falha.
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "ID do orçamento"
// @Success      200  {object}  domain.Quote
// @Failure      403  {object}  domain.ErrorResponse
// @Failure      409  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/quotes/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	quote, err := h.Service.Approve(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, quote, err, http.StatusOK)
}

// Reject lida com a rejeição do orçamento pelo cliente.
// @Summary      Rejeita um orçamento
// @Description  Apenas o cliente dono do veículo. O motivo (mínimo 10 caracteres) fica registrado nas observações.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "ID do orçamento"
// @Param        reason  body      rejectRequest  true  "Motivo da rejeição"
// @Success      200     {object}  domain.Quote
// @Failure      400     {object}  domain.ErrorResponse
// @Failure      403     {object}  domain.ErrorResponse
// @Failure      409     {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/quotes/{id}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	quote, err := h.Service.Reject(r.Context(), caller, r.PathValue("id"), req.Reason)
	h.handleServiceResponse(w, quote, err, http.StatusOK)
}
