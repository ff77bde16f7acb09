package partapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/middleware"
	"oficinago/internal/service/partservice"
)

// Handler agrupa as dependências dos endpoints de peças e estoque.
type Handler struct {
	Service *partservice.PartService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de peças.
func NewHandler(service *partservice.PartService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// handleServiceResponse centraliza a tradução de erro e a serialização da
// resposta. Erros de estoque carregam o detalhe das peças em falta.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de peças.", err)
		}
		body := map[string]interface{}{"code": status, "category": category, "message": message}
		if stockErr, ok := err.(*apperror.StockError); ok {
			body["details"] = stockErr.Items
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
		return
	}

	w.WriteHeader(successStatus)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// callerFrom extrai a identidade do chamador anexada pelo middleware.
func callerFrom(r *http.Request) (domain.Caller, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, true
}

// Create lida com o cadastro de uma nova peça.
// @Summary      Cadastra uma peça
// @Tags         parts
// @Accept       json
// @Produce      json
// @Param        part  body      domain.Part  true  "Dados da peça"
// @Success      201   {object}  domain.Part
// @Failure      400   {object}  domain.ErrorResponse
// @Failure      409   {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var part domain.Part
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	created, err := h.Service.Create(r.Context(), caller, part)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// GetByID lida com a busca de uma peça.
// @Summary      Busca uma peça pelo ID
// @Tags         parts
// @Produce      json
// @Param        id   path      string  true  "ID da peça"
// @Success      200  {object}  domain.Part
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	part, err := h.Service.Get(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, part, err, http.StatusOK)
}

// List lida com a listagem de peças.
// @Summary      Lista peças
// @Tags         parts
// @Produce      json
// @Param        manufacturer   query     string  false  "Filtro por fabricante"
// @Param        status         query     string  false  "Filtro por status"
// @Param        below_minimum  query     bool    false  "Apenas peças no estoque mínimo ou abaixo"
// @Success      200            {array}   domain.Part
// @Security     BearerAuth
// @Router       /v1/parts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.PartFilter{
		Manufacturer: r.URL.Query().Get("manufacturer"),
		Status:       r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("below_minimum"); v != "" {
		below := v == "true"
		filter.BelowMinimum = &below
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	parts, err := h.Service.List(r.Context(), filter)
	h.handleServiceResponse(w, parts, err, http.StatusOK)
}

// Update lida com a atualização cadastral de uma peça.
// @Summary      Atualiza uma peça
// @Tags         parts
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "ID da peça"
// @Param        part  body      domain.Part  true  "Dados da peça"
// @Success      200   {object}  domain.Part
// @Failure      404   {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var part domain.Part
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}
	part.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), caller, part)
	h.handleServiceResponse(w, updated, err, http.StatusOK)
}

// Delete lida com a remoção de uma peça do catálogo.
// @Summary      Remove uma peça
// @Tags         parts
// @Param        id  path  string  true  "ID da peça"
// @Success      204
// @Failure      404  {object}  domain.ErrorResponse
// @Failure      409  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	err := h.Service.Delete(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, nil, err, http.StatusNoContent)
}

// CheckAvailability lida com a consulta de disponibilidade de estoque.
// @Summary      Consulta disponibilidade de estoque
// @Description  Verifica, sem mutação, se há estoque para a quantidade solicitada.
// @Tags         parts
// @Produce      json
// @Param        id        path      string  true  "ID da peça"
// @Param        quantity  query     int     true  "Quantidade desejada"
// @Success      200       {object}  domain.AvailabilityResult
// @Failure      404       {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts/{id}/availability [get]
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Parâmetro quantity inválido."), 0)
		return
	}

	result, err := h.Service.CheckAvailability(r.Context(), r.PathValue("id"), qty)
	h.handleServiceResponse(w, result, err, http.StatusOK)
}

// AdjustStock lida com o ajuste manual de estoque.
// @Summary      Ajusta o estoque de uma peça
// @Description  Delta positivo entra, delta negativo sai. Apenas gerentes.
// @Tags         parts
// @Accept       json
// @Produce      json
// @Param        id          path      string                         true  "ID da peça"
// @Param        adjustment  body      domain.StockAdjustmentRequest  true  "Delta do ajuste"
// @Success      200         {object}  domain.Part
// @Failure      403         {object}  domain.ErrorResponse
// @Failure      422         {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/parts/{id}/stock-adjustment [post]
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var req domain.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	part, err := h.Service.AdjustStock(r.Context(), caller, r.PathValue("id"), req.Delta)
	h.handleServiceResponse(w, part, err, http.StatusOK)
}
