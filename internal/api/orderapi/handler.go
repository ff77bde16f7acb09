package orderapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/middleware"
	"oficinago/internal/service/orderservice"
)

// Handler agrupa as dependências dos endpoints de ordem de serviço.
type Handler struct {
	Service *orderservice.OrderService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de ordens de serviço.
func NewHandler(service *orderservice.OrderService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// createRequest é o payload de geração de ordem a partir de orçamento.
type createRequest struct {
	QuoteID       string    `json:"quote_id"`
	StartDate     time.Time `json:"start_date"`
	EstimatedDate time.Time `json:"estimated_date"`
	EntryMileage  int       `json:"entry_mileage"`
}

// addItemRequest é o payload de adição de peça à ordem.
type addItemRequest struct {
	PartID    string          `json:"part_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// statusRequest é o payload do endpoint genérico de status.
type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// handleServiceResponse centraliza a tradução de erro e a serialização da
// resposta. Erros de estoque carregam o detalhe das peças em falta.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de ordens.", err)
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

func callerFrom(r *http.Request) (domain.Caller, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, true
}

// Create lida com a geração de ordem a partir de orçamento aprovado.
// @Summary      Gera uma ordem de serviço
// @Description  Cria a ordem de um orçamento aprovado. Mecânico responsável ou gerente.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body      createRequest  true  "Dados da ordem"
// @Success      201    {object}  domain.ServiceOrder
// @Failure      403    {object}  domain.ErrorResponse
// @Failure      409    {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	order := domain.ServiceOrder{
		QuoteID:       req.QuoteID,
		StartDate:     req.StartDate,
		EstimatedDate: req.EstimatedDate,
		EntryMileage:  req.EntryMileage,
	}

	created, err := h.Service.CreateFromQuote(r.Context(), caller, order)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// GetByID lida com a busca de uma ordem com seus itens.
// @Summary      Busca uma ordem pelo ID
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "ID da ordem"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	order, err := h.Service.Get(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, order, err, http.StatusOK)
}

// List lida com a listagem de ordens.
// @Summary      Lista ordens de serviço
// @Tags         orders
// @Produce      json
// @Param        status  query     string  false  "Filtro por status"
// @Success      200     {array}   domain.ServiceOrder
// @Security     BearerAuth
// @Router       /v1/orders [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	filter := domain.OrderFilter{Status: r.URL.Query().Get("status")}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.Service.List(r.Context(), caller, filter)
	h.handleServiceResponse(w, orders, err, http.StatusOK)
}

// UpdateStatus lida com as transições genéricas de andamento.
// @Summary      Atualiza o status da ordem
// @Description  Apenas awaiting, in_progress e awaiting_parts. Conclusão e cancelamento têm ações dedicadas.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "ID da ordem"
// @Param        status  body      statusRequest  true  "Status alvo"
// @Success      200     {object}  domain.ServiceOrder
// @Failure      409     {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	order, err := h.Service.UpdateStatus(r.Context(), caller, r.PathValue("id"), req.Status)
	h.handleServiceResponse(w, order, err, http.StatusOK)
}

// AddItem lida com a adição de uma peça à ordem.
// @Summary      Adiciona uma peça à ordem
// @Description  A disponibilidade é conferida na adição; a baixa de estoque acontece na conclusão.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "ID da ordem"
// @Param        item  body      addItemRequest  true  "Peça e quantidade"
// @Success      201   {object}  domain.PartItem
// @Failure      409   {object}  domain.ErrorResponse
// @Failure      422   {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	item := domain.PartItem{
		OrderID:          r.PathValue("id"),
		PartID:           req.PartID,
		Quantity:         req.Quantity,
		UnitPriceCharged: req.UnitPrice,
	}

	created, err := h.Service.AddPart(r.Context(), caller, item)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// RemoveItem lida com a remoção de uma peça da ordem.
// @Summary      Remove uma peça da ordem
// @Description  Linha já baixada devolve a quantidade ao estoque na mesma transação.
// @Tags         orders
// @Param        id      path  string  true  "ID da ordem"
// @Param        itemID  path  string  true  "ID do item"
// @Success      204
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id}/items/{itemID} [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	err := h.Service.RemovePart(r.Context(), caller, r.PathValue("id"), r.PathValue("itemID"))
	h.handleServiceResponse(w, nil, err, http.StatusNoContent)
}

// Conclude lida com a conclusão da ordem.
// @Summary      Conclui uma ordem de serviço
// @Description  Baixa o estoque de todas as linhas e grava a conclusão em uma única transação.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "ID da ordem"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      409  {object}  domain.ErrorResponse
// @Failure      422  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id}/conclude [post]
func (h *Handler) Conclude(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	order, err := h.Service.Conclude(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, order, err, http.StatusOK)
}

// Cancel lida com o cancelamento da ordem.
// @Summary      Cancela uma ordem de serviço
// @Description  Devolve ao estoque as linhas já baixadas. Ordem cancelada não pode ser cancelada novamente.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "ID da ordem"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      409  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/orders/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.handleServiceResponse(w, nil, apperror.NewUnauthorizedError("Credenciais ausentes."), 0)
		return
	}

	order, err := h.Service.Cancel(r.Context(), caller, r.PathValue("id"))
	h.handleServiceResponse(w, order, err, http.StatusOK)
}
