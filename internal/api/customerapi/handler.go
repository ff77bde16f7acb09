package customerapi

import (
	"encoding/json"
	"net/http"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/service/customerservice"
)

// Handler agrupa as dependências dos endpoints de cliente.
type Handler struct {
	Service *customerservice.CustomerService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de clientes.
func NewHandler(service *customerservice.CustomerService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de clientes.", err)
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

// Create lida com o cadastro de um cliente.
// @Summary      Cadastra um cliente
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer  body      domain.Customer  true  "Dados do cliente"
// @Success      201       {object}  domain.Customer
// @Failure      409       {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/customers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	created, err := h.Service.Create(r.Context(), customer)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// GetByID lida com a busca de um cliente.
// @Summary      Busca um cliente pelo ID
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "ID do cliente"
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/customers/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Service.Get(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, customer, err, http.StatusOK)
}

// List lida com a listagem de clientes.
// @Summary      Lista clientes
// @Tags         customers
// @Produce      json
// @Success      200  {array}  domain.Customer
// @Security     BearerAuth
// @Router       /v1/customers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, customers, err, http.StatusOK)
}

// Update lida com a atualização cadastral de um cliente.
// @Summary      Atualiza um cliente
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id        path      string           true  "ID do cliente"
// @Param        customer  body      domain.Customer  true  "Dados do cliente"
// @Success      200       {object}  domain.Customer
// @Failure      404       {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/customers/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}
	customer.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), customer)
	h.handleServiceResponse(w, updated, err, http.StatusOK)
}

// Delete lida com a remoção de um cliente.
// @Summary      Remove um cliente
// @Tags         customers
// @Param        id  path  string  true  "ID do cliente"
// @Success      204
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/customers/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, nil, err, http.StatusNoContent)
}
