package vehicleapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/service/vehicleservice"
)

// Handler agrupa as dependências dos endpoints de veículo.
type Handler struct {
	Service *vehicleservice.VehicleService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de veículos.
func NewHandler(service *vehicleservice.VehicleService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de veículos.", err)
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

// Create lida com o cadastro de um veículo.
// @Summary      Cadastra um veículo
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        vehicle  body      domain.Vehicle  true  "Dados do veículo"
// @Success      201      {object}  domain.Vehicle
// @Failure      409      {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/vehicles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	created, err := h.Service.Create(r.Context(), vehicle)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// GetByID lida com a busca de um veículo.
// @Summary      Busca um veículo pelo ID
// @Tags         vehicles
// @Produce      json
// @Param        id   path      string  true  "ID do veículo"
// @Success      200  {object}  domain.Vehicle
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/vehicles/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.Service.Get(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, vehicle, err, http.StatusOK)
}

// List lida com a listagem de veículos.
// @Summary      Lista veículos
// @Tags         vehicles
// @Produce      json
// @Param        plate  query     string  false  "Filtro por placa"
// @Param        brand  query     string  false  "Filtro por marca"
// @Param        model  query     string  false  "Filtro por modelo"
// @Success      200    {array}   domain.Vehicle
// @Security     BearerAuth
// @Router       /v1/vehicles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.VehicleFilter{
		Plate: r.URL.Query().Get("plate"),
		Brand: r.URL.Query().Get("brand"),
		Model: r.URL.Query().Get("model"),
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	vehicles, err := h.Service.List(r.Context(), filter)
	h.handleServiceResponse(w, vehicles, err, http.StatusOK)
}

// Update lida com a atualização de um veículo.
// @Summary      Atualiza um veículo
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "ID do veículo"
// @Param        vehicle  body      domain.Vehicle  true  "Dados do veículo"
// @Success      200      {object}  domain.Vehicle
// @Failure      404      {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/vehicles/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var vehicle domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}
	vehicle.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), vehicle)
	h.handleServiceResponse(w, updated, err, http.StatusOK)
}

// Delete lida com a remoção de um veículo.
// @Summary      Remove um veículo
// @Tags         vehicles
// @Param        id  path  string  true  "ID do veículo"
// @Success      204
// @Failure      404  {object}  domain.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/vehicles/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, nil, err, http.StatusNoContent)
}
