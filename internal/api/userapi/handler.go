package userapi

import (
	"encoding/json"
	"net/http"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/service/userservice"
)

// Handler agrupa as dependências dos endpoints de usuário.
type Handler struct {
	Service *userservice.UserService
	Logger  logger.Logger
}

// NewHandler cria e retorna um novo Handler de usuários.
func NewHandler(service *userservice.UserService, logger logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// loginRequest é o payload de entrada do login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse devolve o token emitido e os dados públicos do usuário.
type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// handleServiceResponse centraliza a tradução de erro e a serialização da resposta.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Erro interno no serviço de usuários.", err)
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

// Register lida com o registro de um novo usuário.
// @Summary      Registra um novo usuário
// @Description  Cria uma conta de cliente, mecânico ou gerente.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      domain.UserRegistration  true  "Dados de registro"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  domain.ErrorResponse
// @Failure      409   {object}  domain.ErrorResponse
// @Router       /v1/users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	user, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, user, err, http.StatusCreated)
}

// Login lida com a autenticação e emissão do token.
// @Summary      Autentica um usuário
// @Description  Confere as credenciais e emite um JWT com o papel do usuário.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        credentials  body      loginRequest  true  "Credenciais"
// @Success      200          {object}  loginResponse
// @Failure      401          {object}  domain.ErrorResponse
// @Router       /v1/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Corpo da requisição inválido."), 0)
		return
	}

	tokenString, user, err := h.Service.Login(r.Context(), req.Email, req.Password)
	h.handleServiceResponse(w, loginResponse{Token: tokenString, User: user}, err, http.StatusOK)
}
