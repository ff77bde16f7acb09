package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados da aplicação.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// StateError representa uma operação inválida para o status atual da
// entidade (e.g., concluir ordem que não está em andamento). Nenhuma
// mutação ocorre quando este erro é retornado.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string    { return fmt.Sprintf("Estado inválido: %s", e.Msg) }
func (e *StateError) Category() string { return "STATE_ERROR" }
func (e *StateError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *StateError) Unwrap() error    { return nil }

// NewStateError cria um erro de transição/estado inválido.
func NewStateError(msg string) AppError {
	return &StateError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa ausência ou invalidade de credenciais.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa uma falha de autorização: o papel do usuário
// ou a propriedade do recurso não permitem a ação. Nenhuma mutação ocorre.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro de autorização.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// StockShortfall descreve a insuficiência de estoque de uma peça.
type StockShortfall struct {
	PartID    string `json:"part_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}

// StockError representa estoque insuficiente ou indisponível. Carrega o
// detalhe das peças em falta para a resposta ao chamador.
type StockError struct {
	Msg   string
	Items []StockShortfall
}

func (e *StockError) Error() string    { return fmt.Sprintf("Erro de Estoque: %s", e.Msg) }
func (e *StockError) Category() string { return "STOCK_ERROR" }
func (e *StockError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *StockError) Unwrap() error    { return nil }

// NewStockError cria um erro de estoque com o detalhe das peças em falta.
func NewStockError(msg string, items []StockShortfall) AppError {
	return &StockError{Msg: msg, Items: items}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// ConsistencyError representa uma pós-condição violada após sucesso
// parcial (e.g., baixa de estoque falhou depois do status já gravado).
// Indica bug de fronteira transacional: aborta a operação inteira, nunca
// é engolido e é sempre logado como erro.
type ConsistencyError struct {
	Msg string
	Err error
}

func (e *ConsistencyError) Error() string    { return fmt.Sprintf("Inconsistência detectada: %s", e.Msg) }
func (e *ConsistencyError) Category() string { return "CONSISTENCY_ERROR" }
func (e *ConsistencyError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *ConsistencyError) Unwrap() error    { return e.Err }

// NewConsistencyError cria um erro de inconsistência transacional.
func NewConsistencyError(msg string, err error) AppError {
	return &ConsistencyError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		// O erro é tipado (ValidationError, StateError, StockError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado (e.g., erro simples de pacote Go que não implementa AppError)
	// Tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
